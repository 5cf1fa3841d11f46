package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.KnowledgeAPI = (*Client)(nil)

// DefaultQueryTimeout bounds a blocking query.
const DefaultQueryTimeout = 120 * time.Second

// Backend endpoints.
const (
	PathDocuments = "/documents"
	PathUpload    = "/upload"
	PathDelete    = "/delete/"
	PathQuery     = "/query"
	PathHealth    = "/health"
)

// Client is the typed knowledge backend client.
type Client struct {
	gateway      *Gateway
	queryTimeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithQueryTimeout overrides DefaultQueryTimeout.
func WithQueryTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.queryTimeout = d
		}
	}
}

// NewClient creates a client that sends every request through gateway.
func NewClient(gateway *Gateway, opts ...ClientOption) *Client {
	c := &Client{gateway: gateway, queryTimeout: DefaultQueryTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryTimeout returns the bound applied to blocking queries.
func (c *Client) QueryTimeout() time.Duration {
	return c.queryTimeout
}

// ListDocuments fetches the document list.
func (c *Client) ListDocuments(ctx context.Context, category string) ([]domain.KnowledgeItem, error) {
	req := Request{Method: http.MethodGet, Path: PathDocuments}
	if category != "" && category != domain.CategoryAll {
		req.Query = url.Values{"category": {category}}
	}

	res := Call[documentsResponse](ctx, c.gateway, req)
	if err := res.Err(); err != nil {
		return nil, err
	}

	items := make([]domain.KnowledgeItem, 0, len(res.Data.Documents))
	for i := range res.Data.Documents {
		items = append(items, res.Data.Documents[i].toDomain())
	}
	return items, nil
}

// UploadDocument sends one file as multipart form data.
func (c *Client) UploadDocument(ctx context.Context, upload driven.UploadRequest) (*driven.UploadResponse, error) {
	body, contentType, err := multipartBody(upload)
	if err != nil {
		return nil, domain.NewAPIError(0, PathUpload, "encode upload: %v", err)
	}

	res := Call[uploadResponse](ctx, c.gateway, Request{
		Method:      http.MethodPost,
		Path:        PathUpload,
		Body:        body,
		ContentType: contentType,
	})
	if err := res.Err(); err != nil {
		return nil, err
	}
	return &driven.UploadResponse{ItemID: string(res.Data.ItemID), FileURL: res.Data.FileURL}, nil
}

func multipartBody(upload driven.UploadRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", upload.FileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(upload.Content); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("category", upload.Category); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("title", upload.Title); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// DeleteDocument removes a document by ID.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	res := Call[deleteResponse](ctx, c.gateway, Request{
		Method: http.MethodDelete,
		Path:   PathDelete + url.PathEscape(id),
	})
	return res.Err()
}

// Query issues a blocking query. With req.Stream set the backend publishes
// the answer on the event stream named by req.StreamID instead.
func (c *Client) Query(ctx context.Context, req driven.QueryRequest) (*driven.QueryAnswer, error) {
	payload, err := json.Marshal(queryRequest{
		Query:    req.Query,
		Category: req.Category,
		Stream:   req.Stream,
		StreamID: req.StreamID,
	})
	if err != nil {
		return nil, domain.NewAPIError(0, PathQuery, "encode query: %v", err)
	}

	res := Call[queryResponse](ctx, c.gateway, Request{
		Method:      http.MethodPost,
		Path:        PathQuery,
		Body:        bytes.NewReader(payload),
		ContentType: "application/json",
		Timeout:     c.queryTimeout,
	})
	if err := res.Err(); err != nil {
		return nil, err
	}
	return &driven.QueryAnswer{
		Response: res.Data.Response,
		Sources:  ConvertSources(res.Data.Sources),
	}, nil
}

// OpenQueryStream opens the event stream that carries the answer for
// streamID. The caller must close the returned body.
func (c *Client) OpenQueryStream(ctx context.Context, streamID string) (io.ReadCloser, error) {
	q := url.Values{"stream": {"true"}}
	if streamID != "" {
		q.Set("stream_id", streamID)
	}
	body, err := c.gateway.OpenStream(ctx, Request{Method: http.MethodGet, Path: PathQuery, Query: q})
	if err != nil {
		return nil, fmt.Errorf("open query stream: %w", err)
	}
	return body, nil
}

// Health fetches the backend health report.
func (c *Client) Health(ctx context.Context) (*domain.HealthStatus, error) {
	res := Call[healthResponse](ctx, c.gateway, Request{Method: http.MethodGet, Path: PathHealth})
	if err := res.Err(); err != nil {
		return nil, err
	}
	return healthToDomain(&res.Data), nil
}
