package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

// FlexID decodes an identifier sent either as a JSON string or number.
type FlexID string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

type documentJSON struct {
	ID               FlexID `json:"id"`
	Title            string `json:"title"`
	Category         string `json:"category"`
	FileType         string `json:"file_type"`
	CreatedAt        string `json:"created_at"`
	Content          string `json:"content"`
	WordCount        int    `json:"word_count"`
	FileURL          string `json:"file_url"`
	ProcessingStatus string `json:"processing_status"`
	VectorsStored    int    `json:"vectors_stored"`
}

type documentsResponse struct {
	Documents []documentJSON `json:"documents"`
}

type uploadResponse struct {
	ItemID  FlexID `json:"item_id"`
	FileURL string `json:"file_url"`
}

type deleteResponse struct {
	Message string `json:"message"`
}

type queryRequest struct {
	Query    string `json:"query"`
	Category string `json:"category"`
	Stream   bool   `json:"stream"`
	StreamID string `json:"stream_id,omitempty"`
}

type queryResponse struct {
	Response string       `json:"response"`
	Sources  []WireSource `json:"sources"`
}

type healthResponse struct {
	Status   string         `json:"status"`
	Services map[string]any `json:"services"`
}

// WireSource is a citation as sent by the backend, both in query
// responses and in stream done events.
type WireSource struct {
	ID       FlexID  `json:"id"`
	Score    float64 `json:"score"`
	Document *struct {
		Title    string `json:"title"`
		FileType string `json:"file_type"`
		URL      string `json:"url"`
	} `json:"document"`
}

// ConvertSources maps wire citations onto domain sources.
func ConvertSources(in []WireSource) []domain.Source {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Source, 0, len(in))
	for _, s := range in {
		src := domain.Source{ID: string(s.ID), Score: s.Score}
		if s.Document != nil {
			src.Document = &domain.SourceDocument{
				Title:    s.Document.Title,
				FileType: s.Document.FileType,
				URL:      s.Document.URL,
			}
		}
		out = append(out, src)
	}
	return out
}

func (d *documentJSON) toDomain() domain.KnowledgeItem {
	return domain.KnowledgeItem{
		ID:               string(d.ID),
		Title:            d.Title,
		Category:         d.Category,
		Type:             domain.ParseContentType(d.FileType),
		CreatedAt:        parseTime(d.CreatedAt),
		Content:          d.Content,
		FileURL:          d.FileURL,
		ProcessingStatus: d.ProcessingStatus,
		WordCount:        d.WordCount,
		VectorsStored:    d.VectorsStored,
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts RFC 3339, naive ISO timestamps (read as UTC) and Unix seconds.
// Unparseable values yield the zero time.
func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	return time.Time{}
}

func healthToDomain(h *healthResponse) *domain.HealthStatus {
	status := &domain.HealthStatus{
		Status:   h.Status,
		Services: make(map[string]string, len(h.Services)),
	}
	for name, v := range h.Services {
		switch val := v.(type) {
		case string:
			status.Services[name] = val
		case bool:
			status.Services[name] = strconv.FormatBool(val)
		case map[string]any:
			if s, ok := val["status"].(string); ok {
				status.Services[name] = s
			} else {
				status.Services[name] = "enabled"
			}
		default:
			status.Services[name] = fmt.Sprint(val)
		}
	}
	return status
}
