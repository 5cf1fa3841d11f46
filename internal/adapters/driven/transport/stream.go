// Package transport provides the two query answer transports and the
// startup selection between them.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/kbsync/internal/adapters/driven/api"
	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
	"github.com/custodia-labs/kbsync/internal/logger"
)

// Transport names.
const (
	NameStream   = "stream"
	NameBuffered = "buffered"
)

// Ensure both transports implement the interface.
var (
	_ driven.QueryTransport = (*StreamingTransport)(nil)
	_ driven.QueryTransport = (*BufferedTransport)(nil)
)

// Querier issues the blocking query request.
type Querier interface {
	Query(ctx context.Context, req driven.QueryRequest) (*driven.QueryAnswer, error)
}

// StreamOpener opens the event stream for a query.
type StreamOpener interface {
	OpenQueryStream(ctx context.Context, streamID string) (io.ReadCloser, error)
}

// StreamBackend is what the streaming transport needs from the client.
type StreamBackend interface {
	Querier
	StreamOpener
}

// streamPayload is the JSON body of a stream event.
type streamPayload struct {
	Chunk   string           `json:"chunk"`
	Done    bool             `json:"done"`
	Sources []api.WireSource `json:"sources"`
	Error   string           `json:"error"`
}

// StreamingTransport opens the answer event stream, then initiates the
// query with a POST carrying the same stream ID. Chunks are delivered in
// arrival order until a done or error event.
type StreamingTransport struct {
	backend StreamBackend
}

// NewStreamingTransport creates a streaming transport.
func NewStreamingTransport(backend StreamBackend) *StreamingTransport {
	return &StreamingTransport{backend: backend}
}

// Name implements driven.QueryTransport.
func (t *StreamingTransport) Name() string {
	return NameStream
}

// Ask implements driven.QueryTransport.
//
// The event connection is closed as soon as a done or error event arrives,
// and in every case before Ask returns. Ask returns on done without waiting
// for the initiating POST: its sources are used only when it has already
// answered, and it is cancelled otherwise. A stream that ends without done
// is reported as domain.ErrStreamClosed. A failure of the POST after done
// is ignored.
func (t *StreamingTransport) Ask(
	ctx context.Context,
	req driven.QueryRequest,
	onChunk func(chunk string),
) (*driven.QueryAnswer, error) {
	req.Stream = true
	req.StreamID = uuid.NewString()

	g, gctx := errgroup.WithContext(ctx)

	body, err := t.backend.OpenQueryStream(gctx, req.StreamID)
	if err != nil {
		return nil, err
	}
	var closeOnce sync.Once
	closeBody := func() {
		closeOnce.Do(func() {
			if err := body.Close(); err != nil {
				logger.Debug("close stream %s: %v", req.StreamID, err)
			}
		})
	}
	defer closeBody()
	// Unblock the reader when the POST fails or ctx is cancelled.
	stop := context.AfterFunc(gctx, closeBody)
	defer stop()

	postCtx, cancelPost := context.WithCancel(gctx)
	defer cancelPost()

	var (
		done          atomic.Bool
		chunks        int
		streamSources []domain.Source
		postSources   []domain.Source
	)
	streamDone := make(chan struct{})
	// Buffered so the POST goroutine never blocks once Ask has returned.
	posted := make(chan postResult, 1)

	logger.Debug("stream %s opened", req.StreamID)

	g.Go(func() error {
		defer close(streamDone)
		reader := NewEventReader(body)
		for {
			ev, err := reader.Next()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return domain.ErrStreamClosed
				}
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return fmt.Errorf("read stream: %w", err)
			}

			var payload streamPayload
			if err := json.Unmarshal(ev.Data, &payload); err != nil {
				return fmt.Errorf("malformed stream event: %w", err)
			}

			switch {
			case payload.Error != "" || ev.Type == "error":
				closeBody()
				msg := payload.Error
				if msg == "" {
					msg = string(ev.Data)
				}
				return fmt.Errorf("stream error: %s", msg)
			case payload.Done:
				done.Store(true)
				closeBody()
				streamSources = api.ConvertSources(payload.Sources)
				return nil
			case payload.Chunk != "":
				onChunk(payload.Chunk)
				chunks++
			}
		}
	})

	go func() {
		answer, err := t.backend.Query(postCtx, req)
		posted <- postResult{answer: answer, err: err}
	}()

	g.Go(func() error {
		var res postResult
		select {
		case res = <-posted:
		case <-streamDone:
			select {
			case res = <-posted:
			default:
				cancelPost()
				return nil
			}
		}
		if res.err != nil {
			if done.Load() {
				return nil
			}
			return fmt.Errorf("initiate query: %w", res.err)
		}
		if res.answer != nil {
			postSources = res.answer.Sources
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Debug("stream %s failed after %d chunks: %v", req.StreamID, chunks, err)
		return nil, err
	}

	sources := streamSources
	if len(sources) == 0 {
		sources = postSources
	}
	logger.Debug("stream %s complete: %d chunks", req.StreamID, chunks)
	return &driven.QueryAnswer{Sources: sources, Streamed: true}, nil
}

// postResult is the outcome of the initiating POST.
type postResult struct {
	answer *driven.QueryAnswer
	err    error
}

// BufferedTransport issues a single blocking query and returns the full
// answer. Its wait is bounded by the client's query timeout.
type BufferedTransport struct {
	querier Querier
}

// NewBufferedTransport creates a buffered transport.
func NewBufferedTransport(querier Querier) *BufferedTransport {
	return &BufferedTransport{querier: querier}
}

// Name implements driven.QueryTransport.
func (t *BufferedTransport) Name() string {
	return NameBuffered
}

// Ask implements driven.QueryTransport. onChunk is never called.
func (t *BufferedTransport) Ask(
	ctx context.Context,
	req driven.QueryRequest,
	_ func(chunk string),
) (*driven.QueryAnswer, error) {
	req.Stream = false
	req.StreamID = ""

	answer, err := t.querier.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	answer.Streamed = false
	return answer, nil
}
