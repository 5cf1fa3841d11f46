package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
	"github.com/custodia-labs/kbsync/internal/logger"
)

// Ensure Lazy implements the interface.
var _ driven.QueryTransport = (*Lazy)(nil)

// Selection modes.
const (
	ModeAuto     = "auto"
	ModeStream   = "stream"
	ModeBuffered = "buffered"
)

// StreamingService is the health report entry that advertises streaming.
const StreamingService = "streaming"

// healthTimeout bounds the health probe used by ModeAuto.
const healthTimeout = 5 * time.Second

// HealthChecker reports backend health.
type HealthChecker interface {
	Health(ctx context.Context) (*domain.HealthStatus, error)
}

// Backend is everything the transports and the selection probe need.
type Backend interface {
	StreamBackend
	HealthChecker
}

// Select returns the transport for mode. It is called once at startup.
//
// ModeAuto probes the health endpoint: streaming is chosen when the report
// lists an enabled streaming service, or when the probe fails; otherwise
// the buffered transport is used.
func Select(ctx context.Context, mode string, backend Backend) (driven.QueryTransport, error) {
	switch mode {
	case ModeStream:
		return NewStreamingTransport(backend), nil
	case ModeBuffered:
		return NewBufferedTransport(backend), nil
	case ModeAuto, "":
	default:
		return nil, fmt.Errorf("unknown query transport %q: %w", mode, domain.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	health, err := backend.Health(ctx)
	if err != nil {
		logger.Debug("health probe failed, using streaming transport: %v", err)
		return NewStreamingTransport(backend), nil
	}
	if health.ServiceEnabled(StreamingService) {
		logger.Debug("backend advertises streaming")
		return NewStreamingTransport(backend), nil
	}
	logger.Debug("backend does not advertise streaming, using buffered transport")
	return NewBufferedTransport(backend), nil
}

// Lazy defers Select until the transport is first used, so commands that
// never query do not probe the backend. The choice is made once.
type Lazy struct {
	mode    string
	backend Backend

	once     sync.Once
	selected driven.QueryTransport
	err      error
}

// NewLazy creates a transport that selects on first use.
func NewLazy(mode string, backend Backend) *Lazy {
	return &Lazy{mode: mode, backend: backend}
}

func (l *Lazy) resolve(ctx context.Context) (driven.QueryTransport, error) {
	l.once.Do(func() {
		l.selected, l.err = Select(ctx, l.mode, l.backend)
	})
	return l.selected, l.err
}

// Name selects the transport if needed and returns its name, or "" when
// the mode is invalid.
func (l *Lazy) Name() string {
	t, err := l.resolve(context.Background())
	if err != nil {
		return ""
	}
	return t.Name()
}

// Ask selects the transport if needed and delegates to it.
func (l *Lazy) Ask(ctx context.Context, req driven.QueryRequest, onChunk func(chunk string)) (*driven.QueryAnswer, error) {
	t, err := l.resolve(ctx)
	if err != nil {
		return nil, err
	}
	return t.Ask(ctx, req, onChunk)
}
