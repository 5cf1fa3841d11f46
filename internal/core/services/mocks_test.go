package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// mockAPI implements driven.KnowledgeAPI for testing.
type mockAPI struct {
	mu sync.Mutex

	items     []domain.KnowledgeItem
	listErr   error
	listCalls int
	// listGate, when set, blocks ListDocuments until it is closed.
	listGate    chan struct{}
	listStarted chan struct{}

	deleteErr error
	deleted   []string

	uploadErrs map[string]error
	uploads    []driven.UploadRequest
	nextID     int
	// afterUpload, when set, runs once the backend has accepted a file.
	afterUpload func(name string)

	health *domain.HealthStatus
}

func (m *mockAPI) ListDocuments(ctx context.Context, _ string) ([]domain.KnowledgeItem, error) {
	m.mu.Lock()
	m.listCalls++
	gate := m.listGate
	started := m.listStarted
	m.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.KnowledgeItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *mockAPI) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *mockAPI) UploadDocument(_ context.Context, req driven.UploadRequest) (*driven.UploadResponse, error) {
	m.mu.Lock()
	m.uploads = append(m.uploads, req)
	if err := m.uploadErrs[req.FileName]; err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.nextID++
	hook := m.afterUpload
	m.mu.Unlock()

	if hook != nil {
		hook(req.FileName)
	}
	return &driven.UploadResponse{ItemID: req.FileName + "-id"}, nil
}

func (m *mockAPI) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockAPI) Query(_ context.Context, _ driven.QueryRequest) (*driven.QueryAnswer, error) {
	return nil, errors.New("not used")
}

func (m *mockAPI) Health(_ context.Context) (*domain.HealthStatus, error) {
	if m.health == nil {
		return nil, domain.NewAPIError(0, "/health", "unreachable")
	}
	return m.health, nil
}

// mockTransport implements driven.QueryTransport by running a script.
type mockTransport struct {
	name   string
	script func(ctx context.Context, req driven.QueryRequest, onChunk func(string)) (*driven.QueryAnswer, error)

	mu       sync.Mutex
	requests []driven.QueryRequest
}

func (m *mockTransport) Name() string { return m.name }

func (m *mockTransport) Ask(ctx context.Context, req driven.QueryRequest, onChunk func(string)) (*driven.QueryAnswer, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.script(ctx, req, onChunk)
}

// streamOf returns a transport that emits chunks then finishes with sources.
func streamOf(sources []domain.Source, chunks ...string) *mockTransport {
	return &mockTransport{
		name: "stream",
		script: func(_ context.Context, _ driven.QueryRequest, onChunk func(string)) (*driven.QueryAnswer, error) {
			for _, c := range chunks {
				onChunk(c)
			}
			return &driven.QueryAnswer{Streamed: true, Sources: sources}, nil
		},
	}
}

// mockInspector implements driven.TokenInspector.
type mockInspector struct {
	claims *driven.TokenClaims
	err    error
}

func (m *mockInspector) Inspect(_ string) (*driven.TokenClaims, error) {
	return m.claims, m.err
}

// mockListener records session lifecycle notifications.
type mockListener struct {
	mu      sync.Mutex
	orgs    []string
	logouts int
}

func (m *mockListener) OnOrganizationChanged(_ context.Context, org string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs = append(m.orgs, org)
}

func (m *mockListener) OnLogout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logouts++
}

// validatorFunc adapts a function to driven.FileValidator.
type validatorFunc func(name string, content []byte) []string

func (f validatorFunc) Validate(name string, content []byte) []string { return f(name, content) }

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Ensure mocks implement interfaces
var (
	_ driven.KnowledgeAPI   = (*mockAPI)(nil)
	_ driven.QueryTransport = (*mockTransport)(nil)
	_ driven.TokenInspector = (*mockInspector)(nil)
	_ driven.FileValidator  = validatorFunc(nil)
)
