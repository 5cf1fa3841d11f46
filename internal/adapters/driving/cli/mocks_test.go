package cli

import (
	"context"
	"sync"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
)

// mockSynchronizer implements driving.DocumentSynchronizer for testing.
type mockSynchronizer struct {
	mu        sync.Mutex
	items     []domain.KnowledgeItem
	outcome   driving.LoadOutcome
	loadErr   error
	deleteErr error
	forced    []bool
	deleted   []string
}

func (m *mockSynchronizer) LoadDocuments(_ context.Context, force bool) (driving.LoadOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forced = append(m.forced, force)
	if m.loadErr != nil {
		return driving.LoadFailed, m.loadErr
	}
	return m.outcome, nil
}

func (m *mockSynchronizer) DeleteKnowledgeItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockSynchronizer) Items() []domain.KnowledgeItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.KnowledgeItem(nil), m.items...)
}

func (m *mockSynchronizer) setItems(items []domain.KnowledgeItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = items
}

func (m *mockSynchronizer) Reset() {}

// mockQueryController implements driving.QueryController for testing.
// Submit appends a user message and the reply to the conversation.
type mockQueryController struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
	reply    string
	sources  []domain.Source
	err      error
	nextID   int64
	category string
	cleared  bool
}

func (m *mockQueryController) Submit(_ context.Context, query, categoryID string) (*domain.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.category = categoryID
	m.nextID++
	m.messages = append(m.messages, domain.ChatMessage{ID: m.nextID, Content: query, Sender: domain.SenderUser})
	m.nextID++
	reply := domain.ChatMessage{ID: m.nextID, Content: m.reply, Sender: domain.SenderAI, Sources: m.sources}
	m.messages = append(m.messages, reply)
	return &reply, m.err
}

func (m *mockQueryController) Messages() []domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ChatMessage(nil), m.messages...)
}

func (m *mockQueryController) DeleteMessage(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.messages {
		if m.messages[i].ID == id {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			return true
		}
	}
	return false
}

func (m *mockQueryController) ClearConversation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.cleared = true
}

func (m *mockQueryController) TransportName() string { return "buffered" }

// mockUploadPipeline implements driving.UploadPipeline for testing.
type mockUploadPipeline struct {
	files    []driving.UploadFile
	category string
	result   *driving.BatchResult
	err      error
}

func (m *mockUploadPipeline) Upload(
	_ context.Context,
	files []driving.UploadFile,
	categoryID string,
	onProgress driving.ProgressFunc,
) (*driving.BatchResult, error) {
	m.files = files
	m.category = categoryID
	if onProgress != nil {
		onProgress(0.5)
		onProgress(1)
	}
	return m.result, m.err
}

// mockSessionService implements driving.SessionService for testing.
type mockSessionService struct {
	session   domain.Session
	loggedOut bool
	err       error
}

func (m *mockSessionService) Bootstrap(_ context.Context) (domain.Session, error) {
	return m.session, m.err
}

func (m *mockSessionService) Current(_ context.Context) (domain.Session, error) {
	return m.session, m.err
}

func (m *mockSessionService) Login(_ context.Context, token, email string) error {
	m.session.Token = token
	if email != "" {
		m.session.Email = email
	}
	return m.err
}

func (m *mockSessionService) Logout(_ context.Context) error {
	m.session.Token = ""
	m.loggedOut = true
	return m.err
}

func (m *mockSessionService) SwitchOrganization(_ context.Context, organization string) error {
	m.session.Organization = organization
	return m.err
}

func (m *mockSessionService) Subscribe(_ driving.SessionListener) {}

// mockCategoryService implements driving.CategoryService for testing.
type mockCategoryService struct {
	categories []domain.Category
	unknown    bool
	err        error
}

func (m *mockCategoryService) List(_ context.Context) ([]domain.Category, error) {
	return m.categories, m.err
}

func (m *mockCategoryService) Add(_ context.Context, name, channelID string) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	c := domain.Category{ID: domain.CategoryID(name), Name: name, ChannelID: channelID}
	m.categories = append(m.categories, c)
	return &c, nil
}

func (m *mockCategoryService) QueryName(_ context.Context, _ string) string { return "" }

func (m *mockCategoryService) Known(_ context.Context, _ string) bool { return !m.unknown }

// mockHealthChecker implements HealthChecker for testing.
type mockHealthChecker struct {
	status *domain.HealthStatus
	err    error
}

func (m *mockHealthChecker) Health(_ context.Context) (*domain.HealthStatus, error) {
	return m.status, m.err
}

// mockScheduler implements Scheduler for testing. Start runs tick once per
// result and delivers it to the registered callback.
type mockScheduler struct {
	results  []domain.TaskResult
	tick     func(i int)
	onResult func(domain.TaskResult)
	stopped  bool
}

func (m *mockScheduler) Start(_ context.Context) error {
	for i, r := range m.results {
		if m.tick != nil {
			m.tick(i)
		}
		if m.onResult != nil {
			m.onResult(r)
		}
	}
	return nil
}

func (m *mockScheduler) Stop() error {
	m.stopped = true
	return nil
}

func (m *mockScheduler) OnResult(fn func(domain.TaskResult)) { m.onResult = fn }

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	sync       *mockSynchronizer
	query      *mockQueryController
	upload     *mockUploadPipeline
	session    *mockSessionService
	categories *mockCategoryService
	health     *mockHealthChecker
	scheduler  *mockScheduler
}

// setupTestServices installs mocks and returns a cleanup that restores the
// previous services and flag values.
func setupTestServices() (*testServices, func()) {
	old := Services{
		Synchronizer:  synchronizer,
		Query:         queryController,
		Upload:        uploadPipeline,
		Session:       sessionService,
		Categories:    categoryService,
		Health:        healthChecker,
		Scheduler:     scheduler,
		ConfigWatcher: configWatcher,
	}

	ts := &testServices{
		sync:       &mockSynchronizer{outcome: driving.LoadApplied},
		query:      &mockQueryController{},
		upload:     &mockUploadPipeline{},
		session:    &mockSessionService{},
		categories: &mockCategoryService{},
		health:     &mockHealthChecker{},
		scheduler:  &mockScheduler{},
	}
	SetServices(Services{
		Synchronizer: ts.sync,
		Query:        ts.query,
		Upload:       ts.upload,
		Session:      ts.session,
		Categories:   ts.categories,
		Health:       ts.health,
		Scheduler:    ts.scheduler,
	})

	return ts, func() {
		SetServices(old)
		resetFlags()
	}
}

func resetFlags() {
	listCategory = domain.CategoryAll
	listSearch = ""
	listSort = string(domain.SortNewest)
	listRefresh = false
	askCategory = domain.CategoryAll
	uploadCategory = domain.CategoryAll
	categoryChannel = ""
	loginToken = ""
	loginEmail = ""
}
