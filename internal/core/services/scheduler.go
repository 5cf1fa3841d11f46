package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
	"github.com/custodia-labs/kbsync/internal/logger"
)

// historyRetention is how many results are kept per task.
const historyRetention = 100

// TaskFunc runs one scheduled task.
// skipped reports a no-op run; items is the number of items handled.
type TaskFunc func(ctx context.Context) (items int, skipped bool, err error)

// Scheduler runs registered background tasks at their intervals.
// It has no external control API beyond Start and Stop.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	tasks   map[string]TaskFunc
	names   map[string]string
	onEvent func(domain.TaskResult)
	now     func() time.Time

	mu      sync.Mutex
	state   map[string]*domain.ScheduledTask
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler. store may be nil.
func NewScheduler(config domain.SchedulerConfig, store driven.SchedulerStore) *Scheduler {
	if config.Tick <= 0 {
		config.Tick = time.Second
	}
	return &Scheduler{
		config: config,
		store:  store,
		tasks:  make(map[string]TaskFunc),
		names:  make(map[string]string),
		state:  make(map[string]*domain.ScheduledTask),
		now:    time.Now,
	}
}

// NewDocumentRefreshScheduler creates a scheduler with the periodic
// document refresh task registered. Each run is a debounced load.
func NewDocumentRefreshScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	synchronizer driving.DocumentSynchronizer,
) *Scheduler {
	s := NewScheduler(config, store)
	s.Register(domain.TaskIDDocumentRefresh, "Document Refresh", func(ctx context.Context) (int, bool, error) {
		outcome, err := synchronizer.LoadDocuments(ctx, false)
		return len(synchronizer.Items()), outcome.Skipped() || outcome == driving.LoadDiscarded, err
	})
	return s
}

// Register adds a task. Tasks must be registered before Start.
func (s *Scheduler) Register(id, name string, fn TaskFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = fn
	s.names[id] = name
}

// OnResult sets a callback invoked after every task run.
func (s *Scheduler) OnResult(fn func(domain.TaskResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = fn
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		logger.Info("scheduler disabled")
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	defer close(doneCh)
	s.initialiseTasks(ctx)
	return s.run(ctx, stopCh)
}

// Stop shuts the scheduler down and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	// The loop must exit before waiting, as it is the only caller of wg.Add.
	<-doneCh
	s.wg.Wait()
	return nil
}

// initialiseTasks loads persisted task state and applies configured intervals.
func (s *Scheduler) initialiseTasks(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.tasks {
		cfg := s.config.GetTaskConfig(id)
		if !cfg.Enabled {
			continue
		}

		var task *domain.ScheduledTask
		if s.store != nil {
			stored, err := s.store.GetTask(ctx, id)
			if err != nil {
				logger.Warn("scheduler: load task %s: %v", id, err)
			}
			task = stored
		}
		if task == nil {
			// First run happens on the first tick.
			task = &domain.ScheduledTask{ID: id, Name: s.names[id]}
		}
		if task.Interval != cfg.Interval {
			task.Interval = cfg.Interval
			task.NextRun = time.Time{}
		}
		task.Enabled = true
		s.state[id] = task
		s.save(ctx, task)
	}
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context, stopCh <-chan struct{}) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.config.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// checkAndRunDueTasks runs every task whose NextRun has passed.
// A task is not started again while a previous run is still executing.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	var due []*domain.ScheduledTask
	for _, task := range s.state {
		if task.Due(now) {
			// Push NextRun out so the next tick does not start it again.
			task.NextRun = now.Add(task.Interval)
			due = append(due, task)
		}
	}
	s.mu.Unlock()

	for _, task := range due {
		s.runTask(ctx, task)
	}
}

// runTask executes one task in its own goroutine.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	fn := s.tasks[task.ID]
	onEvent := s.onEvent
	s.mu.Unlock()
	if fn == nil {
		logger.Warn("scheduler: unknown task ID: %s", task.ID)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		result := domain.TaskResult{TaskID: task.ID, StartedAt: s.now()}
		items, skipped, err := fn(ctx)
		result.EndedAt = s.now()
		result.ItemsProcessed = items
		result.Skipped = skipped

		s.mu.Lock()
		task.LastRun = result.StartedAt
		task.NextRun = result.EndedAt.Add(task.Interval)
		if err != nil {
			result.Error = err.Error()
			task.LastError = err.Error()
		} else {
			result.Success = true
			task.LastError = ""
			task.LastSuccess = result.EndedAt
		}
		snapshot := *task
		s.mu.Unlock()

		s.save(ctx, &snapshot)
		s.record(ctx, &result)

		if onEvent != nil {
			onEvent(result)
		}
	}()
}

func (s *Scheduler) save(ctx context.Context, task *domain.ScheduledTask) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Warn("scheduler: save task %s: %v", task.ID, err)
	}
}

func (s *Scheduler) record(ctx context.Context, result *domain.TaskResult) {
	if s.store == nil || result.Skipped {
		return
	}
	if err := s.store.RecordResult(ctx, result); err != nil {
		logger.Warn("scheduler: record result for %s: %v", result.TaskID, err)
	}
	if err := s.store.PruneHistory(ctx, historyRetention); err != nil {
		logger.Warn("scheduler: prune history: %v", err)
	}
}
