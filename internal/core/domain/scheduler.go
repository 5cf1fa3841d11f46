package domain

import "time"

// ScheduledTask is the persisted state of a recurring background task.
type ScheduledTask struct {
	ID          string
	Name        string
	Interval    time.Duration
	LastRun     time.Time
	NextRun     time.Time
	LastError   string
	LastSuccess time.Time
	Enabled     bool
}

// Due reports whether the task should run at now.
func (t *ScheduledTask) Due(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// TaskResult is the outcome of one task execution.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time
	Success   bool

	// Error is empty on success.
	Error string

	// Skipped is set when the run was a no-op (load debounced or already in flight).
	Skipped bool

	// ItemsProcessed is the number of cache rows after the run.
	ItemsProcessed int
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// Tick is how often the scheduler checks for due tasks.
	Tick time.Duration

	// TaskConfigs holds per-task configuration.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	Enabled  bool
	Interval time.Duration
}

// GetTaskConfig returns the configuration for a specific task.
// Returns a zero TaskConfig if the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultPollInterval is how often the library is refreshed in the background.
const DefaultPollInterval = 30 * time.Second

// DefaultSchedulerConfig returns the background refresh defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		Tick:    time.Second,
		TaskConfigs: map[string]TaskConfig{
			TaskIDDocumentRefresh: {
				Enabled:  true,
				Interval: DefaultPollInterval,
			},
		},
	}
}

// Task IDs for built-in tasks.
const (
	TaskIDDocumentRefresh = "document-refresh"
)
