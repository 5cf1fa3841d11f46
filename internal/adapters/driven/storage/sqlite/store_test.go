package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore_RecordsMigrations(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
	require.NoError(t, store.Close())

	// Reopening must not re-run applied migrations.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	var count int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
	assert.Contains(t, store.Path(), "kbsync.db")
}

func TestSessionStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sessions := setupTestStore(t).SessionStore()

	empty, err := sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Session{}, empty)

	want := domain.Session{Token: "tok", Email: "ana@example.com", Organization: "acme"}
	require.NoError(t, sessions.Save(ctx, want))

	got, err := sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, sessions.ClearToken(ctx))
	got, err = sessions.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Token)
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "acme", got.Organization)
}

func TestCategoryStore(t *testing.T) {
	ctx := context.Background()
	categories := setupTestStore(t).CategoryStore()
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, categories.Save(ctx, domain.Category{ID: "hr", Name: "HR", CreatedAt: base}))
	require.NoError(t, categories.Save(ctx, domain.Category{ID: "finance", Name: "Finance", ChannelID: "+1555", CreatedAt: base.Add(time.Minute)}))
	assert.ErrorIs(t, categories.Save(ctx, domain.Category{ID: "hr", Name: "Other", CreatedAt: base}), domain.ErrAlreadyExists)

	c, err := categories.Get(ctx, "finance")
	require.NoError(t, err)
	assert.Equal(t, "Finance", c.Name)
	assert.Equal(t, "+1555", c.ChannelID)
	assert.True(t, base.Add(time.Minute).Equal(c.CreatedAt))

	_, err = categories.Get(ctx, "legal")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "hr", list[0].ID)
	assert.Equal(t, "HR", list[0].Name)
}

func TestSchedulerStore_SaveAndGetTask(t *testing.T) {
	ctx := context.Background()
	schedulerStore := setupTestStore(t).SchedulerStore()

	now := time.Now().UTC().Truncate(time.Second)
	task := &domain.ScheduledTask{
		ID:          domain.TaskIDDocumentRefresh,
		Name:        "Document Refresh",
		Interval:    30 * time.Second,
		LastRun:     now.Add(-30 * time.Second),
		NextRun:     now,
		LastError:   "cannot reach server",
		LastSuccess: now.Add(-time.Minute),
		Enabled:     true,
	}
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	task.LastError = ""
	require.NoError(t, schedulerStore.SaveTask(ctx, task))

	got, err := schedulerStore.GetTask(ctx, domain.TaskIDDocumentRefresh)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, task.Interval, got.Interval)
	assert.Empty(t, got.LastError)
	assert.True(t, got.Enabled)
	assert.WithinDuration(t, task.NextRun, got.NextRun, time.Second)
	assert.WithinDuration(t, task.LastSuccess, got.LastSuccess, time.Second)

	missing, err := schedulerStore.GetTask(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	tasks, err := schedulerStore.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	assert.ErrorIs(t, schedulerStore.SaveTask(ctx, nil), domain.ErrInvalidInput)
}

func TestSchedulerStore_HistoryAndPrune(t *testing.T) {
	ctx := context.Background()
	schedulerStore := setupTestStore(t).SchedulerStore()
	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		errMsg := ""
		if i%2 != 0 {
			errMsg = "boom"
		}
		require.NoError(t, schedulerStore.RecordResult(ctx, &domain.TaskResult{
			TaskID:         domain.TaskIDDocumentRefresh,
			StartedAt:      base.Add(time.Duration(i) * time.Minute),
			EndedAt:        base.Add(time.Duration(i)*time.Minute + time.Second),
			Success:        i%2 == 0,
			Error:          errMsg,
			ItemsProcessed: i,
		}))
	}

	history, err := schedulerStore.GetTaskHistory(ctx, domain.TaskIDDocumentRefresh, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 4, history[0].ItemsProcessed)
	assert.True(t, history[0].Success)
	assert.Equal(t, "boom", history[1].Error)

	require.NoError(t, schedulerStore.PruneHistory(ctx, 3))
	history, err = schedulerStore.GetTaskHistory(ctx, domain.TaskIDDocumentRefresh, 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 2, history[2].ItemsProcessed)

	require.NoError(t, schedulerStore.DeleteTask(ctx, domain.TaskIDDocumentRefresh))
	history, err = schedulerStore.GetTaskHistory(ctx, domain.TaskIDDocumentRefresh, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}
