package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/kbsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/kbsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/services"
)

func TestApplyOverrides_FillsEmptySession(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore(domain.Session{})
	session := services.NewSessionService(store, nil)

	err := applyOverrides(ctx, session, file.Settings{Organization: "acme", Token: "tok"})

	require.NoError(t, err)
	got, _ := store.Load(ctx)
	assert.Equal(t, "acme", got.Organization)
	assert.Equal(t, "tok", got.Token)
}

func TestApplyOverrides_KeepsSwitchedOrganization(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore(domain.Session{Organization: "globex", Email: "ana@example.com"})
	session := services.NewSessionService(store, nil)

	err := applyOverrides(ctx, session, file.Settings{Organization: "acme"})

	require.NoError(t, err)
	got, _ := store.Load(ctx)
	assert.Equal(t, "globex", got.Organization)
	assert.Empty(t, got.Token)
	assert.Equal(t, "ana@example.com", got.Email)
}

func TestWire_BuildsServices(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(file.EnvToken, "")

	svc, cleanup, err := wire(context.Background(), cli.GlobalOptions{ConfigDir: dir})

	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, svc.Synchronizer)
	assert.NotNil(t, svc.Query)
	assert.NotNil(t, svc.Upload)
	assert.NotNil(t, svc.Session)
	assert.NotNil(t, svc.Categories)
	assert.NotNil(t, svc.Health)
	assert.NotNil(t, svc.Scheduler)
	assert.NotNil(t, svc.ConfigWatcher)
}
