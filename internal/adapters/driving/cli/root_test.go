package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_HasCommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{
		"documents", "ask", "chat", "upload", "category", "login",
		"logout", "whoami", "org", "health", "watch", "mcp", "version",
	} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config-dir"))
}

func TestRootCmd_InitializerWiresServices(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	SetServices(Services{})

	var gotOpts GlobalOptions
	cleaned := false
	SetInitializer(func(_ context.Context, opts GlobalOptions) (Services, func(), error) {
		gotOpts = opts
		return Services{Session: ts.session}, func() { cleaned = true }, nil
	})
	defer SetInitializer(nil)
	defer func() { globalOpts = GlobalOptions{} }()

	out, err := execute(t, "--config-dir", "/tmp/kb", "whoami")

	require.NoError(t, err)
	assert.Equal(t, "/tmp/kb", gotOpts.ConfigDir)
	assert.True(t, cleaned)
	assert.Contains(t, out, "logged out")
}

func TestRootCmd_InitializerError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	SetInitializer(func(_ context.Context, _ GlobalOptions) (Services, func(), error) {
		return Services{}, nil, errors.New("open store: locked")
	})
	defer SetInitializer(nil)

	_, err := execute(t, "whoami")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open store: locked")
}

func TestExplain(t *testing.T) {
	assert.NoError(t, explain(nil))

	auth := explain(domain.NewAPIError(401, "/documents", "unauthorized"))
	assert.ErrorIs(t, auth, domain.ErrAuthRequired)
	assert.Contains(t, auth.Error(), "kbsync login")

	offline := explain(fmt.Errorf("load: %w", domain.NewAPIError(0, "/documents", "cannot reach server")))
	assert.Contains(t, offline.Error(), "api.base_url")

	other := errors.New("other")
	assert.Equal(t, other, explain(other))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "a", truncate("abc", 1))
}
