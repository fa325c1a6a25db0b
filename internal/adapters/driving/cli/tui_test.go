package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui"
	"github.com/custodia-labs/folio/internal/core/domain"
)

func TestTUICmd_Use(t *testing.T) {
	assert.Equal(t, "tui", tuiCmd.Use)
}

func TestTUICmd_Short(t *testing.T) {
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
}

func TestTUICmd_Long(t *testing.T) {
	assert.Contains(t, tuiCmd.Long, "interactive terminal user interface")
	assert.Contains(t, tuiCmd.Long, "--no-watch")
}

func TestTUICmd_HasNoWatchFlag(t *testing.T) {
	flag := tuiCmd.Flags().Lookup("no-watch")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestTUICmd_IsRegistered(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "tui" {
			found = true
			break
		}
	}
	assert.True(t, found, "tui command should be registered with root")
}

func TestTUICmd_RequiresSession(t *testing.T) {
	env := setupTestServices(t)
	base := runtimeFactory
	runtimeFactory = func(ctx context.Context, s domain.AppSettings) (*Runtime, error) {
		rt, err := base(ctx, s)
		if err != nil {
			return nil, err
		}
		rt.Session = nil
		return rt, nil
	}

	_, err := executeCommand(t, "", "tui")

	assert.ErrorIs(t, err, tui.ErrMissingQuerySession)
	assert.Equal(t, 1, env.closed)
}

func TestTUICmd_RuntimeError(t *testing.T) {
	setupTestServices(t)
	runtimeFactory = nil

	_, err := executeCommand(t, "", "tui")

	assert.EqualError(t, err, "runtime not configured")
}
