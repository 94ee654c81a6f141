package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canvas-notion-sync/internal/config"
	"canvas-notion-sync/internal/logger"
	"canvas-notion-sync/internal/sync"
)

type countingRunner struct{ calls int }

func (r *countingRunner) RunOnce(ctx context.Context) (sync.Report, error) {
	r.calls++
	return sync.Report{}, nil
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "serve", "export"})
}

func TestRunCommand_Flags(t *testing.T) {
	cmd := newRunCommand(&rootOptions{})

	onlyDated := cmd.Flags().Lookup("only-dated")
	require.NotNil(t, onlyDated)
	assert.Equal(t, "true", onlyDated.DefValue)
	assert.NotNil(t, cmd.Flags().Lookup("skip-digest"))
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := newScheduler(context.Background(), "every now and then", &countingRunner{}, 0, logger.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SYNC_SCHEDULE")
}

func TestNewScheduler_RegistersEntry(t *testing.T) {
	c, err := newScheduler(context.Background(), "*/15 * * * *", &countingRunner{}, 0, logger.NewNop())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
}

func TestNewCanvasClient_RetryFromConfig(t *testing.T) {
	c := newCanvasClient(config.Config{CanvasBaseURL: "https://canvas.test", CanvasMaxAttempts: 3, CanvasPerPage: 50})
	assert.Equal(t, 3, c.Retry.MaxAttempts)
	assert.Equal(t, 50, c.PerPage)

	c = newCanvasClient(config.Config{CanvasBaseURL: "https://canvas.test", CanvasMaxAttempts: 1, CanvasPerPage: 100})
	assert.Equal(t, 1, c.Retry.MaxAttempts)
}
