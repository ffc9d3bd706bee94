package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShutdownRunsHooksAndStopsWorker(t *testing.T) {
	workerStopped := false
	var hookCtx context.Context

	a := &App{
		workerCancel: func() { workerStopped = true },
		shutdownHooks: []func(context.Context) error{
			func(ctx context.Context) error {
				hookCtx = ctx
				return nil
			},
		},
	}

	ctx := context.Background()
	a.shutdown(ctx)

	assert.True(t, workerStopped)
	assert.Equal(t, ctx, hookCtx)
}

func TestShutdownSurvivesFailingHook(t *testing.T) {
	ran := false
	a := &App{
		shutdownHooks: []func(context.Context) error{
			func(context.Context) error { return errors.New("flush failed") },
			func(context.Context) error { ran = true; return nil },
		},
	}

	a.shutdown(context.Background())
	assert.True(t, ran)
}
