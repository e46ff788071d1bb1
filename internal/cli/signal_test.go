package cli

import (
	"bytes"
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/frusal/deploy-my-schema/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchSignals_RecordsSignal(t *testing.T) {
	ch := make(chan os.Signal, 1)
	ctx, cancel := watchSignals(context.Background(), ch)
	defer cancel()

	assert.Nil(t, Signal(ctx))
	ch <- syscall.SIGTERM

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled by signal")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Equal(t, syscall.SIGTERM, Signal(ctx))
}

func TestWatchSignals_PlainCancel(t *testing.T) {
	ctx, cancel := watchSignals(context.Background(), make(chan os.Signal))
	cancel()

	<-ctx.Done()
	assert.Nil(t, Signal(ctx))
}

func TestServe_ReportsSignalOnShutdown(t *testing.T) {
	p := testutils.SetupProject(t, "shop")
	var logs bytes.Buffer
	opts := Options{ConfigPath: p.ConfigPath, Out: &bytes.Buffer{}, Err: &logs}

	ch := make(chan os.Signal, 1)
	ctx, cancel := watchSignals(context.Background(), ch)
	defer cancel()
	ch <- os.Interrupt

	require.NoError(t, Serve(ctx, opts, "127.0.0.1:0"))
	assert.Contains(t, logs.String(), "Shutting down")
	assert.Contains(t, logs.String(), "signal=interrupt")
}
