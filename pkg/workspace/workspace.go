package workspace

import (
	"context"
	"fmt"
	"log/slog"
)

// Workspace is an authenticated handle on one workspace.
type Workspace struct {
	svc    *Service
	name   string
	logger *slog.Logger
}

// Name returns the workspace identifier.
func (w *Workspace) Name() string { return w.name }

// WithTempStage loads the current snapshot into a stage, runs fn, and releases the stage
// when fn returns, fails, or panics. The stage must not be used after that.
func (w *Workspace) WithTempStage(ctx context.Context, fn func(context.Context, *Stage) error) error {
	snap, err := w.svc.store.Load(ctx, w.name)
	if err != nil {
		return fmt.Errorf("failed to load workspace %q: %w", w.name, err)
	}

	stage := &Stage{ws: w, snap: snap}
	defer stage.release()

	w.logger.Debug("Stage opened", "version", snap.Version)
	return fn(ctx, stage)
}
