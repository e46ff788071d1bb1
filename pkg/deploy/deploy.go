package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frusal/deploy-my-schema/internal/logging"
	"github.com/frusal/deploy-my-schema/pkg/workspace"
)

// Session is the part of session.Session a deployment needs.
type Session interface {
	User() (string, bool)
	Login(ctx context.Context, name string) (*workspace.Workspace, error)
	Close(ctx context.Context) error
}

// Result describes what a deployment did.
type Result struct {
	Workspace string
	Module    string
	Deleted   int
	Products  int
	Schema    *Schema

	// Skipped is set when the deployment steps did not run.
	Skipped string
}

// Deployed reports whether the schema and data were written.
func (r *Result) Deployed() bool { return r.Skipped == "" }

// Option configures Run.
type Option func(*runner)

type runner struct {
	logger *slog.Logger
}

// WithLogger sets the logger for operator messages.
func WithLogger(logger *slog.Logger) Option {
	return func(r *runner) {
		r.logger = logger
	}
}

// Run deploys the schema and data into the named workspace.
//
// A session without a user, or a login that selects no workspace, skips the deployment
// with a warning; that is not an error. The session is closed exactly once on every path.
// Its close error is returned only if nothing else failed.
func Run(ctx context.Context, sess Session, workspaceName string, opts ...Option) (res *Result, err error) {
	r := &runner{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	log := r.logger

	defer func() {
		log.Warn("Closing session.")
		if cerr := sess.Close(ctx); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close session: %w", cerr)
		}
		if err == nil {
			log.Info("Bye.")
		}
	}()

	res = &Result{Workspace: workspaceName}

	if _, ok := sess.User(); !ok {
		res.Skipped = "not logged in"
		log.Warn("Please use `deploy-my-schema login` to log in to a workspace.")
		return res, nil
	}

	log.Info("Connecting to workspace", "workspace", workspaceName)
	ws, err := sess.Login(ctx, workspaceName)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		res.Skipped = "no workspace selected"
		log.Warn("Please use `deploy-my-schema login` to select a workspace.")
		return res, nil
	}

	err = ws.WithTempStage(ctx, func(ctx context.Context, stage *workspace.Stage) error {
		module, err := workspace.Query(ctx, stage, func(tx *workspace.Tx) (string, error) {
			m, err := FindUserModule(tx)
			if err != nil {
				return "", err
			}
			return m.String("name"), nil
		})
		if err != nil {
			return err
		}
		res.Module = module
		log.Info("Creating classes at module", "module", module)

		err = stage.Transact(ctx, func(tx *workspace.Tx) error {
			m, err := FindUserModule(tx)
			if err != nil {
				return err
			}
			if res.Deleted, err = DeleteMarked(tx, m); err != nil {
				return fmt.Errorf("failed to delete previous schema: %w", err)
			}
			if res.Schema, err = CreateSchema(tx); err != nil {
				return fmt.Errorf("failed to create schema: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Debug("Schema committed", "deleted", res.Deleted, "version", stage.Version())

		err = stage.Transact(ctx, func(tx *workspace.Tx) error {
			if err := CreateData(tx); err != nil {
				return fmt.Errorf("failed to create data: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		res.Products = len(Fruits)
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Schema changes deployed.")
	return res, nil
}
