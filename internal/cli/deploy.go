package cli

import (
	"context"
	"fmt"

	"github.com/frusal/deploy-my-schema/internal/presentation/tui"
	"github.com/frusal/deploy-my-schema/pkg/deploy"
	"github.com/frusal/deploy-my-schema/pkg/session"
)

// SessionFactory builds the session a deployment runs in.
type SessionFactory func(ctx context.Context, env *Env) (deploy.Session, error)

// OpenSession is the default SessionFactory. The session owns env and closes its
// backend connections when it closes.
func OpenSession(ctx context.Context, env *Env) (deploy.Session, error) {
	return session.New(ctx, env.Service, env.Creds,
		session.WithLogger(env.Logger),
		session.WithCloser(env.Close),
	)
}

// RunDeploy reads frusal.json, opens a session and deploys the schema into the configured
// workspace. newSession may be nil.
func RunDeploy(ctx context.Context, opts Options, newSession SessionFactory) error {
	if newSession == nil {
		newSession = OpenSession
	}

	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	out := opts.stdout()
	if tui.IsTerminal(out) {
		tui.PrintBanner(out, Version)
	}

	sess, err := newSession(ctx, env)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}

	res, err := deploy.Run(ctx, sess, env.Config.Workspace, deploy.WithLogger(env.Logger))
	if err != nil {
		return err
	}

	p := tui.NewPrinter(out)
	if !res.Deployed() {
		p.Warn("Deployment skipped: %s", res.Skipped)
		return nil
	}
	p.Success("Deployed schema into module %q of workspace %q", res.Module, res.Workspace)
	p.Info("Replaced %d marked classes and types, added %d products", res.Deleted, res.Products)
	return nil
}
