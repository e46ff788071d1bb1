package cli

import (
	"context"
	"fmt"

	"github.com/frusal/deploy-my-schema/internal/presentation/tui"
)

// InitWorkspace provisions a workspace owned by the logged in user. If nobody is logged in
// and user is set, a credential with a random token is created and stored first.
// An empty name falls back to the workspace named in frusal.json.
func InitWorkspace(ctx context.Context, opts Options, name, user string) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	if name == "" {
		name = env.Config.Workspace
	}
	if name == "" {
		return fmt.Errorf("no workspace name given and none configured")
	}

	if user, err = SanitizeInput(user); err != nil {
		return fmt.Errorf("user: %w", err)
	}
	cred, minted, err := env.credential(ctx, user)
	if err != nil {
		return err
	}

	if err := env.Service.Provision(ctx, name, cred); err != nil {
		return err
	}

	p := tui.NewPrinter(opts.stdout())
	if minted {
		p.Info("Logged in as %s with token %s", cred.User, cred.Token)
	}
	p.Success("Workspace %q created", name)
	return nil
}

// ListWorkspaces prints the names of all workspaces in the backend.
func ListWorkspaces(ctx context.Context, opts Options) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	names, err := env.Service.List(ctx)
	if err != nil {
		return err
	}
	out := opts.stdout()
	for _, name := range names {
		marker := " "
		if name == env.Config.Workspace {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %s\n", marker, name)
	}
	return nil
}

// DropWorkspace deletes a workspace the logged in user is a member of.
func DropWorkspace(ctx context.Context, opts Options, name string) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	cred, _, err := env.credential(ctx, "")
	if err != nil {
		return err
	}
	if err := env.Service.Drop(ctx, name, cred); err != nil {
		return err
	}
	tui.NewPrinter(opts.stdout()).Success("Workspace %q deleted", name)
	return nil
}
