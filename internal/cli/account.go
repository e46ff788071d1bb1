package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/frusal/deploy-my-schema/internal/presentation/tui"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/google/uuid"
)

// Login stores a credential for later commands. When frusal.json names an existing
// workspace the credential is checked against it before it is saved.
func Login(ctx context.Context, opts Options, user, token string) error {
	user, err := SanitizeInput(user)
	if err != nil {
		return fmt.Errorf("user: %w", err)
	}
	if token, err = SanitizeInput(token); err != nil {
		return fmt.Errorf("token: %w", err)
	}
	if user == "" || token == "" {
		return errors.New("user and token are required")
	}

	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	cred := &domain.Credential{User: user, Token: token}
	p := tui.NewPrinter(opts.stdout())

	if name := env.Config.Workspace; name != "" {
		_, err := env.Service.Open(ctx, name, cred)
		switch {
		case errors.Is(err, domain.ErrWorkspaceNotFound):
			p.Warn("Workspace %q does not exist yet; use `deploy-my-schema workspace init`", name)
		case err != nil:
			return err
		default:
			p.Info("Access to workspace %q verified", name)
		}
	}

	if err := env.Creds.Save(ctx, cred); err != nil {
		return err
	}
	p.Success("Logged in as %s", user)
	return nil
}

// Logout forgets the stored credential.
func Logout(ctx context.Context, opts Options) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	if err := env.Creds.Delete(ctx); err != nil {
		return err
	}
	tui.NewPrinter(opts.stdout()).Success("Logged out")
	return nil
}

// credential returns the stored credential, or one freshly minted for user when nothing
// is stored and user is given. The bool reports whether it was minted.
func (e *Env) credential(ctx context.Context, user string) (*domain.Credential, bool, error) {
	cred, err := e.Creds.Load(ctx)
	if err == nil {
		return cred, false, nil
	}
	if !errors.Is(err, domain.ErrNoCredential) || user == "" {
		return nil, false, err
	}

	cred = &domain.Credential{User: user, Token: uuid.NewString()}
	if err := e.Creds.Save(ctx, cred); err != nil {
		return nil, false, fmt.Errorf("failed to save credential: %w", err)
	}
	return cred, true, nil
}
