package ports

import (
	"context"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// CredentialStore keeps the credential written by `login`.
type CredentialStore interface {
	// Load returns the stored credential or domain.ErrNoCredential.
	Load(ctx context.Context) (*domain.Credential, error)

	Save(ctx context.Context, cred *domain.Credential) error

	// Delete forgets the credential. Deleting when nothing is stored is not an error.
	Delete(ctx context.Context) error
}
