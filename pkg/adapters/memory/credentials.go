package memory

import (
	"context"
	"sync"

	"github.com/frusal/deploy-my-schema/pkg/domain"
)

// Credentials implements ports.CredentialStore in memory.
type Credentials struct {
	cred *domain.Credential
	mu   sync.Mutex
}

// NewCredentials creates a credential store, optionally pre-filled.
func NewCredentials(cred *domain.Credential) *Credentials {
	c := &Credentials{}
	if cred != nil {
		copied := *cred
		c.cred = &copied
	}
	return c
}

func (c *Credentials) Load(ctx context.Context) (*domain.Credential, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cred == nil {
		return nil, domain.ErrNoCredential
	}
	copied := *c.cred
	return &copied, nil
}

func (c *Credentials) Save(ctx context.Context, cred *domain.Credential) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *cred
	c.cred = &copied
	return nil
}

func (c *Credentials) Delete(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = nil
	return nil
}
