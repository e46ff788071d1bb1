package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/frusal/deploy-my-schema/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Credentials implements ports.CredentialStore as a YAML file readable only by its owner.
type Credentials struct {
	Path string
}

// DefaultCredentialsPath returns ~/.frusal/credentials.yaml, or a relative path if the
// home directory is unknown.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".frusal", "credentials.yaml")
	}
	return filepath.Join(home, ".frusal", "credentials.yaml")
}

// NewCredentials creates a credential store at path, or at DefaultCredentialsPath if empty.
func NewCredentials(path string) *Credentials {
	if path == "" {
		path = DefaultCredentialsPath()
	}
	return &Credentials{Path: path}
}

func (c *Credentials) Load(ctx context.Context) (*domain.Credential, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNoCredential
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var cred domain.Credential
	if err := yaml.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", c.Path, err)
	}
	if cred.User == "" {
		return nil, domain.ErrNoCredential
	}
	return &cred, nil
}

func (c *Credentials) Save(ctx context.Context, cred *domain.Credential) error {
	data, err := yaml.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	return writeAtomic(filepath.Dir(c.Path), c.Path, data, 0o600)
}

func (c *Credentials) Delete(ctx context.Context) error {
	err := os.Remove(c.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}
