package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frusal/deploy-my-schema/internal/logging"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/ports"
	"golang.org/x/crypto/bcrypt"
)

// Service is the client side of the workspace service: it opens workspaces on top of a
// WorkspaceStore and coordinates their commits.
type Service struct {
	store    ports.WorkspaceStore
	locks    *lockSet
	logger   *slog.Logger
	hashCost int
}

// Option configures the Service.
type Option func(*Service)

// WithLocker enables distributed locking of commits.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) {
		s.locks.locker = locker
	}
}

// WithLockTTL sets how long a distributed commit lock may be held.
func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.locks.ttl = ttl
	}
}

// WithLogger configures a logger for the Service and everything it opens.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithHashCost sets the bcrypt cost used for member tokens.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

// NewService creates a Service backed by store.
func NewService(store ports.WorkspaceStore, opts ...Option) *Service {
	s := &Service{
		store:    store,
		locks:    newLockSet(),
		logger:   logging.NewNop(),
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.locks.logger = s.logger
	return s
}

// Provision creates a new workspace owned by cred.
// Returns domain.ErrWorkspaceExists if the name is taken.
func (s *Service) Provision(ctx context.Context, name string, cred *domain.Credential) error {
	if cred == nil {
		return domain.ErrNotLoggedIn
	}
	if name == "" {
		return fmt.Errorf("workspace name cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cred.Token), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}

	snap, err := seed(name)
	if err != nil {
		return err
	}
	snap.Members[cred.User] = string(hash)

	return s.locks.withLock(ctx, name, func(ctx context.Context) error {
		if _, err := s.store.Commit(ctx, snap); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return fmt.Errorf("%q: %w", name, domain.ErrWorkspaceExists)
			}
			return fmt.Errorf("failed to provision workspace %q: %w", name, err)
		}
		s.logger.Info("Workspace provisioned", "workspace", name, "owner", cred.User)
		return nil
	})
}

// Open authenticates cred against the workspace and returns a handle on it.
func (s *Service) Open(ctx context.Context, name string, cred *domain.Credential) (*Workspace, error) {
	if cred == nil {
		return nil, domain.ErrNotLoggedIn
	}
	snap, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := authorize(snap, cred); err != nil {
		return nil, err
	}
	return &Workspace{svc: s, name: name, logger: s.logger.With("workspace", name)}, nil
}

// List returns the names of all workspaces.
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.store.List(ctx)
}

// Drop deletes a workspace. Only members may drop it.
func (s *Service) Drop(ctx context.Context, name string, cred *domain.Credential) error {
	if _, err := s.Open(ctx, name, cred); err != nil {
		return err
	}
	return s.locks.withLock(ctx, name, func(ctx context.Context) error {
		return s.store.Delete(ctx, name)
	})
}

func authorize(snap *domain.Snapshot, cred *domain.Credential) error {
	hash, ok := snap.Members[cred.User]
	if !ok {
		return fmt.Errorf("user %q: %w", cred.User, domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(cred.Token)); err != nil {
		return fmt.Errorf("user %q: %w", cred.User, domain.ErrUnauthorized)
	}
	return nil
}
