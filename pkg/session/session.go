package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/frusal/deploy-my-schema/internal/logging"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/ports"
	"github.com/frusal/deploy-my-schema/pkg/workspace"
)

// CloseFunc releases something the session holds on to (a connection, a client).
type CloseFunc func(ctx context.Context) error

// Session is one client's connection to the workspace service.
// It knows who the user is and which workspace, if any, they logged into.
type Session struct {
	svc    *workspace.Service
	logger *slog.Logger

	mu      sync.Mutex
	cred    *domain.Credential
	ws      *workspace.Workspace
	closers []CloseFunc
	closed  bool
}

// Option configures the Session.
type Option func(*Session)

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithCloser registers fn to run when the Session closes.
// Closers run once, in reverse registration order.
func WithCloser(fn CloseFunc) Option {
	return func(s *Session) {
		s.closers = append(s.closers, fn)
	}
}

// New creates a Session for the credential held by creds.
// An empty credential store is not an error: the session simply has no user.
func New(ctx context.Context, svc *workspace.Service, creds ports.CredentialStore, opts ...Option) (*Session, error) {
	s := &Session{
		svc:    svc,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	cred, err := creds.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrNoCredential):
	case err != nil:
		return nil, fmt.Errorf("failed to load credential: %w", err)
	default:
		s.cred = cred
	}
	return s, nil
}

// User returns the name of the logged in user.
func (s *Session) User() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return "", false
	}
	return s.cred.User, true
}

// Login selects the workspace to work with.
// An empty name or a workspace that does not exist leaves the session without a workspace
// and returns (nil, nil); the caller decides whether that is fatal.
func (s *Session) Login(ctx context.Context, name string) (*workspace.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrSessionClosed
	}
	if s.cred == nil {
		return nil, domain.ErrNotLoggedIn
	}
	if name == "" {
		s.logger.Warn("No workspace configured")
		return nil, nil
	}

	ws, err := s.svc.Open(ctx, name, s.cred)
	if errors.Is(err, domain.ErrWorkspaceNotFound) {
		s.logger.Warn("Workspace not found", "workspace", name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to log into workspace %q: %w", name, err)
	}

	s.ws = ws
	s.logger.Info("Logged in", "user", s.cred.User, "workspace", name)
	return ws, nil
}

// Workspace returns the workspace selected by Login, or nil.
func (s *Session) Workspace() *workspace.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws
}

// Close ends the session. It is safe to call more than once; only the first call
// runs the registered closers.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.ws = nil
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
