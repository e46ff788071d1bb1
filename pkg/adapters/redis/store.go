package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/frusal/deploy-my-schema/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.WorkspaceStore using Redis.
// Each snapshot is one JSON value; commits use WATCH/MULTI so that a concurrent writer
// turns into domain.ErrConflict instead of a lost update.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for workspaces. A trailing ":" is added
// when missing.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		if !strings.HasSuffix(prefix, ":") {
			prefix += ":"
		}
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "frusal:workspace:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client returns the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

// indexKey is the prefix without its separator. It is shorter than every
// workspace key, so no workspace name can land on it.
func (s *Store) indexKey() string {
	return strings.TrimSuffix(s.prefix, ":")
}

// Load retrieves the snapshot from Redis.
func (s *Store) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decode(name, val)
}

func decode(name string, val []byte) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot(name)
	if err := json.Unmarshal(val, snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workspace %q: %w", name, err)
	}
	return snap, nil
}

// Commit stores snap if the stored version still equals snap.Version.
func (s *Store) Commit(ctx context.Context, snap *domain.Snapshot) (int64, error) {
	key := s.key(snap.Name)
	var version int64

	txf := func(tx *backend.Tx) error {
		val, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, backend.Nil):
			if snap.Version != 0 {
				return domain.ErrWorkspaceNotFound
			}
		case err != nil:
			return fmt.Errorf("failed to get from redis: %w", err)
		default:
			current, err := decode(snap.Name, val)
			if err != nil {
				return err
			}
			if current.Version != snap.Version {
				return domain.ErrConflict
			}
		}

		next := *snap
		next.Version = snap.Version + 1
		data, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("failed to marshal workspace: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, s.indexKey(), snap.Name)
			return nil
		})
		if err != nil {
			return err
		}
		version = next.Version
		return nil
	}

	err := s.client.Watch(ctx, txf, key)
	if errors.Is(err, backend.TxFailedErr) {
		return 0, domain.ErrConflict
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Delete removes the workspace.
func (s *Store) Delete(ctx context.Context, name string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(name))
	pipe.SRem(ctx, s.indexKey(), name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns the indexed workspace names, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
