package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/frusal/deploy-my-schema/internal/logging"
	fileAdapter "github.com/frusal/deploy-my-schema/pkg/adapters/file"
	httpAdapter "github.com/frusal/deploy-my-schema/pkg/adapters/http"
	"github.com/frusal/deploy-my-schema/pkg/adapters/memory"
	redisAdapter "github.com/frusal/deploy-my-schema/pkg/adapters/redis"
	"github.com/frusal/deploy-my-schema/pkg/config"
	"github.com/frusal/deploy-my-schema/pkg/observability"
	"github.com/frusal/deploy-my-schema/pkg/persistence/middleware"
	"github.com/frusal/deploy-my-schema/pkg/ports"
	"github.com/frusal/deploy-my-schema/pkg/workspace"
	"github.com/prometheus/client_golang/prometheus"
)

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	Debug      bool
	// LogLevel is "debug", "info", "warn" or "error". Debug wins over it.
	LogLevel string

	// Out receives command output, Err receives log records. Both default to the process streams.
	Out io.Writer
	Err io.Writer

	// Metrics, if set, instruments the workspace store.
	Metrics prometheus.Registerer
}

func (o Options) stdout() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	if o.Debug {
		level = slog.LevelDebug
	}
	if o.Err == nil {
		return logging.New(level), nil
	}
	return logging.NewWithWriter(o.Err, level), nil
}

// Env is what a command works with once frusal.json has been read.
type Env struct {
	Config  *config.Config
	Store   ports.WorkspaceStore
	Service *workspace.Service
	Creds   ports.CredentialStore
	Logger  *slog.Logger

	closers []func(context.Context) error
}

// Open loads the configuration and connects to the configured backend.
// A missing or malformed config fails here, before anything touches the network.
func Open(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	return OpenConfig(cfg, opts)
}

// OpenConfig is Open for an already loaded configuration.
func OpenConfig(cfg *config.Config, opts Options) (*Env, error) {
	logger, err := opts.logger()
	if err != nil {
		return nil, err
	}
	env := &Env{
		Config: cfg,
		Creds:  fileAdapter.NewCredentials(cfg.Credentials),
		Logger: logger,
	}

	var svcOpts []workspace.Option
	switch cfg.Backend.Type {
	case config.BackendMemory:
		env.Store = memory.NewStore()

	case config.BackendFile:
		fo, err := cfg.FileOptions()
		if err != nil {
			return nil, err
		}
		env.Store = fileAdapter.New(fo.Dir)

	case config.BackendRedis:
		ro, err := cfg.RedisOptions()
		if err != nil {
			return nil, err
		}
		var storeOpts []redisAdapter.Option
		if ro.Prefix != "" {
			storeOpts = append(storeOpts, redisAdapter.WithPrefix(ro.Prefix))
		}
		store := redisAdapter.New(ro.Addr, ro.Password, ro.DB, storeOpts...)
		env.Store = store
		env.closers = append(env.closers, func(context.Context) error { return store.Close() })
		if ro.Lock {
			svcOpts = append(svcOpts,
				workspace.WithLocker(redisAdapter.NewLocker(store.Client(), "frusal:")),
				workspace.WithLockTTL(ro.LockTTL),
			)
		}

	case config.BackendHTTP:
		ho, err := cfg.HTTPOptions()
		if err != nil {
			return nil, err
		}
		env.Store = httpAdapter.NewClient(ho.URL, &http.Client{Timeout: ho.Timeout})

	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Backend.Type)
	}

	var mws []middleware.Middleware
	if opts.Metrics != nil {
		metrics := observability.NewMetrics(opts.Metrics)
		mws = append(mws, func(next ports.WorkspaceStore) ports.WorkspaceStore {
			return observability.Instrument(next, metrics)
		})
	}
	if cfg.Encryption.Enabled() {
		active, fallback, err := cfg.Encryption.Keys()
		if err != nil {
			return nil, err
		}
		encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, encrypt)
	}
	env.Store = middleware.Chain(env.Store, mws...)

	svcOpts = append(svcOpts, workspace.WithLogger(logger))
	env.Service = workspace.NewService(env.Store, svcOpts...)
	logger.Debug("Backend ready", "type", cfg.Backend.Type)
	return env, nil
}

// Close releases the backend connections.
func (e *Env) Close(ctx context.Context) error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}
