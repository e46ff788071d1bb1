package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/frusal/deploy-my-schema/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Serve exposes the configured workspace store over HTTP until ctx is cancelled.
func Serve(ctx context.Context, opts Options, addr string) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opts.Metrics = reg

	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close(context.Background())

	handler := httpAdapter.NewHandler(env.Store,
		httpAdapter.WithLogger(env.Logger),
		httpAdapter.WithMetrics(reg),
		httpAdapter.WithVersion(Version),
	)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	env.Logger.Info("Serving workspaces", "addr", addr, "backend", env.Config.Backend.Type)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		if sig := Signal(ctx); sig != nil {
			env.Logger.Info("Shutting down", "signal", sig.String())
		} else {
			env.Logger.Info("Shutting down")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}
