package observability

import (
	"context"
	"errors"
	"time"

	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for workspace store operations.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "frusal",
				Subsystem: "store",
				Name:      "operations_total",
				Help:      "Workspace store operations by outcome",
			},
			[]string{"op", "result"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "frusal",
				Subsystem: "store",
				Name:      "operation_duration_seconds",
				Help:      "Duration of workspace store operations",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.Operations, m.Duration)
	return m
}

// Instrument wraps store so that every call is recorded in m.
func Instrument(store ports.WorkspaceStore, m *Metrics) ports.WorkspaceStore {
	return &instrumented{next: store, m: m}
}

type instrumented struct {
	next ports.WorkspaceStore
	m    *Metrics
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	s.m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	s.m.Operations.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrWorkspaceNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (s *instrumented) Load(ctx context.Context, name string) (snap *domain.Snapshot, err error) {
	defer func(start time.Time) { s.observe("load", start, err) }(time.Now())
	return s.next.Load(ctx, name)
}

func (s *instrumented) Commit(ctx context.Context, snap *domain.Snapshot) (version int64, err error) {
	defer func(start time.Time) { s.observe("commit", start, err) }(time.Now())
	return s.next.Commit(ctx, snap)
}

func (s *instrumented) Delete(ctx context.Context, name string) (err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, name)
}

func (s *instrumented) List(ctx context.Context) (names []string, err error) {
	defer func(start time.Time) { s.observe("list", start, err) }(time.Now())
	return s.next.List(ctx)
}
