package observability

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/formflow/pkg/domain"
)

// Resolution outcomes recorded by formflow_resolutions_total.
const (
	OutcomeBranch     = "branch"
	OutcomeFallback   = "fallback"
	OutcomeEnd        = "end"
	OutcomeUnresolved = "unresolved"
	OutcomeNotFound   = "not_found"
	OutcomeError      = "error"
)

// Metrics exports engine activity as Prometheus collectors.
type Metrics struct {
	Resolutions        *prometheus.CounterVec
	Violations         *prometheus.CounterVec
	ValidationDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formflow_resolutions_total",
				Help: "Total number of next page resolutions by outcome",
			},
			[]string{"outcome"},
		),
		Violations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formflow_violations_total",
				Help: "Total number of validation violations by category",
			},
			[]string{"category"},
		),
		ValidationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "formflow_validation_duration_seconds",
				Help:    "Duration of service validations",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Resolutions, m.Violations, m.ValidationDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(_ context.Context, e *domain.ResolveEvent) {
			m.Resolutions.WithLabelValues(Outcome(e)).Inc()
		},
		OnValidate: func(_ context.Context, e *domain.ValidateEvent) {
			m.ValidationDuration.Observe(e.Duration.Seconds())
			m.Violations.WithLabelValues(string(domain.CategorySchema)).Add(float64(e.Schema))
			m.Violations.WithLabelValues(string(domain.CategoryGraph)).Add(float64(e.Graph))
		},
	}
}

// Outcome classifies a resolution event.
func Outcome(e *domain.ResolveEvent) string {
	switch {
	case errors.Is(e.Err, domain.ErrUnresolvedTransition):
		return OutcomeUnresolved
	case errors.Is(e.Err, domain.ErrPageNotFound):
		return OutcomeNotFound
	case e.Err != nil:
		return OutcomeError
	case e.NextID == domain.EndOfFlow:
		return OutcomeEnd
	case e.Branch >= 0:
		return OutcomeBranch
	default:
		return OutcomeFallback
	}
}
