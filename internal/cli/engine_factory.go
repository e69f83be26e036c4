package cli

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/pkg/observability"
)

// CreateEngine initializes a formflow engine with standard CLI conventions.
// When reg is not nil the engine also feeds Prometheus collectors registered with it.
func CreateEngine(logger *slog.Logger, reg prometheus.Registerer) (*formflow.Engine, error) {
	lifecycle := observability.LoggingHooks(logger)
	if reg != nil {
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("error registering metrics: %w", err)
		}
		lifecycle = observability.Combine(lifecycle, metrics.Hooks())
	}

	engine, err := formflow.New(
		formflow.WithLogger(logger),
		formflow.WithLifecycleHooks(lifecycle),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}
