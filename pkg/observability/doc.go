/*
Package observability provides lifecycle hooks for monitoring the formflow engine.

Metrics exports resolutions, violations and validation latency as Prometheus
collectors; LoggingHooks audits the same events through slog. Combine both when
building the engine:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	eng, _ := formflow.New(formflow.WithLifecycleHooks(observability.Combine(
		metrics.Hooks(),
		observability.LoggingHooks(logger),
	)))
*/
package observability
