package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/formflow/pkg/domain"
)

// LoggingHooks returns hooks that write every engine event to logger.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			attrs := []any{
				"service", e.ServiceID,
				"page_id", e.PageID,
				"next_id", e.NextID,
				"branch", e.Branch,
				"outcome", Outcome(e),
			}
			if e.Err != nil {
				logger.WarnContext(ctx, "resolve", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "resolve", attrs...)
		},
		OnValidate: func(ctx context.Context, e *domain.ValidateEvent) {
			logger.InfoContext(ctx, "validate",
				"service", e.ServiceID,
				"duration", e.Duration,
				"schema_violations", e.Schema,
				"graph_violations", e.Graph,
			)
		},
	}
}

// Combine fans every event out to all the given hooks, in order.
func Combine(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			for _, h := range hooks {
				if h.OnResolve != nil {
					h.OnResolve(ctx, e)
				}
			}
		},
		OnValidate: func(ctx context.Context, e *domain.ValidateEvent) {
			for _, h := range hooks {
				if h.OnValidate != nil {
					h.OnValidate(ctx, e)
				}
			}
		},
	}
}
