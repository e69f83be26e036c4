package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/observability"
)

func TestOutcome(t *testing.T) {
	cases := []struct {
		name  string
		event domain.ResolveEvent
		want  string
	}{
		{"Branch", domain.ResolveEvent{NextID: "b", Branch: 0}, observability.OutcomeBranch},
		{"Fallback", domain.ResolveEvent{NextID: "c", Branch: -1}, observability.OutcomeFallback},
		{"End", domain.ResolveEvent{Branch: -1}, observability.OutcomeEnd},
		{"Unresolved", domain.ResolveEvent{Err: &domain.UnresolvedTransitionError{PageID: "p"}}, observability.OutcomeUnresolved},
		{"Not Found", domain.ResolveEvent{Err: domain.ErrPageNotFound}, observability.OutcomeNotFound},
		{"Other", domain.ResolveEvent{Err: assert.AnError}, observability.OutcomeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, observability.Outcome(&tc.event))
		})
	}
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()
	hooks.OnResolve(ctx, &domain.ResolveEvent{NextID: "b", Branch: 0})
	hooks.OnResolve(ctx, &domain.ResolveEvent{NextID: "b", Branch: 1})
	hooks.OnResolve(ctx, &domain.ResolveEvent{Err: domain.ErrPageNotFound})
	hooks.OnValidate(ctx, &domain.ValidateEvent{Duration: time.Millisecond, Schema: 2, Graph: 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Resolutions.WithLabelValues(observability.OutcomeBranch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues(observability.OutcomeNotFound)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Violations.WithLabelValues("schema")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Violations.WithLabelValues("graph")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ValidationDuration))

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err, "registering twice should fail")
}

func TestCombine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	calls := 0
	counting := domain.LifecycleHooks{
		OnResolve: func(context.Context, *domain.ResolveEvent) { calls++ },
	}
	hooks := observability.Combine(counting, observability.LoggingHooks(logger), domain.LifecycleHooks{})

	hooks.OnResolve(context.Background(), &domain.ResolveEvent{PageID: "p", NextID: "q", Branch: -1})
	hooks.OnValidate(context.Background(), &domain.ValidateEvent{Schema: 1})

	assert.Equal(t, 1, calls)
	assert.Contains(t, buf.String(), `"page_id":"p"`)
	assert.Contains(t, buf.String(), `"outcome":"fallback"`)
	assert.Contains(t, buf.String(), `"schema_violations":1`)
}
