package middleware_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/dsl"
	"github.com/aretw0/formflow/pkg/persistence/middleware"
	"github.com/aretw0/formflow/pkg/ports"
)

func branching() *document.Document {
	b := dsl.New("Branching").ServiceID("svc-1")
	b.Start("page-a").
		Component("X", domain.ComponentRadios, "yes", "no").
		Branch("page-b", dsl.Equals("X", "yes")).
		Go("page-c")
	b.Question("page-b").Go("page-c")
	b.Confirmation("page-c")
	return b.Document()
}

func sequence() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("v%d", n)
	}
}

func TestVersionMiddleware(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	store := middleware.Chain(inner, middleware.NewVersionMiddleware(sequence()))

	doc := branching()
	require.NoError(t, store.Save(ctx, doc))
	require.NoError(t, store.Save(ctx, doc))

	loaded, err := store.Load(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", loaded.VersionID)
	assert.Empty(t, doc.VersionID, "the caller's document is not modified")
}

func TestValidationMiddleware(t *testing.T) {
	ctx := context.Background()
	eng, err := formflow.New()
	require.NoError(t, err)

	inner := memory.NewStore()
	store := middleware.Chain(inner, middleware.NewValidationMiddleware(eng))

	require.NoError(t, store.Save(ctx, branching()))

	bad := branching()
	bad.ServiceID = "svc-bad"
	bad.Flow["page-b"] = document.FlowObject{Type: domain.FlowTypePage, Next: domain.FlowEdge{Fallback: "ghost"}}
	err = store.Save(ctx, bad)
	require.Error(t, err)
	require.Len(t, domain.Violations(err), 1)

	_, err = inner.Load(ctx, "svc-bad")
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)
}

func TestChain_Order(t *testing.T) {
	ctx := context.Background()
	eng, err := formflow.New()
	require.NoError(t, err)

	ids := sequence()
	store := middleware.Chain(memory.NewStore(),
		middleware.NewValidationMiddleware(eng),
		middleware.NewVersionMiddleware(ids),
	)

	bad := branching()
	delete(bad.Flow, "page-b")
	require.Error(t, store.Save(ctx, bad))

	require.NoError(t, store.Save(ctx, branching()))
	loaded, err := store.Load(ctx, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, "v1", loaded.VersionID, "rejected saves do not consume a version")
}

func TestMiddleware_Contract(t *testing.T) {
	store := middleware.Chain(memory.NewStore(), middleware.NewVersionMiddleware(nil))
	ports.RunDocumentStoreContract(t, store)
}
