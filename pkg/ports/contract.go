package ports

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
)

func contractDocument(serviceID string) *document.Document {
	return &document.Document{
		ServiceID:   serviceID,
		ServiceName: "Contract",
		CreatedBy:   "contract",
		Pages: []document.Page{
			{
				UUID: "start", ID: "page.start", Type: domain.TypeStart, URL: "/", Heading: "Contract",
				Components: []domain.Component{{ID: "q", Name: "page.start_radios_1", Type: domain.ComponentRadios}},
			},
			{UUID: "done", ID: "page.confirmation", Type: domain.TypeConfirmation, URL: "form-sent", Heading: "Done"},
		},
		StandalonePages: []document.Page{},
		Flow: map[string]document.FlowObject{
			"start": {Type: domain.FlowTypePage, Next: domain.FlowEdge{
				Branches: []domain.Branch{{
					Conditions:  []domain.Condition{{ComponentID: "q", Operator: domain.OpEquals, Value: "yes"}},
					Destination: "done",
				}},
				Fallback: "done",
			}},
			"done": {Type: domain.FlowTypePage, Next: domain.FlowEdge{Fallback: domain.EndOfFlow}},
		},
	}
}

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore implementation
// adheres to the defined interface contract.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()
	serviceID := "contract-service-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		doc := contractDocument(serviceID)

		err := store.Save(ctx, doc)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, serviceID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, doc.ServiceName, loaded.ServiceName)
		require.Len(t, loaded.Pages, 2)
		assert.Equal(t, doc.Pages[0].Components[0].ID, loaded.Pages[0].Components[0].ID)

		edge := loaded.Flow["start"].Next
		require.Len(t, edge.Branches, 1)
		assert.Equal(t, "done", edge.Branches[0].Destination)
		assert.Equal(t, domain.OpEquals, edge.Branches[0].Conditions[0].Operator)
		assert.Equal(t, domain.EndOfFlow, loaded.Flow["done"].Next.Fallback)
	})

	t.Run("Save Replaces", func(t *testing.T) {
		doc := contractDocument(serviceID)
		doc.ServiceName = "Renamed"
		require.NoError(t, store.Save(ctx, doc))

		loaded, err := store.Load(ctx, serviceID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", loaded.ServiceName)
	})

	t.Run("Loaded Documents Are Snapshots", func(t *testing.T) {
		loaded, err := store.Load(ctx, serviceID)
		require.NoError(t, err)
		loaded.Pages[0].Heading = "mutated"

		again, err := store.Load(ctx, serviceID)
		require.NoError(t, err)
		assert.Equal(t, "Contract", again.Pages[0].Heading)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+serviceID)
		assert.ErrorIs(t, err, domain.ErrServiceNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, contractDocument(serviceID))
		require.NoError(t, err)

		err = store.Delete(ctx, serviceID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, serviceID)
		assert.ErrorIs(t, err, domain.ErrServiceNotFound, "Load after Delete should return ErrServiceNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := serviceID + "-1"
		id2 := serviceID + "-2"
		require.NoError(t, store.Save(ctx, contractDocument(id1)))
		require.NoError(t, store.Save(ctx, contractDocument(id2)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		services, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, services, id1)
		assert.Contains(t, services, id2)
	})
}

// RunLockerContract verifies that a DistributedLocker provides mutual exclusion per key.
func RunLockerContract(t *testing.T, locker DistributedLocker) {
	ctx := context.Background()

	t.Run("Lock and Unlock", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-key", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))

		unlock, err = locker.Lock(ctx, "contract-key", time.Second)
		require.NoError(t, err, "lock should be reusable after unlock")
		require.NoError(t, unlock(ctx))
	})

	t.Run("Held Lock Blocks", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "contract-held", 5*time.Second)
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, "contract-held", time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Independent Keys", func(t *testing.T) {
		unlockA, err := locker.Lock(ctx, "contract-a", time.Second)
		require.NoError(t, err)
		defer func() { _ = unlockA(ctx) }()

		waitCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		unlockB, err := locker.Lock(waitCtx, "contract-b", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlockB(ctx))
	})

	t.Run("Mutual Exclusion", func(t *testing.T) {
		var inside, maxInside int32
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "contract-mutex", 5*time.Second)
				if !assert.NoError(t, err) {
					return
				}
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				assert.NoError(t, unlock(ctx))
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), atomic.LoadInt32(&maxInside))
	})
}
