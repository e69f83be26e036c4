package ports_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
)

// MockStore is a map backed implementation of DocumentStore for testing purposes.
type MockStore struct {
	data map[string]*document.Document
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*document.Document),
	}
}

func (m *MockStore) Save(ctx context.Context, doc *document.Document) error {
	clone, err := doc.Clone()
	if err != nil {
		return err
	}
	m.data[doc.ServiceID] = clone
	return nil
}

func (m *MockStore) Load(ctx context.Context, serviceID string) (*document.Document, error) {
	doc, ok := m.data[serviceID]
	if !ok {
		return nil, domain.ErrServiceNotFound
	}
	return doc.Clone()
}

func (m *MockStore) Delete(ctx context.Context, serviceID string) error {
	delete(m.data, serviceID)
	return nil
}

func (m *MockStore) List(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(m.data))
	for id := range m.data {
		ids = append(ids, id)
	}
	return ids, nil
}

// MockLocker serializes callers with one channel per key.
type MockLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func (l *MockLocker) Lock(ctx context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	if l.slots == nil {
		l.slots = make(map[string]chan struct{})
	}
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func(context.Context) error {
			<-slot
			return nil
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestMockStore_Contract(t *testing.T) {
	ports.RunDocumentStoreContract(t, NewMockStore())
}

func TestMockLocker_Contract(t *testing.T) {
	ports.RunLockerContract(t, &MockLocker{})
}
