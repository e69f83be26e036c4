package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*document.Document
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*document.Document),
	}
}

// Save persists a copy of the document in memory.
func (s *Store) Save(ctx context.Context, doc *document.Document) error {
	// Deep copy to ensure isolation, similar to serialization
	copied, err := doc.Clone()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[doc.ServiceID] = copied
	return nil
}

// Load retrieves a copy of the document from memory.
func (s *Store) Load(ctx context.Context, serviceID string) (*document.Document, error) {
	s.mu.RLock()
	doc, ok := s.data[serviceID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrServiceNotFound
	}
	return doc.Clone()
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, serviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, serviceID)
	return nil
}

// List returns the stored service ids, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
