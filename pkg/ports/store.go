package ports

import (
	"context"

	"github.com/aretw0/formflow/pkg/document"
)

// DocumentStore defines the interface for persisting service documents.
// Stores hold snapshots: a document returned by Load is never shared with the store.
type DocumentStore interface {
	// Save persists the document under its service id, replacing any previous version.
	Save(ctx context.Context, doc *document.Document) error

	// Load retrieves the document for a given service id.
	// Returns domain.ErrServiceNotFound if the service does not exist.
	Load(ctx context.Context, serviceID string) (*document.Document, error)

	// Delete removes the document for a given service id.
	Delete(ctx context.Context, serviceID string) error

	// List returns the ids of the stored services.
	List(ctx context.Context) ([]string, error)
}
