package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"

	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
)

// Store adapts a Loam repository to the ports.DocumentStore interface.
// Each service is one file named after its service id.
type Store struct {
	Repo *loam.TypedRepository[ServiceMetadata]
}

// New creates a store over an existing Loam repository.
func New(repo core.Repository) *Store {
	return &Store{
		Repo: loam.NewTypedRepository[ServiceMetadata](repo),
	}
}

// Open initializes a Loam repository rooted at path and returns a store over it.
func Open(path string) (*Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithVersioning(false),
		loam.WithForceTemp(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo), nil
}

func checkID(serviceID string) error {
	if serviceID == "" || strings.ContainsAny(serviceID, `/\`) || strings.Contains(serviceID, "..") {
		return fmt.Errorf("invalid service id for file storage: %q", serviceID)
	}
	return nil
}

// Save writes the document, replacing any previous version.
func (s *Store) Save(ctx context.Context, doc *document.Document) error {
	if err := checkID(doc.ServiceID); err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	err = s.Repo.Save(ctx, &loam.DocumentModel[ServiceMetadata]{
		ID:      doc.ServiceID,
		Content: string(body),
		Data:    metadataOf(doc),
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", doc.ServiceID, err)
	}
	return nil
}

// Load reads the document for a service id.
func (s *Store) Load(ctx context.Context, serviceID string) (*document.Document, error) {
	if err := checkID(serviceID); err != nil {
		return nil, err
	}
	stored, err := s.Repo.Get(ctx, serviceID)
	if err != nil {
		ids, listErr := s.ids(ctx, true)
		if listErr == nil && !contains(ids, serviceID) {
			return nil, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, serviceID)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", serviceID, err)
	}
	if stored.Data.Deleted {
		return nil, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, serviceID)
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(strings.TrimSpace(stored.Content)), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode stored service %s: %w", serviceID, err)
	}
	return &doc, nil
}

// Delete leaves a tombstone in place of the service file.
func (s *Store) Delete(ctx context.Context, serviceID string) error {
	if err := checkID(serviceID); err != nil {
		return err
	}
	err := s.Repo.Save(ctx, &loam.DocumentModel[ServiceMetadata]{
		ID:      serviceID,
		Content: "{}",
		Data:    ServiceMetadata{ServiceID: serviceID, Deleted: true},
	})
	if err != nil {
		return fmt.Errorf("loam delete failed for %s: %w", serviceID, err)
	}
	return nil
}

// List returns the ids of the live services, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	return s.ids(ctx, false)
}

func (s *Store) ids(ctx context.Context, withDeleted bool) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Data.Deleted && !withDeleted {
			continue
		}
		// Use the ID from metadata if available, otherwise the file name
		id := doc.Data.ServiceID
		if id == "" {
			id = trimExtension(doc.ID)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

func contains(ids []string, id string) bool {
	i := sort.SearchStrings(ids, id)
	return i < len(ids) && ids[i] == id
}
