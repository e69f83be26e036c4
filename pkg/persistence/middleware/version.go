package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/ports"
)

type versionMiddleware struct {
	ports.DocumentStore
	newID func() string
}

// NewVersionMiddleware stamps every saved document with a fresh version id.
// A nil newID uses random uuids. The caller's document is left untouched.
func NewVersionMiddleware(newID func() string) Middleware {
	if newID == nil {
		newID = uuid.NewString
	}
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &versionMiddleware{DocumentStore: next, newID: newID}
	}
}

func (m *versionMiddleware) Save(ctx context.Context, doc *document.Document) error {
	stamped, err := doc.Clone()
	if err != nil {
		return err
	}
	stamped.VersionID = m.newID()
	return m.DocumentStore.Save(ctx, stamped)
}
