package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/ports"
)

// Validator checks a whole service document. *formflow.Engine satisfies it.
type Validator interface {
	Validate(ctx context.Context, raw map[string]any) domain.Result
}

type validationMiddleware struct {
	ports.DocumentStore
	validator Validator
}

// NewValidationMiddleware refuses to save documents with schema or graph violations.
// The refusal is a *domain.ValidationError carrying every violation.
func NewValidationMiddleware(v Validator) Middleware {
	return func(next ports.DocumentStore) ports.DocumentStore {
		return &validationMiddleware{DocumentStore: next, validator: v}
	}
}

func (m *validationMiddleware) Save(ctx context.Context, doc *document.Document) error {
	raw, err := doc.Map()
	if err != nil {
		return fmt.Errorf("failed to encode service: %w", err)
	}
	if err := m.validator.Validate(ctx, raw).Err(); err != nil {
		return err
	}
	return m.DocumentStore.Save(ctx, doc)
}
