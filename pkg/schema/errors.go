package schema

import (
	"errors"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/formflow/pkg/domain"
)

// translate flattens the errors reported by the schema visitor into violations.
func translate(err error, base string) []domain.Violation {
	if err == nil {
		return nil
	}

	switch e := err.(type) {
	case openapi3.MultiError:
		var out []domain.Violation
		for _, inner := range e {
			out = append(out, translate(inner, base)...)
		}
		return out
	case *openapi3.SchemaError:
		return []domain.Violation{fromSchemaError(e, base)}
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		return []domain.Violation{fromSchemaError(schemaErr, base)}
	}

	return []domain.Violation{{
		Code:    domain.CodeSchemaInvalid,
		Path:    pointer(base, nil),
		Message: err.Error(),
	}}
}

func fromSchemaError(e *openapi3.SchemaError, base string) domain.Violation {
	return domain.Violation{
		Code:    codeFor(e.SchemaField),
		Path:    pointer(base, e.JSONPointer()),
		Message: e.Reason,
	}
}

func codeFor(field string) domain.Code {
	switch field {
	case "required":
		return domain.CodeSchemaRequired
	case "type", "nullable":
		return domain.CodeSchemaType
	case "enum":
		return domain.CodeSchemaEnum
	default:
		return domain.CodeSchemaInvalid
	}
}

// pointer renders a JSON pointer below base.
func pointer(base string, parts []string) string {
	if len(parts) == 0 {
		if base == "" {
			return "/"
		}
		return base
	}
	escaped := make([]string, len(parts))
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~", "~0")
		escaped[i] = strings.ReplaceAll(p, "/", "~1")
	}
	return base + "/" + strings.Join(escaped, "/")
}
