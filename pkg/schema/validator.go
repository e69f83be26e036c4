package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/aretw0/formflow/pkg/domain"
)

// Stable schema names accepted by Validate.
const (
	ServiceBase       = "service.base"
	PageStart         = "page.start"
	PageQuestion      = "page.question"
	PageCheckAnswers  = "page.checkanswers"
	PageConfirmation  = "page.confirmation"
	PageStandalone    = "page.standalone"
	Branch            = "branch"
	FlowPage          = "flow.page"
	definitionsPrefix = "definition."
)

//go:embed schemas.yaml
var schemasYAML []byte

// aliases lets callers pass a page's own `_type` as the schema name.
var aliases = map[string]string{
	domain.TypeSingleQuestion:    PageQuestion,
	domain.TypeMultipleQuestions: PageQuestion,
	domain.TypeContent:           PageQuestion,
}

// Validator checks documents against the named structural schemas.
// It is safe for concurrent use: schemas are read-only once loaded.
type Validator struct {
	schemas map[string]*openapi3.Schema
}

// New loads the embedded schema set.
func New() (*Validator, error) {
	return Load(schemasYAML)
}

// Load builds a Validator from an OpenAPI document whose components hold the schemas.
func Load(data []byte) (*Validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load schemas: %w", err)
	}
	if doc.Components == nil {
		return nil, fmt.Errorf("schema document has no components")
	}

	schemas := make(map[string]*openapi3.Schema, len(doc.Components.Schemas))
	for name, ref := range doc.Components.Schemas {
		if ref == nil || ref.Value == nil {
			return nil, fmt.Errorf("schema %s is not resolved", name)
		}
		schemas[name] = ref.Value
	}
	return &Validator{schemas: schemas}, nil
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
	defaultErr       error
)

// Default returns the shared validator built from the embedded schemas.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = New()
	})
	return defaultValidator, defaultErr
}

// Names returns the public schema names, sorted.
func (v *Validator) Names() []string {
	names := make([]string, 0, len(v.schemas))
	for name := range v.schemas {
		if strings.HasPrefix(name, definitionsPrefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps a schema name or page `_type` onto a known schema name.
func (v *Validator) Resolve(name string) (string, bool) {
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	if strings.HasPrefix(name, definitionsPrefix) {
		return "", false
	}
	_, ok := v.schemas[name]
	return name, ok
}

// Validate checks document against the named schema and returns every violation found.
func (v *Validator) Validate(document any, name string) domain.Result {
	return v.validateAt(document, name, "")
}

func (v *Validator) validateAt(document any, name, base string) domain.Result {
	var result domain.Result

	resolved, ok := v.Resolve(name)
	if !ok {
		result.Addf(domain.CodeSchemaUnknown, pointer(base, nil), "", "unknown schema %q", name)
		return result
	}

	value, err := normalize(document)
	if err != nil {
		result.Addf(domain.CodeSchemaInvalid, pointer(base, nil), "", "document is not JSON compatible: %v", err)
		return result
	}

	err = v.schemas[resolved].VisitJSON(value, openapi3.MultiErrors())
	for _, violation := range translate(err, base) {
		result.Add(violation)
	}
	return result
}

// ValidateService checks the envelope, then every page against the schema named by
// its own `_type`. Branches are covered by the envelope through the flow map.
func (v *Validator) ValidateService(raw map[string]any) domain.Result {
	result := v.Validate(raw, ServiceBase)

	for _, collection := range []string{"pages", "standalone_pages"} {
		items, _ := raw[collection].([]any)
		for i, item := range items {
			base := fmt.Sprintf("/%s/%d", collection, i)
			page, ok := item.(map[string]any)
			if !ok {
				continue
			}
			pageType, _ := page[domain.KeyType].(string)
			uuid, _ := page[domain.KeyUUID].(string)

			if _, known := v.Resolve(pageType); !known {
				result.Addf(domain.CodeSchemaUnknown, base+"/"+domain.KeyType, uuid, "unknown page type %q", pageType)
				continue
			}
			for _, violation := range v.validateAt(page, pageType, base).Violations {
				violation.NodeID = uuid
				result.Add(violation)
			}
		}
	}
	return result
}

// normalize converts arbitrary Go values into the JSON types the schemas operate on.
func normalize(document any) (any, error) {
	data, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
