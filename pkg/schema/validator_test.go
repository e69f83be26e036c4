package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/schema"
)

func newValidator(t *testing.T) *schema.Validator {
	t.Helper()
	v, err := schema.Default()
	require.NoError(t, err, "embedded schemas must load")
	return v
}

func startPage() map[string]any {
	return map[string]any{
		"_uuid":   "start-uuid",
		"_id":     "page.start",
		"_type":   "page.start",
		"url":     "/",
		"heading": "Service name goes here",
	}
}

func codes(r domain.Result) []domain.Code {
	out := make([]domain.Code, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Code)
	}
	return out
}

func findPath(r domain.Result, path string) (domain.Violation, bool) {
	for _, v := range r.Violations {
		if v.Path == path {
			return v, true
		}
	}
	return domain.Violation{}, false
}

func TestValidator_Names(t *testing.T) {
	v := newValidator(t)
	names := v.Names()

	for _, name := range []string{
		schema.ServiceBase, schema.PageStart, schema.PageQuestion, schema.PageCheckAnswers,
		schema.PageConfirmation, schema.PageStandalone, schema.Branch,
	} {
		assert.Contains(t, names, name)
	}
	for _, name := range names {
		assert.NotContains(t, name, "definition.")
	}
}

func TestValidator_Page(t *testing.T) {
	v := newValidator(t)

	t.Run("Valid Start Page", func(t *testing.T) {
		result := v.Validate(startPage(), schema.PageStart)
		assert.True(t, result.Valid(), result.Violations)
	})

	t.Run("Missing Required Field", func(t *testing.T) {
		page := startPage()
		delete(page, "heading")

		result := v.Validate(page, schema.PageStart)
		require.False(t, result.Valid())
		violation, ok := findPath(result, "/heading")
		require.True(t, ok, result.Violations)
		assert.Equal(t, domain.CodeSchemaRequired, violation.Code)
		assert.Equal(t, domain.CategorySchema, violation.Code.Category())
	})

	t.Run("Wrong Type For Kind", func(t *testing.T) {
		page := startPage()
		page["_type"] = "page.confirmation"

		result := v.Validate(page, schema.PageStart)
		violation, ok := findPath(result, "/_type")
		require.True(t, ok, result.Violations)
		assert.Equal(t, domain.CodeSchemaEnum, violation.Code)
	})

	t.Run("Wrong Field Type", func(t *testing.T) {
		page := startPage()
		page["url"] = 42

		result := v.Validate(page, schema.PageStart)
		violation, ok := findPath(result, "/url")
		require.True(t, ok, result.Violations)
		assert.Equal(t, domain.CodeSchemaType, violation.Code)
	})

	t.Run("Reports Every Violation", func(t *testing.T) {
		result := v.Validate(map[string]any{"_type": "page.start"}, schema.PageStart)
		assert.Len(t, result.Violations, 4, "missing _uuid, _id, url and heading")
	})

	t.Run("Question Alias", func(t *testing.T) {
		page := map[string]any{
			"_uuid": "q-uuid",
			"_id":   "page.age",
			"_type": "page.singlequestion",
			"url":   "age",
			"components": []any{
				map[string]any{"_uuid": "c-uuid", "_id": "age_number_1", "_type": "number", "validation": map[string]any{"required": true}},
			},
		}
		assert.True(t, v.Validate(page, "page.singlequestion").Valid())
		assert.True(t, v.Validate(page, schema.PageQuestion).Valid())
	})

	t.Run("Unsupported Validation", func(t *testing.T) {
		page := map[string]any{
			"_uuid": "q-uuid",
			"_id":   "page.age",
			"_type": "page.singlequestion",
			"url":   "age",
			"components": []any{
				map[string]any{"_uuid": "c-uuid", "_id": "age_number_1", "_type": "number", "validation": map[string]any{"regex": ".*"}},
			},
		}
		result := v.Validate(page, schema.PageQuestion)
		assert.False(t, result.Valid())
	})
}

func TestValidator_Branch(t *testing.T) {
	v := newValidator(t)

	valid := map[string]any{
		"next": "page-b",
		"expressions": []any{
			map[string]any{"component": "x", "operator": "equals", "value": "yes"},
			map[string]any{"component": "y", "operator": "answered"},
		},
	}
	assert.True(t, v.Validate(valid, schema.Branch).Valid())

	invalid := map[string]any{
		"next": "page-b",
		"expressions": []any{
			map[string]any{"component": "x", "operator": "matches", "value": ".*"},
		},
	}
	result := v.Validate(invalid, schema.Branch)
	violation, ok := findPath(result, "/expressions/0/operator")
	require.True(t, ok, result.Violations)
	assert.Equal(t, domain.CodeSchemaEnum, violation.Code)

	t.Run("Empty Expressions Are Structurally Valid", func(t *testing.T) {
		empty := map[string]any{"next": "page-b", "expressions": []any{}}
		assert.True(t, v.Validate(empty, schema.Branch).Valid(), "empty branches are a graph violation")
	})
}

func TestValidator_ServiceBase(t *testing.T) {
	v := newValidator(t)

	t.Run("Rejects Foreign Document", func(t *testing.T) {
		result := v.Validate(map[string]any{"foo": "bar"}, schema.ServiceBase)
		assert.False(t, result.Valid())
		assert.Contains(t, codes(result), domain.CodeSchemaRequired)
		_, ok := findPath(result, "/service_id")
		assert.True(t, ok)
	})

	t.Run("Unknown Schema", func(t *testing.T) {
		result := v.Validate(startPage(), "page.nope")
		require.Len(t, result.Violations, 1)
		assert.Equal(t, domain.CodeSchemaUnknown, result.Violations[0].Code)
	})

	t.Run("Pages Are Checked Against Their Own Type", func(t *testing.T) {
		page := startPage()
		delete(page, "heading")
		raw := map[string]any{
			"service_id":       "svc",
			"service_name":     "Test",
			"created_by":       "owner",
			"pages":            []any{page},
			"standalone_pages": []any{map[string]any{"_uuid": "s", "_id": "page.x", "_type": "page.mystery", "url": "x"}},
			"flow": map[string]any{
				"start-uuid": map[string]any{"_type": "flow.page", "next": map[string]any{"default": ""}},
			},
		}

		result := v.ValidateService(raw)
		violation, ok := findPath(result, "/pages/0/heading")
		require.True(t, ok, result.Violations)
		assert.Equal(t, "start-uuid", violation.NodeID)

		violation, ok = findPath(result, "/standalone_pages/0/_type")
		require.True(t, ok, result.Violations)
		assert.Equal(t, domain.CodeSchemaUnknown, violation.Code)
	})

	t.Run("Flow Branches Are Checked", func(t *testing.T) {
		raw := map[string]any{
			"service_id":       "svc",
			"service_name":     "Test",
			"created_by":       "owner",
			"pages":            []any{startPage()},
			"standalone_pages": []any{},
			"flow": map[string]any{
				"start-uuid": map[string]any{
					"_type": "flow.page",
					"next": map[string]any{
						"default":    "",
						"conditions": []any{map[string]any{"next": "b"}},
					},
				},
			},
		}

		result := v.ValidateService(raw)
		violation, ok := findPath(result, "/flow/start-uuid/next/conditions/0/expressions")
		require.True(t, ok, result.Violations)
		assert.Equal(t, domain.CodeSchemaRequired, violation.Code)
	})
}
