package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/dsl"
	"github.com/aretw0/formflow/pkg/flow"
)

// licence builds a small valid service:
//
//	start -> age -(age < 18)-> too-young -> check -> done
//	            \-----------------------/
func licence() *dsl.Builder {
	b := dsl.New("Licence")
	b.Start("start").Go("age")
	b.Question("age").
		Component("age-answer", domain.ComponentNumber).
		Branch("too-young", dsl.LessThan("age-answer", 18)).
		Go("check")
	b.Question("too-young").Go("check")
	b.CheckAnswers("check").Go("done")
	b.Confirmation("done")
	b.Standalone("cookies")
	return b
}

func build(t *testing.T, doc *document.Document) *flow.Graph {
	t.Helper()
	g, err := flow.Build(doc)
	require.NoError(t, err)
	return g
}

func codes(r domain.Result) []domain.Code {
	out := make([]domain.Code, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Code)
	}
	return out
}

func TestValidate_ValidService(t *testing.T) {
	r := build(t, licence().Document()).Validate()
	assert.True(t, r.Valid(), "unexpected violations: %v", r.Violations)
}

func TestValidate_DanglingDestination(t *testing.T) {
	b := licence()
	b.Question("age").Branch("ghost", dsl.Equals("age-answer", 99))

	r := build(t, b.Document()).Validate()

	require.Len(t, r.Violations, 1)
	v := r.Violations[0]
	assert.Equal(t, domain.CodeDanglingDestination, v.Code)
	assert.Equal(t, "age", v.NodeID)
	assert.Equal(t, "/flow/age/next/conditions/1/next", v.Path)
	assert.Contains(t, v.Message, "ghost")
}

func TestValidate_DanglingFallback(t *testing.T) {
	b := licence()
	b.Question("too-young").Go("nowhere")

	r := build(t, b.Document()).Validate()

	require.Len(t, r.Violations, 1)
	assert.Equal(t, domain.CodeDanglingFallback, r.Violations[0].Code)
	assert.Equal(t, "/flow/too-young/next/default", r.Violations[0].Path)
}

func TestValidate_MissingFallback(t *testing.T) {
	b := dsl.New("svc")
	b.Start("start").Component("q", domain.ComponentRadios, "yes", "no").
		Branch("end", dsl.Equals("q", "yes"))
	b.Confirmation("end")

	r := build(t, b.Document()).Validate()

	assert.Equal(t, []domain.Code{domain.CodeMissingFallback}, codes(r))
}

func TestValidate_MissingEdge(t *testing.T) {
	b := licence()
	b.Question("too-young").NoEdge()

	r := build(t, b.Document()).Validate()

	assert.Equal(t, []domain.Code{domain.CodeMissingEdge}, codes(r))
}

func TestValidate_EmptyBranch(t *testing.T) {
	b := licence()
	b.Question("too-young").Branch("done")

	r := build(t, b.Document()).Validate()

	require.Len(t, r.Violations, 1)
	assert.Equal(t, domain.CodeEmptyBranch, r.Violations[0].Code)
	assert.Equal(t, "/flow/too-young/next/conditions/0/expressions", r.Violations[0].Path)
}

func TestValidate_TerminalHasEdge(t *testing.T) {
	b := licence()
	b.Confirmation("done").Go("start")

	r := build(t, b.Document()).Validate()

	assert.Equal(t, []domain.Code{domain.CodeTerminalHasEdge}, codes(r))
}

func TestValidate_Unreachable(t *testing.T) {
	b := licence()
	b.Question("island").Go("check")

	r := build(t, b.Document()).Validate()

	require.Len(t, r.Violations, 1)
	assert.Equal(t, domain.CodeUnreachable, r.Violations[0].Code)
	assert.Equal(t, "island", r.Violations[0].NodeID)
}

func TestValidate_StartPages(t *testing.T) {
	t.Run("Missing", func(t *testing.T) {
		doc := licence().Document()
		doc.Pages = doc.Pages[1:]

		r := build(t, doc).Validate()

		assert.Contains(t, codes(r), domain.CodeMissingStart)
		assert.Contains(t, codes(r), domain.CodeEdgeForUnknownPage)
		assert.NotContains(t, codes(r), domain.CodeUnreachable)
	})

	t.Run("Multiple", func(t *testing.T) {
		b := licence()
		b.Start("second").URL("second").Go("check")

		r := build(t, b.Document()).Validate()

		assert.Contains(t, codes(r), domain.CodeMultipleStart)
	})
}

func TestValidate_Duplicates(t *testing.T) {
	doc := licence().Document()
	doc.Pages = append(doc.Pages, doc.Pages[2])

	r := build(t, doc).Validate()

	assert.ElementsMatch(t, []domain.Code{domain.CodeDuplicateID, domain.CodeDuplicateURL}, codes(r))
	for _, v := range r.Violations {
		assert.Equal(t, "too-young", v.NodeID)
	}
}

func TestValidate_DuplicateComponent(t *testing.T) {
	b := licence()
	b.Question("too-young").Component("age-answer", domain.ComponentText)

	r := build(t, b.Document()).Validate()

	require.Len(t, r.Violations, 1)
	v := r.Violations[0]
	assert.Equal(t, domain.CodeDuplicateComponent, v.Code)
	assert.Equal(t, "/pages/2/components/0/_uuid", v.Path)
	assert.Equal(t, "too-young", v.NodeID)
	assert.Contains(t, v.Message, "'age'")
}

func TestValidate_DuplicateURLAcrossStandalone(t *testing.T) {
	b := licence()
	b.Standalone("privacy").URL("age")

	r := build(t, b.Document()).Validate()

	require.Len(t, r.Violations, 1)
	assert.Equal(t, domain.CodeDuplicateURL, r.Violations[0].Code)
	assert.Equal(t, "/standalone_pages/1/url", r.Violations[0].Path)
}

func TestValidate_Conditions(t *testing.T) {
	t.Run("Unknown Component", func(t *testing.T) {
		b := licence()
		b.Question("age").Branch("done", dsl.Answered("missing"))

		r := build(t, b.Document()).Validate()

		assert.Equal(t, []domain.Code{domain.CodeUnknownComponent}, codes(r))
	})

	t.Run("Component Answered Later", func(t *testing.T) {
		b := licence()
		b.Question("too-young").Component("reason", domain.ComponentText)
		b.Question("age").Branch("done", dsl.Equals("reason", "x"))

		r := build(t, b.Document()).Validate()

		require.Len(t, r.Violations, 1)
		assert.Equal(t, domain.CodeComponentOutOfOrder, r.Violations[0].Code)
		assert.Equal(t, "/flow/age/next/conditions/1/expressions/0/component", r.Violations[0].Path)
	})

	t.Run("Component Answered Earlier", func(t *testing.T) {
		b := licence()
		b.Question("too-young").Branch("done", dsl.GreaterThan("age-answer", 10))

		r := build(t, b.Document()).Validate()

		assert.True(t, r.Valid(), "unexpected violations: %v", r.Violations)
	})

	t.Run("Missing Value", func(t *testing.T) {
		b := licence()
		b.Question("age").Branch("done",
			domain.Condition{ComponentID: "age-answer", Operator: domain.OpNotEquals},
			domain.Condition{ComponentID: "age-answer", Operator: domain.OpEquals, Value: []any{1, 2}},
			dsl.Answered("age-answer"),
		)

		r := build(t, b.Document()).Validate()

		assert.Equal(t, []domain.Code{domain.CodeMissingValue, domain.CodeMissingValue}, codes(r))
		assert.Equal(t, "/flow/age/next/conditions/1/expressions/0/value", r.Violations[0].Path)
		assert.Equal(t, "/flow/age/next/conditions/1/expressions/1/value", r.Violations[1].Path)
	})

	t.Run("Unknown Operator", func(t *testing.T) {
		b := licence()
		b.Question("age").Branch("done", domain.Condition{ComponentID: "age-answer", Operator: "between"})

		r := build(t, b.Document()).Validate()

		assert.Equal(t, []domain.Code{domain.CodeUnknownOperator}, codes(r))
	})
}

func TestValidate_PageTypes(t *testing.T) {
	b := licence()
	b.Add("odd", "page.unknown").Go("check")
	b.Question("age").Branch("odd", dsl.Answered("age-answer"))

	r := build(t, b.Document()).Validate()

	assert.Contains(t, codes(r), domain.CodeUnknownPageType)
}

func TestValidate_CollectsAll(t *testing.T) {
	b := licence()
	b.Question("too-young").Go("nowhere")
	b.Question("island").Go("check")
	b.Confirmation("done").Go("start")

	r := build(t, b.Document()).Validate()

	assert.ElementsMatch(t, []domain.Code{
		domain.CodeDanglingFallback,
		domain.CodeUnreachable,
		domain.CodeTerminalHasEdge,
	}, codes(r))
	assert.Equal(t, 3, r.Count(domain.CategoryGraph))
}

func TestValidate_IsPure(t *testing.T) {
	b := licence()
	b.Question("island").Go("check")
	g := build(t, b.Document())

	assert.Equal(t, g.Validate(), g.Validate())
}
