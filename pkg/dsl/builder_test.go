package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/formflow/pkg/domain"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New("Apply for a Licence")

	b.Start("start").Go("age")
	b.Question("age").
		Heading("How old are you?").
		Component("age-answer", domain.ComponentNumber).
		Branch("too-young", LessThan("age-answer", 18)).
		Go("check")
	b.Question("too-young").Go("check")
	b.CheckAnswers("check").Go("done")
	b.Confirmation("done")
	b.Standalone("cookies")

	doc := b.Document()

	assert.Equal(t, "service-apply-for-a-licence", doc.ServiceID)
	assert.Equal(t, "Apply for a Licence", doc.ServiceName)
	require.Len(t, doc.Pages, 5)
	require.Len(t, doc.StandalonePages, 1)

	assert.Equal(t, "/", doc.Pages[0].URL)
	assert.Equal(t, domain.TypeStart, doc.Pages[0].Type)
	assert.Equal(t, "How old are you?", doc.Pages[1].Heading)
	assert.Equal(t, "check-answers", doc.Pages[3].URL)
	assert.Equal(t, "form-sent", doc.Pages[4].URL)
	assert.Equal(t, "cookies", doc.StandalonePages[0].Body)

	age := doc.Flow["age"]
	assert.Equal(t, domain.FlowTypePage, age.Type)
	assert.Equal(t, "check", age.Next.Fallback)
	require.Len(t, age.Next.Branches, 1)
	assert.Equal(t, "too-young", age.Next.Branches[0].Destination)
	assert.Equal(t, domain.OpLessThan, age.Next.Branches[0].Conditions[0].Operator)

	done, ok := doc.Flow["done"]
	require.True(t, ok, "confirmation should carry an end-of-flow edge")
	assert.Equal(t, domain.EndOfFlow, done.Next.Fallback)

	_, ok = doc.Flow["cookies"]
	assert.False(t, ok, "standalone pages are not part of the flow")
}

func TestBuilder_AddReturnsExisting(t *testing.T) {
	b := New("svc")
	first := b.Question("q").Heading("first")
	second := b.Question("q")

	assert.Same(t, first, second)
	assert.Len(t, b.Document().Pages, 1)
}

func TestBuilder_DocumentIsDetached(t *testing.T) {
	b := New("svc")
	b.Start("start").Component("name", domain.ComponentText).Go("end")
	b.Confirmation("end")

	doc := b.Document()
	doc.Pages[0].Components[0].Label = "changed"

	again := b.Document()
	assert.Equal(t, "name", again.Pages[0].Components[0].Label)
}

func TestBuilder_NoEdge(t *testing.T) {
	b := New("svc")
	b.Start("start").Go("end").NoEdge().Done().Confirmation("end")

	doc := b.Document()
	_, ok := doc.Flow["start"]
	assert.False(t, ok)
	assert.Len(t, doc.Flow, 1)
}

func TestConditionHelpers(t *testing.T) {
	cases := []struct {
		cond domain.Condition
		op   domain.Operator
	}{
		{Equals("c", "x"), domain.OpEquals},
		{NotEquals("c", "x"), domain.OpNotEquals},
		{Contains("c", "x"), domain.OpContains},
		{GreaterThan("c", 1), domain.OpGreaterThan},
		{LessThan("c", 1), domain.OpLessThan},
		{Answered("c"), domain.OpAnswered},
		{NotAnswered("c"), domain.OpNotAnswered},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.op, tc.cond.Operator)
		assert.Equal(t, "c", tc.cond.ComponentID)
	}
	assert.Nil(t, Answered("c").Value)
}
