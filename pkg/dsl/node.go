package dsl

import (
	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
)

// PageBuilder provides a fluent API for configuring a page and its outgoing edge.
type PageBuilder struct {
	page       document.Page
	edge       *domain.FlowEdge
	standalone bool
	builder    *Builder
}

// URL sets the page url.
func (p *PageBuilder) URL(url string) *PageBuilder {
	p.page.URL = url
	return p
}

// Heading sets the page heading.
func (p *PageBuilder) Heading(heading string) *PageBuilder {
	p.page.Heading = heading
	return p
}

// Component adds a form field to the page. The id doubles as the component uuid.
func (p *PageBuilder) Component(id, componentType string, items ...string) *PageBuilder {
	c := domain.Component{
		ID:    id,
		Name:  p.page.ID + "_" + componentType + "_" + id,
		Type:  componentType,
		Label: id,
	}
	for _, label := range items {
		c.Items = append(c.Items, domain.Item{Label: label, Value: label})
	}
	p.page.Components = append(p.page.Components, c)
	return p
}

func (p *PageBuilder) ensureEdge() *domain.FlowEdge {
	if p.edge == nil {
		p.edge = &domain.FlowEdge{}
	}
	return p.edge
}

// Go sets the fallback destination.
func (p *PageBuilder) Go(target string) *PageBuilder {
	p.ensureEdge().Fallback = target
	return p
}

// Branch appends a conditional destination. Branches are evaluated in the order added.
func (p *PageBuilder) Branch(target string, conditions ...domain.Condition) *PageBuilder {
	e := p.ensureEdge()
	e.Branches = append(e.Branches, domain.Branch{
		Conditions:  append([]domain.Condition(nil), conditions...),
		Destination: target,
	})
	return p
}

// Terminal marks the page as the end of the flow.
func (p *PageBuilder) Terminal() *PageBuilder {
	p.edge = &domain.FlowEdge{Fallback: domain.EndOfFlow}
	return p
}

// NoEdge drops any outgoing edge of the page.
func (p *PageBuilder) NoEdge() *PageBuilder {
	p.edge = nil
	return p
}

// Done returns the parent builder to continue chaining.
func (p *PageBuilder) Done() *Builder {
	return p.builder
}

// Equals builds an equals condition.
func Equals(component string, value any) domain.Condition {
	return domain.Condition{ComponentID: component, Operator: domain.OpEquals, Value: value}
}

// NotEquals builds a not-equals condition.
func NotEquals(component string, value any) domain.Condition {
	return domain.Condition{ComponentID: component, Operator: domain.OpNotEquals, Value: value}
}

// Contains builds a contains condition.
func Contains(component string, value any) domain.Condition {
	return domain.Condition{ComponentID: component, Operator: domain.OpContains, Value: value}
}

// GreaterThan builds a greater-than condition.
func GreaterThan(component string, value any) domain.Condition {
	return domain.Condition{ComponentID: component, Operator: domain.OpGreaterThan, Value: value}
}

// LessThan builds a less-than condition.
func LessThan(component string, value any) domain.Condition {
	return domain.Condition{ComponentID: component, Operator: domain.OpLessThan, Value: value}
}

// Answered builds an answered condition.
func Answered(component string) domain.Condition {
	return domain.Condition{ComponentID: component, Operator: domain.OpAnswered}
}

// NotAnswered builds a not-answered condition.
func NotAnswered(component string) domain.Condition {
	return domain.Condition{ComponentID: component, Operator: domain.OpNotAnswered}
}
