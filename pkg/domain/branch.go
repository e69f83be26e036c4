package domain

// AnswerTypes resolves the answer type of a component. Unknown components are plain text.
type AnswerTypes func(componentID string) AnswerType

func (f AnswerTypes) of(componentID string) AnswerType {
	if f == nil {
		return AnswerText
	}
	return f(componentID)
}

// Branch routes to Destination when every condition holds.
type Branch struct {
	Conditions  []Condition `json:"expressions" mapstructure:"expressions"`
	Destination string      `json:"next" mapstructure:"next"`
}

// Matches is the logical AND of the branch conditions.
// A branch without conditions never matches.
func (b Branch) Matches(answers AnswerSet, types AnswerTypes) bool {
	if len(b.Conditions) == 0 {
		return false
	}
	for _, c := range b.Conditions {
		if !c.Evaluate(answers, types.of(c.ComponentID)) {
			return false
		}
	}
	return true
}

// FlowEdge is the outgoing transition set of one page.
// Branches are tried in declared order; Fallback applies when none match.
// An empty Fallback marks the end of the flow.
type FlowEdge struct {
	Branches []Branch `json:"conditions,omitempty" mapstructure:"conditions"`
	Fallback string   `json:"default" mapstructure:"default"`
}

// Resolve returns the destination and the index of the matching branch (-1 for the fallback).
func (e FlowEdge) Resolve(answers AnswerSet, types AnswerTypes) (string, int) {
	for i, b := range e.Branches {
		if b.Matches(answers, types) {
			return b.Destination, i
		}
	}
	return e.Fallback, -1
}

// ResolveNext returns the destination of the first matching branch, or the fallback.
func (e FlowEdge) ResolveNext(answers AnswerSet, types AnswerTypes) string {
	next, _ := e.Resolve(answers, types)
	return next
}

// Destinations lists every page id the edge can lead to, fallback last.
func (e FlowEdge) Destinations() []string {
	out := make([]string, 0, len(e.Branches)+1)
	for _, b := range e.Branches {
		out = append(out, b.Destination)
	}
	if e.Fallback != "" {
		out = append(out, e.Fallback)
	}
	return out
}
