package domain

import (
	"fmt"
	"strings"
)

// Code identifies a class of validation failure.
type Code string

// Schema violations: the document does not match its declared structure.
const (
	CodeSchemaRequired Code = "schema.required"
	CodeSchemaType     Code = "schema.type"
	CodeSchemaEnum     Code = "schema.enum"
	CodeSchemaInvalid  Code = "schema.invalid"
	CodeSchemaUnknown  Code = "schema.unknown"
)

// Graph integrity violations: the document is well-shaped but the flow is broken.
const (
	CodeDuplicateID         Code = "graph.duplicate_id"
	CodeDuplicateURL        Code = "graph.duplicate_url"
	CodeMissingStart        Code = "graph.missing_start"
	CodeMultipleStart       Code = "graph.multiple_start"
	CodeDanglingDestination Code = "graph.dangling_destination"
	CodeDanglingFallback    Code = "graph.dangling_fallback"
	CodeMissingFallback     Code = "graph.missing_fallback"
	CodeMissingEdge         Code = "graph.missing_edge"
	CodeTerminalHasEdge     Code = "graph.terminal_has_edge"
	CodeEmptyBranch         Code = "graph.empty_branch"
	CodeUnreachable         Code = "graph.unreachable"
	CodeUnknownComponent    Code = "graph.unknown_component"
	CodeComponentOutOfOrder Code = "graph.component_out_of_order"
	CodeDuplicateComponent  Code = "graph.duplicate_component"
	CodeMissingValue        Code = "graph.missing_value"
	CodeUnknownOperator     Code = "graph.unknown_operator"
	CodeEdgeForUnknownPage  Code = "graph.edge_for_unknown_page"
	CodeUnknownPageType     Code = "graph.unknown_page_type"
	CodeStandaloneInFlow    Code = "graph.standalone_in_flow"
)

// Category groups violation codes.
type Category string

const (
	CategorySchema Category = "schema"
	CategoryGraph  Category = "graph"
)

// Category returns the group the code belongs to.
func (c Code) Category() Category {
	if strings.HasPrefix(string(c), "schema.") {
		return CategorySchema
	}
	return CategoryGraph
}

// Violation is one problem found while validating a document or graph.
type Violation struct {
	Code    Code   `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
	// NodeID names the offending page or edge, when there is one.
	NodeID string `json:"node_id,omitempty"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return fmt.Sprintf("[%s] %s", v.Code, v.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", v.Code, v.Path, v.Message)
}

// Result collects every violation found by a validation pass.
type Result struct {
	Violations []Violation `json:"violations"`
}

// Valid reports whether no violation was recorded.
func (r Result) Valid() bool {
	return len(r.Violations) == 0
}

// Add records a violation.
func (r *Result) Add(v Violation) {
	r.Violations = append(r.Violations, v)
}

// Addf records a violation with a formatted message.
func (r *Result) Addf(code Code, path, nodeID, format string, args ...any) {
	r.Add(Violation{
		Code:    code,
		Path:    path,
		NodeID:  nodeID,
		Message: fmt.Sprintf(format, args...),
	})
}

// Merge appends the violations of other.
func (r *Result) Merge(other Result) {
	r.Violations = append(r.Violations, other.Violations...)
}

// Count returns the number of violations per category.
func (r Result) Count(cat Category) int {
	n := 0
	for _, v := range r.Violations {
		if v.Code.Category() == cat {
			n++
		}
	}
	return n
}

// Err returns nil for a valid result, or a *ValidationError carrying it.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return &ValidationError{Result: r}
}
