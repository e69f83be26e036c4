package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolvedTransition is returned when a page has no usable outgoing transition.
// Callers must treat it as fatal for the current request.
var ErrUnresolvedTransition = errors.New("unresolved transition")

// ErrPageNotFound is returned when a page id is not part of the graph.
var ErrPageNotFound = errors.New("page not found")

// ErrServiceNotFound is returned when a service document cannot be found in a store.
var ErrServiceNotFound = errors.New("service not found")

// ErrFlowLoop is returned when walking the flow does not reach a terminal page.
var ErrFlowLoop = errors.New("flow does not terminate")

// UnresolvedTransitionError describes why the next page could not be resolved.
type UnresolvedTransitionError struct {
	PageID string
	Reason string
}

func (e *UnresolvedTransitionError) Error() string {
	return fmt.Sprintf("page '%s': %s: %s", e.PageID, ErrUnresolvedTransition, e.Reason)
}

func (e *UnresolvedTransitionError) Unwrap() error {
	return ErrUnresolvedTransition
}

// ValidationError carries the violations of a document that failed validation.
type ValidationError struct {
	Result Result
}

func (e *ValidationError) Error() string {
	n := len(e.Result.Violations)
	if n == 1 {
		return e.Result.Violations[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", n)
	for i, v := range e.Result.Violations {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, v)
	}
	return sb.String()
}

// Violations extracts the violations from err if it is a *ValidationError.
func Violations(err error) []Violation {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Result.Violations
	}
	return nil
}
