package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// AnswerSet holds the values submitted so far in one submission, keyed by component id.
// It is owned by a single submission session and never shared.
type AnswerSet map[string]any

// Get returns the raw answer for a component.
func (a AnswerSet) Get(componentID string) (any, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a[componentID]
	return v, ok
}

// With returns a copy of the set with the answer recorded.
// The receiver is left untouched so earlier snapshots stay valid.
func (a AnswerSet) With(componentID string, value any) AnswerSet {
	next := make(AnswerSet, len(a)+1)
	for k, v := range a {
		next[k] = v
	}
	next[componentID] = value
	return next
}

// Strings returns the non-empty answer values of a component as strings.
// Missing components yield nil.
func (a AnswerSet) Strings(componentID string) []string {
	v, ok := a.Get(componentID)
	if !ok {
		return nil
	}
	var out []string
	for _, s := range toStrings(v) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func toStrings(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []string{val}
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, toStrings(item)...)
		}
		return out
	case bool:
		return []string{strconv.FormatBool(val)}
	case float64:
		return []string{strconv.FormatFloat(val, 'f', -1, 64)}
	case float32:
		return []string{strconv.FormatFloat(float64(val), 'f', -1, 32)}
	case int:
		return []string{strconv.Itoa(val)}
	case int64:
		return []string{strconv.FormatInt(val, 10)}
	case int32:
		return []string{strconv.FormatInt(int64(val), 10)}
	case json.Number:
		return []string{val.String()}
	case fmt.Stringer:
		return []string{val.String()}
	default:
		return []string{fmt.Sprintf("%v", val)}
	}
}
