package domain

import (
	"strconv"
	"strings"
)

// Operator is the comparison applied by a Condition.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not-equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater-than"
	OpLessThan    Operator = "less-than"
	OpAnswered    Operator = "answered"
	OpNotAnswered Operator = "not-answered"
)

// Operators lists the closed set of supported operators in declaration order.
var Operators = []Operator{
	OpEquals,
	OpNotEquals,
	OpContains,
	OpGreaterThan,
	OpLessThan,
	OpAnswered,
	OpNotAnswered,
}

// Valid reports whether op belongs to the supported set.
func (op Operator) Valid() bool {
	for _, known := range Operators {
		if op == known {
			return true
		}
	}
	return false
}

// NeedsValue reports whether the operator compares against a value.
func (op Operator) NeedsValue() bool {
	return op != OpAnswered && op != OpNotAnswered
}

// Condition compares the answer given to one component against an expected value.
type Condition struct {
	ComponentID string   `json:"component" mapstructure:"component"`
	Operator    Operator `json:"operator" mapstructure:"operator"`
	Value       any      `json:"value,omitempty" mapstructure:"value"`
}

// Evaluate applies the condition to the answer set.
// It is total: unknown operators and type mismatches evaluate to false.
func (c Condition) Evaluate(answers AnswerSet, at AnswerType) bool {
	values := answers.Strings(c.ComponentID)

	switch c.Operator {
	case OpAnswered:
		return len(values) > 0
	case OpNotAnswered:
		return len(values) == 0
	case OpEquals:
		return equalsAny(values, c.Value, at)
	case OpNotEquals:
		return c.HasValue() && !equalsAny(values, c.Value, at)
	case OpContains:
		return containsValue(values, c.Value, at)
	case OpGreaterThan:
		return compareNumbers(values, c.Value, func(a, b float64) bool { return a > b })
	case OpLessThan:
		return compareNumbers(values, c.Value, func(a, b float64) bool { return a < b })
	default:
		return false
	}
}

// HasValue reports whether the condition carries a single scalar comparison value.
func (c Condition) HasValue() bool {
	_, ok := scalarString(c.Value)
	return ok
}

func equalsAny(values []string, expected any, at AnswerType) bool {
	want, ok := scalarString(expected)
	if !ok {
		return false
	}
	for _, v := range values {
		if equalString(v, want, at) {
			return true
		}
	}
	return false
}

func equalString(got, want string, at AnswerType) bool {
	switch at {
	case AnswerTextFold:
		return strings.EqualFold(got, want)
	case AnswerNumber:
		a, errA := parseNumber(got)
		b, errB := parseNumber(want)
		if errA == nil && errB == nil {
			return a == b
		}
	}
	return got == want
}

func containsValue(values []string, expected any, at AnswerType) bool {
	want, ok := scalarString(expected)
	if !ok || len(values) == 0 {
		return false
	}
	if at == AnswerMulti || len(values) > 1 {
		return equalsAny(values, want, at)
	}
	got := values[0]
	if at == AnswerTextFold {
		return strings.Contains(strings.ToLower(got), strings.ToLower(want))
	}
	return strings.Contains(got, want)
}

func compareNumbers(values []string, expected any, cmp func(a, b float64) bool) bool {
	if len(values) != 1 {
		return false
	}
	want, ok := scalarString(expected)
	if !ok {
		return false
	}
	a, err := parseNumber(values[0])
	if err != nil {
		return false
	}
	b, err := parseNumber(want)
	if err != nil {
		return false
	}
	return cmp(a, b)
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func scalarString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	out := toStrings(v)
	if len(out) != 1 {
		return "", false
	}
	return out[0], true
}
