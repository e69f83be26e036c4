package domain

// AnswerType describes how answers produced by a component are compared.
type AnswerType int

const (
	// AnswerText answers are compared as exact, case-sensitive strings.
	AnswerText AnswerType = iota
	// AnswerTextFold answers are compared ignoring case.
	AnswerTextFold
	// AnswerNumber answers are coerced to numbers before comparison.
	AnswerNumber
	// AnswerMulti answers hold several selected values.
	AnswerMulti
)

// Component types understood by the engine.
const (
	ComponentText         = "text"
	ComponentTextarea     = "textarea"
	ComponentNumber       = "number"
	ComponentEmail        = "email"
	ComponentRadios       = "radios"
	ComponentCheckboxes   = "checkboxes"
	ComponentDate         = "date"
	ComponentAutocomplete = "autocomplete"
	ComponentUpload       = "upload"
	ComponentContent      = "content"
)

var answerTypes = map[string]AnswerType{
	ComponentNumber:     AnswerNumber,
	ComponentEmail:      AnswerTextFold,
	ComponentCheckboxes: AnswerMulti,
}

// AnswerTypeOf returns the comparison semantics of a component type.
func AnswerTypeOf(componentType string) AnswerType {
	if t, ok := answerTypes[componentType]; ok {
		return t
	}
	return AnswerText
}

// EnabledValidations lists the validation keys a component may declare.
var EnabledValidations = []string{
	"accept",
	"date",
	"date_after",
	"date_before",
	"email",
	"max_size",
	"minimum",
	"maximum",
	"min_length",
	"max_length",
	"min_word",
	"max_word",
	"number",
	"required",
	"upload",
	"virus_scan",
}

// Item is one selectable option of a radios, checkboxes or autocomplete component.
type Item struct {
	ID    string `json:"_uuid,omitempty" mapstructure:"_uuid"`
	Label string `json:"label" mapstructure:"label"`
	Value string `json:"value,omitempty" mapstructure:"value"`
}

// Component is a form field that produces an answer.
type Component struct {
	ID         string         `json:"_uuid" mapstructure:"_uuid"`
	Name       string         `json:"_id" mapstructure:"_id"`
	Type       string         `json:"_type" mapstructure:"_type"`
	Label      string         `json:"label,omitempty" mapstructure:"label"`
	Items      []Item         `json:"items,omitempty" mapstructure:"items"`
	Validation map[string]any `json:"validation,omitempty" mapstructure:"validation"`
}

// AnswerType returns the comparison semantics of the component's answers.
func (c Component) AnswerType() AnswerType {
	return AnswerTypeOf(c.Type)
}
