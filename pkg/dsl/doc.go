/*
Package dsl provides a Go DSL for programmatically constructing formflow service documents.

It allows developers to define pages and their branching using a fluent builder instead
of hand-writing JSON or YAML. This is particularly useful for unit tests and for
generating services from code.

Example usage:

	b := dsl.New("Apply for a licence")

	b.Start("start").Go("age")

	b.Question("age").
		Component("age-answer", domain.ComponentNumber).
		Branch("too-young", dsl.LessThan("age-answer", 18)).
		Go("check")

	b.Question("too-young").Go("check")
	b.CheckAnswers("check").Go("done")
	b.Confirmation("done")
	b.Standalone("cookies")

	doc := b.Document()

Page ids double as uuids and, except for the fixed start, check-answers and
confirmation urls, as urls.
*/
package dsl
