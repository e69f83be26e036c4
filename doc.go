/*
Package formflow is the flow graph and branching engine behind multi-page online forms.

A service is a set of pages linked by a flow: every page has an outgoing edge made of
ordered conditional branches and a default destination. Given the answers submitted so
far, the engine decides which page comes next.

# Concept

formflow separates three concerns:

  - Structure: service documents are checked against named schemas (service.base,
    page.start, page.question, ...). Every violation is reported, not just the first.
  - Integrity: a schema valid document is turned into a flow graph and checked for
    dangling destinations, unreachable pages, duplicate ids or urls, empty branches and
    conditions on components that are not answered earlier in the flow.
  - Resolution: the first branch whose conditions all hold wins, otherwise the default
    destination applies. A page that cannot be resolved is an error, never a guess.

# Key Features

  - Validation as data: violations carry a stable code, a JSON pointer and the page id.
  - Deterministic: the same graph and answers always yield the same next page.
  - Stateless: graphs are rebuilt from a document snapshot on every request.
  - Hexagonal Architecture: storage, HTTP and MCP live in adapters around the engine.

# Usage

	eng, err := formflow.New()
	if err != nil {
		log.Fatal(err)
	}

	doc, _ := eng.Generate(ctx, "Apply for a licence", "owner-id")
	raw, _ := doc.Map()

	if result := eng.Validate(ctx, raw); !result.Valid() {
		for _, v := range result.Violations {
			log.Println(v)
		}
	}

	next, err := eng.ResolveNext(ctx, raw, doc.Pages[0].UUID, domain.AnswerSet{})
	if errors.Is(err, domain.ErrUnresolvedTransition) {
		// the flow is broken for this page; do not guess
	}
*/
package formflow
