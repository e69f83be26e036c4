/*
Package domain contains the core model of the formflow branching engine.

It defines pages, the conditions guarding a transition, the branch rules and flow edges
that make up the navigation graph, the answer set of an in-progress submission, and the
violations reported by validation. The package is pure: it performs no I/O and holds no
shared state.

# Key Entities

  - Page: one screen of a form, tagged with a closed PageKind.
  - Condition: a single comparison between an answer and an expected value.
  - Branch: conditions joined with AND, plus the destination page.
  - FlowEdge: ordered branches evaluated first-match-wins, plus a mandatory fallback.
  - AnswerSet: the values submitted so far, keyed by component id.
  - Result: every violation found by a validation pass.
*/
package domain
