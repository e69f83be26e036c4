package flow

import (
	"fmt"

	"github.com/aretw0/formflow/pkg/domain"
)

// ResolveNext returns the id of the page that follows pageID for the given answers.
// An empty id with a nil error means the flow has ended.
//
// Resolution fails closed: a non-terminal page without a usable transition yields an
// *domain.UnresolvedTransitionError rather than a guess.
func (g *Graph) ResolveNext(pageID string, answers domain.AnswerSet) (string, error) {
	next, _, err := g.Resolve(pageID, answers)
	return next, err
}

// Resolve is ResolveNext that also reports which branch matched (-1 for the fallback).
func (g *Graph) Resolve(pageID string, answers domain.AnswerSet) (string, int, error) {
	page, ok := g.Page(pageID)
	if !ok {
		return "", -1, fmt.Errorf("%w: %s", domain.ErrPageNotFound, pageID)
	}

	edge, hasEdge := g.edges[pageID]
	if page.Terminal() {
		if hasEdge && len(edge.Destinations()) > 0 {
			return "", -1, &domain.UnresolvedTransitionError{PageID: pageID, Reason: "terminal page has outgoing transitions"}
		}
		return domain.EndOfFlow, -1, nil
	}
	if !hasEdge {
		return "", -1, &domain.UnresolvedTransitionError{PageID: pageID, Reason: "page has no outgoing edge"}
	}

	next, branch := edge.Resolve(answers, g.AnswerType)
	if next == domain.EndOfFlow {
		return "", branch, &domain.UnresolvedTransitionError{PageID: pageID, Reason: "no destination for a non-terminal page"}
	}
	if _, ok := g.index[next]; !ok {
		return "", branch, &domain.UnresolvedTransitionError{
			PageID: pageID,
			Reason: fmt.Sprintf("destination '%s' is not a page of the flow", next),
		}
	}
	return next, branch, nil
}

// ResolveNextURL is ResolveNext returning the url of the next page.
func (g *Graph) ResolveNextURL(pageID string, answers domain.AnswerSet) (string, error) {
	next, err := g.ResolveNext(pageID, answers)
	if err != nil || next == domain.EndOfFlow {
		return "", err
	}
	page, _ := g.Page(next)
	return page.URL, nil
}

// Trace walks the flow from the start page with a fixed answer set and returns the
// ids of the pages visited, ending on a terminal page.
func (g *Graph) Trace(answers domain.AnswerSet) ([]string, error) {
	start, ok := g.Start()
	if !ok {
		return nil, &domain.UnresolvedTransitionError{PageID: "", Reason: "graph has no start page"}
	}

	path := []string{start.ID}
	current := start.ID
	for steps := 0; steps <= len(g.pages); steps++ {
		next, err := g.ResolveNext(current, answers)
		if err != nil {
			return path, err
		}
		if next == domain.EndOfFlow {
			return path, nil
		}
		path = append(path, next)
		current = next
	}
	return path, fmt.Errorf("%w: exceeded %d steps", domain.ErrFlowLoop, len(g.pages))
}
