package flow

import (
	"fmt"
	"sort"

	"github.com/aretw0/formflow/pkg/domain"
)

// Validate checks the integrity of the graph and returns every violation found.
// It is a pure function of the graph.
func (g *Graph) Validate() domain.Result {
	var r domain.Result

	g.checkPages(&r)
	g.checkComponents(&r)
	g.checkStart(&r)
	g.checkEdges(&r)
	g.checkReachability(&r)

	return r
}

func (g *Graph) checkPages(r *domain.Result) {
	ids := make(map[string]string)
	urls := make(map[string]string)

	check := func(p domain.Page, path string) {
		if first, dup := ids[p.ID]; dup {
			r.Addf(domain.CodeDuplicateID, path+"/_uuid", p.ID, "page id '%s' is already used by %s", p.ID, first)
		} else {
			ids[p.ID] = path
		}
		if first, dup := urls[p.URL]; dup {
			r.Addf(domain.CodeDuplicateURL, path+"/url", p.ID, "url '%s' is already used by %s", p.URL, first)
		} else {
			urls[p.URL] = path
		}
	}

	for i, p := range g.pages {
		path := fmt.Sprintf("/pages/%d", i)
		check(p, path)
		switch {
		case !p.Kind.Valid():
			r.Addf(domain.CodeUnknownPageType, path+"/_type", p.ID, "unknown page type '%s'", p.Type)
		case !p.Kind.Info().InFlow:
			r.Addf(domain.CodeStandaloneInFlow, path+"/_type", p.ID, "page type '%s' cannot be part of the flow", p.Type)
		}
	}
	for i, p := range g.standalone {
		check(p, fmt.Sprintf("/standalone_pages/%d", i))
	}
}

func (g *Graph) checkStart(r *domain.Result) {
	starts := 0
	for i, p := range g.pages {
		if p.Kind != domain.KindStart {
			continue
		}
		starts++
		if starts > 1 {
			r.Addf(domain.CodeMultipleStart, fmt.Sprintf("/pages/%d", i), p.ID, "service already has a start page")
		}
	}
	if starts == 0 {
		r.Addf(domain.CodeMissingStart, "/pages", "", "service has no start page")
	}
}

func (g *Graph) checkEdges(r *domain.Result) {
	reach := newReachability(g)

	for _, p := range g.pages {
		edge, hasEdge := g.edges[p.ID]
		base := "/flow/" + p.ID + "/next"

		if p.Terminal() {
			if hasEdge && (len(edge.Branches) > 0 || edge.Fallback != domain.EndOfFlow) {
				r.Addf(domain.CodeTerminalHasEdge, base, p.ID, "terminal page '%s' must not lead anywhere", p.ID)
			}
			continue
		}
		if !p.Kind.Info().InFlow {
			continue
		}

		switch {
		case !hasEdge:
			r.Addf(domain.CodeMissingEdge, "/flow/"+p.ID, p.ID, "page '%s' has no outgoing edge", p.ID)
			continue
		case edge.Fallback == domain.EndOfFlow:
			r.Addf(domain.CodeMissingFallback, base+"/default", p.ID, "page '%s' has no default destination", p.ID)
		case !g.has(edge.Fallback):
			r.Addf(domain.CodeDanglingFallback, base+"/default", p.ID, "default destination '%s' of page '%s' does not exist", edge.Fallback, p.ID)
		}

		for i, b := range edge.Branches {
			path := fmt.Sprintf("%s/conditions/%d", base, i)
			if len(b.Conditions) == 0 {
				r.Addf(domain.CodeEmptyBranch, path+"/expressions", p.ID, "branch %d of page '%s' has no conditions", i, p.ID)
			}
			if !g.has(b.Destination) {
				r.Addf(domain.CodeDanglingDestination, path+"/next", p.ID, "destination '%s' of branch %d on page '%s' does not exist", b.Destination, i, p.ID)
			}
			for j, c := range b.Conditions {
				g.checkCondition(r, reach, p.ID, fmt.Sprintf("%s/expressions/%d", path, j), c)
			}
		}
	}

	orphans := append([]string(nil), g.orphanEdges...)
	sort.Strings(orphans)
	for _, id := range orphans {
		r.Addf(domain.CodeEdgeForUnknownPage, "/flow/"+id, id, "flow entry '%s' does not belong to a page", id)
	}
}

// checkComponents reports component ids declared more than once. Conditions on
// such a component resolve against its first declaration.
func (g *Graph) checkComponents(r *domain.Result) {
	for _, d := range g.duplicateComponents {
		r.Addf(domain.CodeDuplicateComponent, fmt.Sprintf("/pages/%d/components/%d/_uuid", d.page, d.position), d.pageID,
			"component id '%s' is already declared on page '%s'", d.id, d.firstPageID)
	}
}

func (g *Graph) checkCondition(r *domain.Result, reach *reachability, owner, path string, c domain.Condition) {
	if !c.Operator.Valid() {
		r.Addf(domain.CodeUnknownOperator, path+"/operator", owner, "unknown operator '%s'", c.Operator)
	} else if c.Operator.NeedsValue() && !c.HasValue() {
		r.Addf(domain.CodeMissingValue, path+"/value", owner, "operator '%s' needs a single comparison value", c.Operator)
	}
	ref, ok := g.components[c.ComponentID]
	if !ok {
		r.Addf(domain.CodeUnknownComponent, path+"/component", owner, "component '%s' does not exist", c.ComponentID)
		return
	}
	if ref.pageID != owner && !reach.from(ref.pageID)[owner] {
		r.Addf(domain.CodeComponentOutOfOrder, path+"/component", owner,
			"component '%s' is on page '%s', which is not answered before page '%s'", c.ComponentID, ref.pageID, owner)
	}
}

func (g *Graph) checkReachability(r *domain.Result) {
	start, ok := g.Start()
	if !ok {
		return
	}
	visited := newReachability(g).from(start.ID)
	for i, p := range g.pages {
		if !visited[p.ID] && p.Kind.Info().InFlow {
			r.Addf(domain.CodeUnreachable, fmt.Sprintf("/pages/%d", i), p.ID, "page '%s' cannot be reached from the start page", p.ID)
		}
	}
}

func (g *Graph) has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// reachability memoises breadth-first traversals over branch and fallback edges.
type reachability struct {
	g     *Graph
	cache map[string]map[string]bool
}

func newReachability(g *Graph) *reachability {
	return &reachability{g: g, cache: make(map[string]map[string]bool)}
}

// from returns the set of pages reachable from id, including id itself.
// Every page is visited at most once.
func (rc *reachability) from(id string) map[string]bool {
	if seen, ok := rc.cache[id]; ok {
		return seen
	}
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range rc.g.edges[current].Destinations() {
			if seen[next] || !rc.g.has(next) {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	rc.cache[id] = seen
	return seen
}
