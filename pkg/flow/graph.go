package flow

import (
	"fmt"

	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
)

// Graph is the navigation graph of one service, built eagerly from a document snapshot.
// A Graph is immutable after Build and holds no references to the source document.
type Graph struct {
	serviceID string
	meta      document.Document // service level fields only; pages and flow are nil

	pages      []domain.Page // flow pages, in document order
	standalone []domain.Page
	index      map[string]int // page id -> position in pages
	edges      map[string]domain.FlowEdge

	// orphanEdges are flow entries keyed by an id that is not a flow page.
	orphanEdges []string

	components map[string]componentRef

	// duplicateComponents are component ids declared on more than one flow page.
	duplicateComponents []duplicateComponent
}

type duplicateComponent struct {
	id, pageID, firstPageID string
	page, position          int
}

type componentRef struct {
	pageID string
	typ    domain.AnswerType
}

// Build constructs a Graph from a fully materialised document.
// It only fails on documents it cannot represent at all; integrity problems are
// reported by Validate.
func Build(doc *document.Document) (*Graph, error) {
	if doc == nil {
		return nil, fmt.Errorf("cannot build graph from nil document")
	}

	g := &Graph{
		serviceID:  doc.ServiceID,
		meta:       serviceMeta(doc),
		pages:      make([]domain.Page, 0, len(doc.Pages)),
		standalone: make([]domain.Page, 0, len(doc.StandalonePages)),
		index:      make(map[string]int, len(doc.Pages)),
		edges:      make(map[string]domain.FlowEdge, len(doc.Flow)),
		components: make(map[string]componentRef),
	}

	for i, p := range doc.Pages {
		page := toDomainPage(p)
		if _, dup := g.index[page.ID]; !dup {
			g.index[page.ID] = len(g.pages)
		}
		g.pages = append(g.pages, page)

		for j, c := range page.Components {
			if first, seen := g.components[c.ID]; seen {
				g.duplicateComponents = append(g.duplicateComponents, duplicateComponent{
					id: c.ID, pageID: page.ID, firstPageID: first.pageID, page: i, position: j,
				})
				continue
			}
			g.components[c.ID] = componentRef{pageID: page.ID, typ: c.AnswerType()}
		}
	}
	for _, p := range doc.StandalonePages {
		g.standalone = append(g.standalone, toDomainPage(p))
	}

	for id, obj := range doc.Flow {
		g.edges[id] = cloneEdge(obj.Next)
		if _, ok := g.index[id]; !ok {
			g.orphanEdges = append(g.orphanEdges, id)
		}
	}

	return g, nil
}

func serviceMeta(doc *document.Document) document.Document {
	meta := document.Document{
		ServiceID:   doc.ServiceID,
		ServiceName: doc.ServiceName,
		CreatedBy:   doc.CreatedBy,
		VersionID:   doc.VersionID,
		CreatedAt:   doc.CreatedAt,
		Locale:      doc.Locale,
	}
	if len(doc.Configuration) > 0 {
		meta.Configuration = make(map[string]document.Config, len(doc.Configuration))
		for k, v := range doc.Configuration {
			meta.Configuration[k] = v
		}
	}
	return meta
}

func toDomainPage(p document.Page) domain.Page {
	kind, _ := domain.KindOf(p.Type)
	return domain.Page{
		ID:         p.UUID,
		Name:       p.ID,
		Kind:       kind,
		Type:       p.Type,
		URL:        p.URL,
		Heading:    p.Heading,
		Lede:       p.Lede,
		Body:       p.Body,
		Components: append([]domain.Component(nil), p.Components...),
	}
}

func cloneEdge(e domain.FlowEdge) domain.FlowEdge {
	out := domain.FlowEdge{Fallback: e.Fallback}
	if len(e.Branches) == 0 {
		return out
	}
	out.Branches = make([]domain.Branch, len(e.Branches))
	for i, b := range e.Branches {
		out.Branches[i] = domain.Branch{
			Destination: b.Destination,
			Conditions:  append([]domain.Condition(nil), b.Conditions...),
		}
	}
	return out
}

// ServiceID returns the id of the service the graph was built from.
func (g *Graph) ServiceID() string {
	return g.serviceID
}

// Pages returns the flow pages in document order.
func (g *Graph) Pages() []domain.Page {
	return append([]domain.Page(nil), g.pages...)
}

// Standalone returns the pages that live outside the flow.
func (g *Graph) Standalone() []domain.Page {
	return append([]domain.Page(nil), g.standalone...)
}

// Page looks a flow page up by id.
func (g *Graph) Page(id string) (domain.Page, bool) {
	i, ok := g.index[id]
	if !ok {
		return domain.Page{}, false
	}
	return g.pages[i], true
}

// PageByURL looks a flow or standalone page up by url.
func (g *Graph) PageByURL(url string) (domain.Page, bool) {
	for _, p := range g.pages {
		if p.URL == url {
			return p, true
		}
	}
	for _, p := range g.standalone {
		if p.URL == url {
			return p, true
		}
	}
	return domain.Page{}, false
}

// Start returns the first start page of the graph.
func (g *Graph) Start() (domain.Page, bool) {
	for _, p := range g.pages {
		if p.Kind == domain.KindStart {
			return p, true
		}
	}
	return domain.Page{}, false
}

// Edge returns the outgoing edge of a page.
func (g *Graph) Edge(pageID string) (domain.FlowEdge, bool) {
	e, ok := g.edges[pageID]
	return e, ok
}

// AnswerType resolves the comparison semantics of a component's answers.
func (g *Graph) AnswerType(componentID string) domain.AnswerType {
	if ref, ok := g.components[componentID]; ok {
		return ref.typ
	}
	return domain.AnswerText
}
