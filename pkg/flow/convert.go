package flow

import (
	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
)

// Document serializes the graph back into the document shape, service metadata
// included. Building a graph from the result yields an equivalent graph.
func (g *Graph) Document() *document.Document {
	doc := serviceMeta(&g.meta)
	doc.Pages = make([]document.Page, 0, len(g.pages))
	doc.StandalonePages = make([]document.Page, 0, len(g.standalone))
	doc.Flow = make(map[string]document.FlowObject, len(g.edges))

	for _, p := range g.pages {
		doc.Pages = append(doc.Pages, fromDomainPage(p))
	}
	for _, p := range g.standalone {
		doc.StandalonePages = append(doc.StandalonePages, fromDomainPage(p))
	}
	for id, edge := range g.edges {
		doc.Flow[id] = document.FlowObject{Type: domain.FlowTypePage, Next: cloneEdge(edge)}
	}
	return &doc
}

func fromDomainPage(p domain.Page) document.Page {
	return document.Page{
		UUID:       p.ID,
		ID:         p.Name,
		Type:       p.Type,
		URL:        p.URL,
		Heading:    p.Heading,
		Lede:       p.Lede,
		Body:       p.Body,
		Components: append([]domain.Component(nil), p.Components...),
	}
}
