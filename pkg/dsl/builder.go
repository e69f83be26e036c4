package dsl

import (
	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
)

// Builder manages the document construction.
type Builder struct {
	doc   document.Document
	order []string
	pages map[string]*PageBuilder
}

// New creates a new document builder for a service.
func New(serviceName string) *Builder {
	return &Builder{
		doc: document.Document{
			ServiceID:   "service-" + slug(serviceName),
			ServiceName: serviceName,
			CreatedBy:   "dsl",
		},
		pages: make(map[string]*PageBuilder),
	}
}

// ServiceID overrides the generated service id.
func (b *Builder) ServiceID(id string) *Builder {
	b.doc.ServiceID = id
	return b
}

// Owner sets the created_by field.
func (b *Builder) Owner(owner string) *Builder {
	b.doc.CreatedBy = owner
	return b
}

// Add creates a new page in the flow with the given id and `_type`.
// If the page already exists, it returns the existing builder.
func (b *Builder) Add(id, pageType string) *PageBuilder {
	if pb, ok := b.pages[id]; ok {
		return pb
	}
	kind, _ := domain.KindOf(pageType)
	pb := &PageBuilder{
		page: document.Page{
			UUID:    id,
			ID:      "page." + id,
			Type:    pageType,
			URL:     id,
			Heading: id,
		},
		standalone: kind == domain.KindStandalone,
		builder:    b,
	}
	if pb.standalone {
		pb.page.Body = id
	}
	b.pages[id] = pb
	b.order = append(b.order, id)
	return pb
}

// Start adds the start page, served at "/".
func (b *Builder) Start(id string) *PageBuilder {
	return b.Add(id, domain.TypeStart).URL("/")
}

// Question adds a single question page.
func (b *Builder) Question(id string) *PageBuilder {
	return b.Add(id, domain.TypeSingleQuestion)
}

// CheckAnswers adds the check-answers page.
func (b *Builder) CheckAnswers(id string) *PageBuilder {
	return b.Add(id, domain.TypeCheckAnswers).URL("check-answers")
}

// Confirmation adds a confirmation page. It ends the flow.
func (b *Builder) Confirmation(id string) *PageBuilder {
	return b.Add(id, domain.TypeConfirmation).URL("form-sent").Terminal()
}

// Standalone adds a footer page outside the flow.
func (b *Builder) Standalone(id string) *PageBuilder {
	return b.Add(id, domain.TypeStandalone)
}

// Document compiles the builder into a service document.
func (b *Builder) Document() *document.Document {
	doc := b.doc
	doc.Pages = []document.Page{}
	doc.StandalonePages = []document.Page{}
	doc.Flow = make(map[string]document.FlowObject)

	for _, id := range b.order {
		pb := b.pages[id]
		page := pb.page
		page.Components = append([]domain.Component(nil), pb.page.Components...)
		if pb.standalone {
			doc.StandalonePages = append(doc.StandalonePages, page)
			continue
		}
		doc.Pages = append(doc.Pages, page)
		if pb.edge != nil {
			doc.Flow[page.UUID] = document.FlowObject{Type: domain.FlowTypePage, Next: *pb.edge}
		}
	}
	return &doc
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			if len(out) > 0 && out[len(out)-1] != '-' {
				out = append(out, '-')
			}
		}
	}
	return string(out)
}
