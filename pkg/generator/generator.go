package generator

import (
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/formflow/pkg/document"
	"github.com/aretw0/formflow/pkg/domain"
)

// Fixed urls of the pages every new service starts with.
const (
	StartURL        = "/"
	CheckAnswersURL = "check-answers"
	ConfirmationURL = "form-sent"
)

// FooterPage describes one of the standalone pages linked from every page footer.
type FooterPage struct {
	Name    string
	URL     string
	Heading string
	Body    string
}

// DefaultFooter lists the standalone pages created for a new service.
var DefaultFooter = []FooterPage{
	{Name: "cookies", URL: "cookies", Heading: "Cookies", Body: "This service uses cookies to remember your answers."},
	{Name: "privacy", URL: "privacy", Heading: "Privacy notice", Body: "This notice explains how your information is used."},
	{Name: "accessibility", URL: "accessibility", Heading: "Accessibility statement", Body: "This statement applies to this online form."},
}

// Generator mints the metadata of brand new services.
type Generator struct {
	newID  func() string
	now    func() time.Time
	locale string
	footer []FooterPage
}

// Option configures a Generator.
type Option func(*Generator)

// WithIDSource overrides how uuids are minted.
func WithIDSource(fn func() string) Option {
	return func(g *Generator) {
		g.newID = fn
	}
}

// WithClock overrides the creation timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(g *Generator) {
		g.now = fn
	}
}

// WithLocale sets the locale recorded on generated services (default "en").
func WithLocale(locale string) Option {
	return func(g *Generator) {
		g.locale = locale
	}
}

// WithFooter replaces the default standalone pages.
func WithFooter(pages ...FooterPage) Option {
	return func(g *Generator) {
		g.footer = append([]FooterPage(nil), pages...)
	}
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		newID:  uuid.NewString,
		now:    time.Now,
		locale: "en",
		footer: DefaultFooter,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the metadata of a new service: start, check answers and
// confirmation pages chained in that order, plus the footer pages.
func (g *Generator) Generate(serviceName, owner string) *document.Document {
	start := document.Page{
		UUID:    g.newID(),
		ID:      "page.start",
		Type:    domain.TypeStart,
		URL:     StartURL,
		Heading: serviceName,
		Lede:    "This is your start page. Use it to explain what the service is for.",
	}
	checkAnswers := document.Page{
		UUID:    g.newID(),
		ID:      "page.checkanswers",
		Type:    domain.TypeCheckAnswers,
		URL:     CheckAnswersURL,
		Heading: "Check your answers",
	}
	confirmation := document.Page{
		UUID:    g.newID(),
		ID:      "page.confirmation",
		Type:    domain.TypeConfirmation,
		URL:     ConfirmationURL,
		Heading: "Application complete",
	}

	doc := &document.Document{
		ServiceID:   g.newID(),
		ServiceName: serviceName,
		CreatedBy:   owner,
		VersionID:   g.newID(),
		CreatedAt:   g.now().UTC().Format(time.RFC3339),
		Locale:      g.locale,
		Configuration: map[string]document.Config{
			"service": {ID: "config.service", Type: "config.service"},
			"meta":    {ID: "config.meta", Type: "config.meta", Title: serviceName},
		},
		Pages:           []document.Page{start, checkAnswers, confirmation},
		StandalonePages: make([]document.Page, 0, len(g.footer)),
		Flow: map[string]document.FlowObject{
			start.UUID:        edge(checkAnswers.UUID),
			checkAnswers.UUID: edge(confirmation.UUID),
			confirmation.UUID: edge(domain.EndOfFlow),
		},
	}

	for _, f := range g.footer {
		doc.StandalonePages = append(doc.StandalonePages, document.Page{
			UUID:    g.newID(),
			ID:      "page." + f.Name,
			Type:    domain.TypeStandalone,
			URL:     f.URL,
			Heading: f.Heading,
			Body:    f.Body,
		})
	}
	return doc
}

func edge(next string) document.FlowObject {
	return document.FlowObject{
		Type: domain.FlowTypePage,
		Next: domain.FlowEdge{Fallback: next},
	}
}
