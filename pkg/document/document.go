package document

import "github.com/aretw0/formflow/pkg/domain"

// Document is the serialized definition of a service: its pages, footer pages and flow.
type Document struct {
	ServiceID       string                `json:"service_id" mapstructure:"service_id"`
	ServiceName     string                `json:"service_name" mapstructure:"service_name"`
	CreatedBy       string                `json:"created_by" mapstructure:"created_by"`
	VersionID       string                `json:"version_id,omitempty" mapstructure:"version_id"`
	CreatedAt       string                `json:"created_at,omitempty" mapstructure:"created_at"`
	Locale          string                `json:"locale,omitempty" mapstructure:"locale"`
	Configuration   map[string]Config     `json:"configuration,omitempty" mapstructure:"configuration"`
	Pages           []Page                `json:"pages" mapstructure:"pages"`
	StandalonePages []Page                `json:"standalone_pages" mapstructure:"standalone_pages"`
	Flow            map[string]FlowObject `json:"flow,omitempty" mapstructure:"flow"`
}

// Config is a service level configuration block (e.g. `service`, `meta`).
type Config struct {
	ID    string `json:"_id" mapstructure:"_id"`
	Type  string `json:"_type" mapstructure:"_type"`
	Title string `json:"title,omitempty" mapstructure:"title"`
}

// Page is the serialized form of a page.
type Page struct {
	UUID       string             `json:"_uuid" mapstructure:"_uuid"`
	ID         string             `json:"_id" mapstructure:"_id"`
	Type       string             `json:"_type" mapstructure:"_type"`
	URL        string             `json:"url" mapstructure:"url"`
	Heading    string             `json:"heading,omitempty" mapstructure:"heading"`
	Lede       string             `json:"lede,omitempty" mapstructure:"lede"`
	Body       string             `json:"body,omitempty" mapstructure:"body"`
	Components []domain.Component `json:"components,omitempty" mapstructure:"components"`
}

// FlowObject is one entry of the flow map: the outgoing edge of the page it is keyed by.
type FlowObject struct {
	Type string          `json:"_type" mapstructure:"_type"`
	Next domain.FlowEdge `json:"next" mapstructure:"next"`
}

// FindPage looks a flow or standalone page up by uuid.
func (d *Document) FindPage(uuid string) (*Page, bool) {
	for i := range d.Pages {
		if d.Pages[i].UUID == uuid {
			return &d.Pages[i], true
		}
	}
	for i := range d.StandalonePages {
		if d.StandalonePages[i].UUID == uuid {
			return &d.StandalonePages[i], true
		}
	}
	return nil, false
}

// FindPageByURL looks a flow or standalone page up by url.
func (d *Document) FindPageByURL(url string) (*Page, bool) {
	for _, p := range d.AllPages() {
		if p.URL == url {
			page := p
			return &page, true
		}
	}
	return nil, false
}

// AllPages returns flow pages followed by standalone pages.
func (d *Document) AllPages() []Page {
	out := make([]Page, 0, len(d.Pages)+len(d.StandalonePages))
	out = append(out, d.Pages...)
	return append(out, d.StandalonePages...)
}
