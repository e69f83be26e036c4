package domain

// PageKind is the closed set of page categories a form is made of.
type PageKind string

const (
	// KindStart is the entry page of a service. There is exactly one per service.
	KindStart PageKind = "start"
	// KindQuestion asks the user for one or more answers.
	KindQuestion PageKind = "question"
	// KindCheckAnswers summarises the answers before submission.
	KindCheckAnswers PageKind = "check-answers"
	// KindConfirmation is shown once the form is sent. It ends the flow.
	KindConfirmation PageKind = "confirmation"
	// KindStandalone pages (footer pages such as cookies or privacy) live outside the flow.
	KindStandalone PageKind = "standalone"
)

// Page type identifiers as they appear in the serialized document (`_type`).
const (
	TypeStart             = "page.start"
	TypeSingleQuestion    = "page.singlequestion"
	TypeMultipleQuestions = "page.multiplequestions"
	TypeContent           = "page.content"
	TypeCheckAnswers      = "page.checkanswers"
	TypeConfirmation      = "page.confirmation"
	TypeStandalone        = "page.standalone"
)

// KindInfo holds the behaviour that differs between page kinds.
type KindInfo struct {
	// Schema is the name of the schema the serialized page must satisfy.
	Schema string
	// Terminal pages end the flow: they own no edge, or one whose fallback is empty.
	Terminal bool
	// Unique kinds may appear at most once per service.
	Unique bool
	// InFlow is false for pages that are never part of the navigation graph.
	InFlow bool
}

var kindTable = map[PageKind]KindInfo{
	KindStart:        {Schema: "page.start", Unique: true, InFlow: true},
	KindQuestion:     {Schema: "page.question", InFlow: true},
	KindCheckAnswers: {Schema: "page.checkanswers", InFlow: true},
	KindConfirmation: {Schema: "page.confirmation", Terminal: true, InFlow: true},
	KindStandalone:   {Schema: "page.standalone"},
}

var typeKinds = map[string]PageKind{
	TypeStart:             KindStart,
	TypeSingleQuestion:    KindQuestion,
	TypeMultipleQuestions: KindQuestion,
	TypeContent:           KindQuestion,
	TypeCheckAnswers:      KindCheckAnswers,
	TypeConfirmation:      KindConfirmation,
	TypeStandalone:        KindStandalone,
}

// Info returns the table entry for the kind. Unknown kinds yield the zero KindInfo.
func (k PageKind) Info() KindInfo {
	return kindTable[k]
}

// Valid reports whether k belongs to the closed set of kinds.
func (k PageKind) Valid() bool {
	_, ok := kindTable[k]
	return ok
}

// KindOf maps a serialized page `_type` onto its PageKind.
func KindOf(pageType string) (PageKind, bool) {
	k, ok := typeKinds[pageType]
	return k, ok
}

// Page is a single addressable screen of a form.
type Page struct {
	ID         string      `json:"_uuid"`
	Name       string      `json:"_id"`
	Kind       PageKind    `json:"kind"`
	Type       string      `json:"_type"`
	URL        string      `json:"url"`
	Heading    string      `json:"heading,omitempty"`
	Lede       string      `json:"lede,omitempty"`
	Body       string      `json:"body,omitempty"`
	Components []Component `json:"components,omitempty"`
}

// Terminal reports whether the page ends the flow.
func (p Page) Terminal() bool {
	return p.Kind.Info().Terminal
}
