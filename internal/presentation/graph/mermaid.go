package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
	"github.com/aretw0/formflow/pkg/flow"
)

// GraphOverlay contains a walk through the flow to highlight on the graph.
type GraphOverlay struct {
	VisitedPages []string
	CurrentPage  string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a flow graph.
// It applies semantic styling:
// - Start: ((Circle))
// - Question: [/Parallelogram/]
// - Check answers: [[Subroutine]]
// - Confirmation: ([Stadium])
// Branches are labelled with their conditions; defaults use dotted arrows.
// Standalone pages are grouped in a separate subgraph.
func GenerateMermaid(g *flow.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, page := range g.Pages() {
		writeNode(&sb, page)

		edge, ok := g.Edge(page.ID)
		if !ok {
			continue
		}
		safeID := sanitizeMermaidID(page.ID)
		for _, b := range edge.Branches {
			label := strings.ReplaceAll(describe(b.Conditions), "\"", "'")
			sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, label, sanitizeMermaidID(b.Destination)))
		}
		if edge.Fallback != domain.EndOfFlow {
			sb.WriteString(fmt.Sprintf("    %s -.-> %s\n", safeID, sanitizeMermaidID(edge.Fallback)))
		}
	}

	if standalone := g.Standalone(); len(standalone) > 0 {
		sb.WriteString("    subgraph footer\n")
		for _, page := range standalone {
			sb.WriteString("    ")
			writeNode(&sb, page)
		}
		sb.WriteString("    end\n")
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedPages {
			safeID := sanitizeMermaidID(id)
			if id != "" && !visitedSet[safeID] {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}
		if overlay.CurrentPage != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentPage)))
		}
	}

	return sb.String()
}

func writeNode(sb *strings.Builder, page domain.Page) {
	opener, closer := "[", "]"
	switch page.Kind {
	case domain.KindStart:
		opener, closer = "((", "))" // Circle
	case domain.KindQuestion:
		opener, closer = "[/", "/]" // Parallelogram (Input)
	case domain.KindCheckAnswers:
		opener, closer = "[[", "]]" // Subroutine
	case domain.KindConfirmation:
		opener, closer = "([", "])" // Stadium
	}

	label := page.Name
	if label == "" {
		label = page.ID
	}
	label = strings.ReplaceAll(label, "\"", "'")
	sb.WriteString(fmt.Sprintf("    %s%s\"%s <br/> %s\"%s\n", sanitizeMermaidID(page.ID), opener, label, page.URL, closer))
}

func describe(conditions []domain.Condition) string {
	if len(conditions) == 0 {
		return "never"
	}
	parts := make([]string, 0, len(conditions))
	for _, c := range conditions {
		if c.Operator.NeedsValue() {
			parts = append(parts, fmt.Sprintf("%s %s %v", c.ComponentID, c.Operator, c.Value))
		} else {
			parts = append(parts, fmt.Sprintf("%s %s", c.ComponentID, c.Operator))
		}
	}
	return strings.Join(parts, " and ")
}

// sanitizeMermaidID maps a page id onto a Mermaid-safe identifier.
// Ids are prefixed so that uuids starting with a digit stay valid.
func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return "p_" + r.Replace(id)
}

