package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/formflow/pkg/domain"
)

// Report formats a validation result as markdown.
// Violations are grouped by category, schema problems first.
func Report(source string, result domain.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", source)

	if result.Valid() {
		sb.WriteString("**Valid**: no violations found.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "**Invalid**: %d violation(s).\n", len(result.Violations))
	for _, cat := range []domain.Category{domain.CategorySchema, domain.CategoryGraph} {
		if result.Count(cat) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", strings.ToUpper(string(cat[:1]))+string(cat[1:]))
		sb.WriteString("| Code | Path | Page | Message |\n")
		sb.WriteString("|------|------|------|---------|\n")
		for _, v := range result.Violations {
			if v.Code.Category() != cat {
				continue
			}
			fmt.Fprintf(&sb, "| `%s` | `%s` | %s | %s |\n", v.Code, v.Path, cell(v.NodeID), cell(v.Message))
		}
	}
	return sb.String()
}

// PlainReport formats a validation result one violation per line, for pipes and CI logs.
func PlainReport(source string, result domain.Result) string {
	var sb strings.Builder
	if result.Valid() {
		fmt.Fprintf(&sb, "%s: valid\n", source)
		return sb.String()
	}
	fmt.Fprintf(&sb, "%s: %d violation(s)\n", source, len(result.Violations))
	for _, v := range result.Violations {
		fmt.Fprintf(&sb, "  %s\n", v)
	}
	return sb.String()
}

// WriteReport writes the report of result to w, rendered with glamour when rich is set.
func WriteReport(w io.Writer, source string, result domain.Result, rich bool) error {
	if !rich {
		_, err := io.WriteString(w, PlainReport(source, result))
		return err
	}
	out, err := NewRenderer()(Report(source, result))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}
