// Package graph renders a wizard flow as a Mermaid flowchart, with an
// optional overlay showing a live flow's completion state.
package graph

import (
	"fmt"
	"strings"

	"github.com/veladahq/velada/pkg/domain"
)

// Overlay contains dynamic flow state to visualize on the graph.
type Overlay struct {
	Completed domain.CompletionMap
	Current   string
}

// GenerateMermaid produces a Mermaid flowchart of a flow's section list.
// Sections connect in wizard order; the submit step closes the chain.
// With an overlay, completed sections and the current one get distinct
// styles.
func GenerateMermaid(sections []domain.Section, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for i, section := range sections {
		safeID := sanitizeMermaidID(section.ID)
		sb.WriteString(fmt.Sprintf("    %s[/\"%s\"/]\n", safeID, section.Name))

		if i+1 < len(sections) {
			next := sanitizeMermaidID(sections[i+1].ID)
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, next))
		}
	}

	if len(sections) > 0 {
		last := sanitizeMermaidID(sections[len(sections)-1].ID)
		sb.WriteString("    submit((\"Enviar\"))\n")
		sb.WriteString(fmt.Sprintf("    %s --> submit\n", last))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for high contrast regardless of theme.
		sb.WriteString("    classDef completed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		for _, section := range sections {
			if overlay.Completed[section.ID] {
				sb.WriteString(fmt.Sprintf("    class %s completed;\n", sanitizeMermaidID(section.ID)))
			}
		}
		if overlay.Current != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
