package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/novella/pkg/domain"
)

// Overlay marks a player's progress on the story graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart of a locale's story.
// Shapes follow the node's role:
//   - Start: ((Circle))
//   - Quiz: [/Parallelogram/]
//   - Ending (no way out): ([Stadium])
//   - Default: [Rectangle]
//
// Choice edges carry their text; gated choices are dotted and show the requirement,
// and quiz branches are labelled correct/incorrect.
func GenerateMermaid(nodes []domain.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == domain.StartNodeID:
			opener, closer = "((", "))"
		case node.InputPrompt != nil:
			opener, closer = "[/", "/]"
		case len(node.Choices) == 0:
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer)

		for _, c := range node.Choices {
			label := escapeLabel(c.Text)
			if c.Action != nil && c.Action.SetState != "" {
				label += " ⚑ " + escapeLabel(c.Action.SetState)
			}
			arrow := fmt.Sprintf("-- \"%s\" -->", label)
			if c.Requires != nil {
				cond := fmt.Sprintf("%s = %v", c.Requires.State, c.Requires.Value)
				arrow = fmt.Sprintf("-. \"%s 🔒 %s\" .->", label, escapeLabel(cond))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(c.NextNode))
		}

		if p := node.InputPrompt; p != nil {
			fmt.Fprintf(&sb, "    %s -- \"✔ correct\" --> %s\n", safeID, sanitizeMermaidID(p.OnCorrect))
			fmt.Fprintf(&sb, "    %s -- \"✘ incorrect\" --> %s\n", safeID, sanitizeMermaidID(p.OnIncorrect))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID != "" && !seen[safeID] {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
