package graph

import (
	"fmt"
	"strings"

	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/workspace"
)

// GenerateMermaid produces a Mermaid class diagram from class summaries.
// It applies semantic styling:
// - Abstract classes: <<abstract>> annotation
// - Ancestry: <|-- arrows
// - Reference fields: --> arrows, collections marked "*"
// - Inverse pairs: a single <--> arrow labelled with both field keys
// Scalar fields are listed in the class body; inherited ones only on the ancestor.
func GenerateMermaid(classes []workspace.ClassInfo) string {
	var sb strings.Builder
	sb.WriteString("classDiagram\n")

	byName := make(map[string]workspace.ClassInfo, len(classes))
	for _, c := range classes {
		byName[c.Name] = c
	}

	for _, c := range classes {
		safeID := sanitizeMermaidID(c.Name)
		inherited := inheritedKeys(byName, c)

		sb.WriteString(fmt.Sprintf("    class %s[\"%s\"] {\n", safeID, escapeLabel(c.Name)))
		if c.Abstract {
			sb.WriteString("        <<abstract>>\n")
		}
		for _, f := range c.Fields {
			if inherited[f.Key] || f.Kind == domain.KindRef || f.Kind == domain.KindList {
				continue
			}
			sb.WriteString(fmt.Sprintf("        +%s %s\n", f.Kind, f.Key))
		}
		sb.WriteString("    }\n")
	}

	// Relations
	seen := make(map[string]bool)
	for _, c := range classes {
		safeID := sanitizeMermaidID(c.Name)
		inherited := inheritedKeys(byName, c)

		if c.Ancestor != "" {
			sb.WriteString(fmt.Sprintf("    %s <|-- %s\n", sanitizeMermaidID(c.Ancestor), safeID))
		}

		for _, f := range c.Fields {
			if inherited[f.Key] || f.Target == "" {
				continue
			}
			if seen[c.Name+"."+f.Key] {
				continue
			}
			safeTo := sanitizeMermaidID(f.Target)
			many := ""
			if f.Kind == domain.KindList {
				many = "\"*\" "
			}

			if f.Inverse != "" {
				// Both ends describe the same association; draw it once.
				seen[f.Target+"."+f.Inverse] = true
				sb.WriteString(fmt.Sprintf("    %s <--> %s%s : %s / %s\n", safeID, many, safeTo, f.Key, f.Inverse))
				continue
			}
			sb.WriteString(fmt.Sprintf("    %s --> %s%s : %s\n", safeID, many, safeTo, f.Key))
		}
	}

	return sb.String()
}

// inheritedKeys returns the field keys c gets from its ancestors.
func inheritedKeys(byName map[string]workspace.ClassInfo, c workspace.ClassInfo) map[string]bool {
	keys := make(map[string]bool)
	visited := map[string]bool{c.Name: true}
	for name := c.Ancestor; name != "" && !visited[name]; {
		visited[name] = true
		ancestor, ok := byName[name]
		if !ok {
			break
		}
		for _, f := range ancestor.Fields {
			keys[f.Key] = true
		}
		name = ancestor.Ancestor
	}
	return keys
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
