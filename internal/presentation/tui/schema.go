package tui

import (
	"fmt"
	"strings"

	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/workspace"
)

// SchemaMarkdown formats class summaries as a markdown document, one section per class.
func SchemaMarkdown(workspaceName string, classes []workspace.ClassInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Workspace `%s`\n\n", workspaceName)

	if len(classes) == 0 {
		b.WriteString("_No user classes._\n")
		return b.String()
	}

	for _, c := range classes {
		title := c.Name
		if c.Abstract {
			title += " _(abstract)_"
		}
		fmt.Fprintf(&b, "## %s\n\n", title)

		var facts []string
		if c.Module != "" {
			facts = append(facts, "module **"+c.Module+"**")
		}
		if c.Ancestor != "" {
			facts = append(facts, "extends **"+c.Ancestor+"**")
		}
		facts = append(facts, fmt.Sprintf("%d instances", c.Instances))
		b.WriteString(strings.Join(facts, " · ") + "\n\n")
		if c.Description != "" {
			fmt.Fprintf(&b, "> %s\n\n", c.Description)
		}

		if len(c.Fields) == 0 {
			continue
		}
		b.WriteString("| Field | Type | Inverse |\n|---|---|---|\n")
		for _, f := range c.Fields {
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", f.Key, fieldType(f), f.Inverse)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func fieldType(f workspace.FieldInfo) string {
	switch f.Kind {
	case domain.KindRef:
		return f.Target
	case domain.KindList:
		return f.Target + "[]"
	default:
		return f.Kind.String()
	}
}
