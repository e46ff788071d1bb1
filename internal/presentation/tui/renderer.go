package tui

import (
	"io"

	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown for out.
// Terminals get glamour's styled output; anything else gets the markdown unchanged.
func NewRenderer(out io.Writer) func(string) (string, error) {
	if !IsTerminal(out) {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return r.Render
}
