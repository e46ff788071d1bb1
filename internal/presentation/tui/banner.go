package tui

import (
	"fmt"
	"io"
)

// PrintBanner writes the tool name and version, coloured when out is a terminal.
func PrintBanner(out io.Writer, version string) {
	p := profileFor(out)
	name := paint(p, "deploy-my-schema", "#818cf8", true)
	ver := paint(p, version, "#c084fc", false)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s %s\n", name, ver)
	fmt.Fprintln(out)
}
