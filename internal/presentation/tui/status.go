package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func profileFor(w io.Writer) termenv.Profile {
	if !IsTerminal(w) {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// Printer writes short status lines for the operator.
type Printer struct {
	out     io.Writer
	profile termenv.Profile
}

// NewPrinter creates a Printer. Colours are used only if out is a terminal.
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out, profile: profileFor(out)}
}

// paint colours s, or leaves it alone for plain output.
func paint(p termenv.Profile, s, color string, bold bool) string {
	if p == termenv.Ascii {
		return s
	}
	style := termenv.String(s).Foreground(p.Color(color))
	if bold {
		style = style.Bold()
	}
	return style.String()
}

func (p *Printer) line(symbol, color, format string, args ...any) {
	fmt.Fprintf(p.out, "%s %s\n", paint(p.profile, symbol, color, true), fmt.Sprintf(format, args...))
}

func (p *Printer) Success(format string, args ...any) { p.line("✓", "#22c55e", format, args...) }
func (p *Printer) Warn(format string, args ...any)    { p.line("!", "#f59e0b", format, args...) }
func (p *Printer) Info(format string, args ...any)    { p.line(">", "#818cf8", format, args...) }
