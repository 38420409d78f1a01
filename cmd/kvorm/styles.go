package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	styleBold    = lipgloss.NewStyle().Bold(true)
	styleFaint   = lipgloss.NewStyle().Faint(true)
	styleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	numberColor  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
)

// isTerminal reports whether w is a terminal, so output is only styled when
// a person is reading it.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printer writes command output, styled when it goes to a terminal.
type printer struct {
	w      io.Writer
	styled bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, styled: isTerminal(w)}
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) bold(s string) string    { return p.render(styleBold, s) }
func (p *printer) faint(s string) string   { return p.render(styleFaint, s) }
func (p *printer) warning(s string) string { return p.render(styleWarning, s) }
func (p *printer) number(s string) string  { return p.render(numberColor, s) }

func (p *printer) println(parts ...string) {
	for i, part := range parts {
		if i > 0 {
			io.WriteString(p.w, " ")
		}
		io.WriteString(p.w, part)
	}
	io.WriteString(p.w, "\n")
}
