package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	passStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#90EE90"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// printer writes reports, styled only when out is a terminal.
type printer struct {
	out      io.Writer
	styled   bool
	showCode bool
}

func newPrinter(f *os.File, showCode bool) *printer {
	return &printer{
		out:      f,
		styled:   term.IsTerminal(int(f.Fd())),
		showCode: showCode,
	}
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}

func (p *printer) print(r report) {
	status := p.render(passStyle, "PASS")
	if !r.ok() {
		status = p.render(failStyle, "FAIL")
	}
	header := fmt.Sprintf("%s %s", status, p.render(pathStyle, r.path))
	if r.shaderType != 0 {
		header += p.render(dimStyle, " ("+r.shaderType.String()+")")
	}
	fmt.Fprintln(p.out, header)

	if r.err != nil {
		fmt.Fprintf(p.out, "  %v\n", r.err)
	}
	if log := strings.TrimRight(r.log, "\n"); log != "" {
		fmt.Fprintln(p.out, indent(log))
	}
	if p.showCode && r.ok() && r.code != "" {
		fmt.Fprintln(p.out, p.render(dimStyle, "--- object code ---"))
		fmt.Fprint(p.out, r.code)
		if !strings.HasSuffix(r.code, "\n") {
			fmt.Fprintln(p.out)
		}
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
