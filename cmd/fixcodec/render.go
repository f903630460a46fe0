package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/oy3o/fixcodec/internal/config"
)

var (
	headerColor = lipgloss.Color("#7D56F4")
	borderColor = lipgloss.Color("#666666")
	nameColor   = lipgloss.Color("#98FB98")
	titleColor  = lipgloss.Color("#FAFAFA")
)

// useColor reports whether output to w should be coloured.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (e *env) renderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(e.stdout)
	if e.color {
		r.SetColorProfile(termenv.TrueColor)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

func (e *env) title(s string) string {
	r := e.renderer()
	return r.NewStyle().Bold(true).Foreground(titleColor).Background(headerColor).Padding(0, 1).Render(s)
}

// table renders rows under header. The first column holds names.
func (e *env) table(header []string, rows [][]string) string {
	r := e.renderer()
	var (
		headerStyle = r.NewStyle().Bold(true).Foreground(headerColor).Padding(0, 1)
		nameStyle   = r.NewStyle().Foreground(nameColor).Padding(0, 1)
		cellStyle   = r.NewStyle().Padding(0, 1)
	)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(borderColor)).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return nameStyle
			default:
				return cellStyle
			}
		})
	return t.Render()
}
