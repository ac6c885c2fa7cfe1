package core

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/termenv"
	"github.com/robottwo/gcomp/internal/completion"
)

const columnGap = 2

type RenderOptions struct {
	// Width is the terminal width in columns.
	Width   int
	Profile termenv.Profile
}

// Render writes result for the user: the completed line for a unique match
// or history substitution, otherwise the page of matches laid out in
// columns.
func Render(w io.Writer, result Result, options RenderOptions) error {
	switch result.Status {
	case StatusNoMatches:
		return nil
	case StatusUniqueMatch, StatusHistorySubstitution:
		_, err := fmt.Fprintln(w, result.Line)
		return err
	}

	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(options.Profile)
	styles := matchStyles{
		prefix:    renderer.NewStyle().Foreground(lipgloss.Color("63")).Bold(true),
		directory: renderer.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
	}

	start, end := pageWindow(len(result.Matches), result.Page)
	for _, line := range layoutColumns(result.Matches[start:end], result.Prefix, options.Width, styles) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if rest := len(result.Matches) - end; rest > 0 {
		if _, err := fmt.Fprintf(w, "... and %s more\n", humanize.Comma(int64(rest))); err != nil {
			return err
		}
	}
	return nil
}

type matchStyles struct {
	prefix    lipgloss.Style
	directory lipgloss.Style
}

func (s matchStyles) render(match, prefix string) string {
	rest := match
	head := ""
	if prefix != "" && strings.HasPrefix(match, prefix) {
		head = s.prefix.Render(prefix)
		rest = match[len(prefix):]
	}
	if strings.HasSuffix(match, "/") && rest != "" {
		rest = s.directory.Render(rest)
	}
	return head + rest
}

// pageWindow returns the bounds of the matches shown for page.
func pageWindow(total int, page completion.Page) (int, int) {
	start := page.Start
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if page.Limit != completion.NoLimit && page.Limit >= 0 && start+page.Limit < total {
		end = start + page.Limit
	}
	return start, end
}

// layoutColumns arranges matches top to bottom, then left to right, in as
// many columns as fit in width.
func layoutColumns(matches []string, prefix string, width int, styles matchStyles) []string {
	if len(matches) == 0 {
		return nil
	}
	if width <= 0 {
		width = 80
	}

	cells := make([]string, len(matches))
	colWidth := 0
	for i, match := range matches {
		if runewidth.StringWidth(match) > width {
			match = runewidth.Truncate(match, width, "…")
		}
		cells[i] = match
		colWidth = max(colWidth, runewidth.StringWidth(match))
	}
	colWidth += columnGap

	cols := max(1, (width+columnGap)/colWidth)
	rows := (len(cells) + cols - 1) / cols
	cols = (len(cells) + rows - 1) / rows

	lines := make([]string, rows)
	for row := 0; row < rows; row++ {
		var line strings.Builder
		for col := 0; col < cols; col++ {
			i := col*rows + row
			if i >= len(cells) {
				break
			}
			cell := styles.render(cells[i], prefix)
			if col < cols-1 && i+rows < len(cells) {
				cell = padding.String(cell, uint(colWidth))
			}
			line.WriteString(cell)
		}
		lines[row] = line.String()
	}
	return lines
}
