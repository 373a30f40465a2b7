package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/dd0wney/cluso-topology/pkg/graph"
)

// Terminal palette for one-shot commands.
var (
	brand  = color.New(color.FgHiMagenta, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	warn   = color.New(color.FgYellow)
)

// stdout is where command results are written.
var stdout io.Writer = os.Stdout

// Truncation widths for table cells.
const (
	labelMaxWidth = 40
	idMaxWidth    = 36
)

func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// banner prints a section heading.
func banner(title string) {
	fmt.Fprintf(stdout, "%s %s\n\n", brand.Sprint("◆ topology"), title)
}

// printTable prints an aligned table. Widths are measured in terminal cells;
// paint, when non-nil, colours a cell after padding.
func printTable(headers []string, rows [][]string, paint func(row, col int) *color.Color) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}

	var header, sep strings.Builder
	header.WriteString("  ")
	sep.WriteString("  ")
	for i, h := range headers {
		header.WriteString(runewidth.FillRight(h, widths[i]) + "  ")
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	subtle.Fprintln(stdout, header.String())
	subtle.Fprintln(stdout, sep.String())

	for r, row := range rows {
		var line strings.Builder
		line.WriteString("  ")
		for i, cell := range row {
			if i >= len(widths) {
				continue
			}
			cell = runewidth.FillRight(cell, widths[i])
			if paint != nil {
				if c := paint(r, i); c != nil {
					cell = c.Sprint(cell)
				}
			}
			line.WriteString(cell + "  ")
		}
		fmt.Fprintln(stdout, line.String())
	}
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

// colorFor returns the legend colour of a node type.
func colorFor(t graph.NodeType) *color.Color {
	switch t {
	case graph.NodeTypeBook:
		return color.New(color.FgBlue)
	case graph.NodeTypeAuthor:
		return color.New(color.FgRed)
	case graph.NodeTypeEra:
		return color.New(color.FgYellow)
	case graph.NodeTypeMovement:
		return color.New(color.FgMagenta)
	case graph.NodeTypeCharacter:
		return color.New(color.FgGreen)
	case graph.NodeTypePlot:
		return color.New(color.FgCyan)
	default:
		return nil
	}
}
