package termrender

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// cellStyle is the comparable subset of a lipgloss style a cell carries.
type cellStyle struct {
	fg        string
	bg        string
	bold      bool
	underline bool
	faint     bool
}

func (s cellStyle) lipgloss() lipgloss.Style {
	st := lipgloss.NewStyle()
	if s.fg != "" {
		st = st.Foreground(lipgloss.Color(s.fg))
	}
	if s.bg != "" {
		st = st.Background(lipgloss.Color(s.bg))
	}
	return st.Bold(s.bold).Underline(s.underline).Faint(s.faint)
}

type cell struct {
	r     rune
	style cellStyle
	owner string
	// cont marks the right half of a double-width rune.
	cont bool
}

// Canvas is a drawn grid. Cells remember which node painted them so mouse
// clicks can be mapped back to node ids.
type Canvas struct {
	width  int
	height int
	cells  []cell
}

func newCanvas(width, height int, background string) *Canvas {
	width, height = max(width, 0), max(height, 0)
	c := &Canvas{width: width, height: height, cells: make([]cell, width*height)}
	for i := range c.cells {
		c.cells[i] = cell{r: ' ', style: cellStyle{bg: background}}
	}
	return c
}

// Size returns the grid dimensions.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

func (c *Canvas) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

func (c *Canvas) at(x, y int) *cell {
	return &c.cells[y*c.width+x]
}

// set paints one cell, clearing a double-width rune it overlaps.
func (c *Canvas) set(x, y int, r rune, st cellStyle, owner string) {
	if !c.in(x, y) {
		return
	}
	cl := c.at(x, y)
	if cl.cont && x > 0 {
		left := c.at(x-1, y)
		left.r = ' '
	}
	if !cl.cont && x+1 < c.width && c.at(x+1, y).cont {
		right := c.at(x+1, y)
		right.r, right.cont = ' ', false
	}
	*cl = cell{r: r, style: st, owner: owner}
}

// setWide paints a double-width rune over two cells.
func (c *Canvas) setWide(x, y int, r rune, st cellStyle, owner string) {
	if !c.in(x+1, y) {
		c.set(x, y, ' ', st, owner)
		return
	}
	c.set(x, y, r, st, owner)
	c.set(x+1, y, ' ', st, owner)
	c.at(x+1, y).cont = true
}

// NodeAt returns the id of the node drawn at cell (x, y).
func (c *Canvas) NodeAt(x, y int) (string, bool) {
	if !c.in(x, y) {
		return "", false
	}
	id := c.at(x, y).owner
	return id, id != ""
}

// Plain returns the grid as text without styling.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.width; x++ {
			cl := c.at(x, y)
			if cl.cont {
				continue
			}
			b.WriteRune(cl.r)
		}
	}
	return b.String()
}

// String renders the grid with lipgloss, one style run at a time.
func (c *Canvas) String() string {
	lines := make([]string, c.height)
	for y := 0; y < c.height; y++ {
		var line, run strings.Builder
		var current cellStyle
		flush := func() {
			if run.Len() > 0 {
				line.WriteString(current.lipgloss().Render(run.String()))
				run.Reset()
			}
		}
		for x := 0; x < c.width; x++ {
			cl := c.at(x, y)
			if cl.cont {
				continue
			}
			if x > 0 && cl.style != current {
				flush()
			}
			current = cl.style
			run.WriteRune(cl.r)
		}
		flush()
		lines[y] = line.String()
	}
	return strings.Join(lines, "\n")
}
