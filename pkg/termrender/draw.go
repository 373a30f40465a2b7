package termrender

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dd0wney/cluso-topology/pkg/engine"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// particleRune marks a particle travelling along a link.
const particleRune = '•'

// faintOpacity is the link opacity below which strokes are drawn faint.
const faintOpacity = 0.5

// Draw paints a frame onto a canvas of the frame's size: background, then
// links and their particles, then node labels from farthest to nearest.
func Draw(f engine.Frame) *Canvas {
	c := newCanvas(f.Width, f.Height, visualization.BackgroundColor)
	if c.width == 0 || c.height == 0 {
		return c
	}
	pr := NewProjector(f.Camera, f.Width, f.Height)

	for _, l := range f.Links {
		drawLink(c, pr, l)
	}

	type placed struct {
		node  engine.NodeFrame
		x, y  int
		depth float64
	}
	visible := make([]placed, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		x, y, depth, ok := pr.Project(n.Position)
		if !ok {
			continue
		}
		visible = append(visible, placed{node: n, x: x, y: y, depth: depth})
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].depth > visible[j].depth
	})
	for _, p := range visible {
		drawNode(c, p.node, p.x, p.y)
	}
	return c
}

func drawLink(c *Canvas, pr Projector, l engine.LinkFrame) {
	x0, y0, _, ok0 := pr.Project(l.Source)
	x1, y1, _, ok1 := pr.Project(l.Target)
	if !ok0 || !ok1 {
		return
	}
	st := cellStyle{
		fg:    l.Descriptor.Color,
		bg:    visualization.BackgroundColor,
		faint: l.Descriptor.Opacity < faintOpacity,
	}
	r := strokeRune(x1-x0, y1-y0)
	line(x0, y0, x1, y1, func(x, y int) {
		c.set(x, y, r, st, "")
	})

	pst := cellStyle{fg: l.Descriptor.ParticleColor, bg: visualization.BackgroundColor, bold: true}
	for _, p := range l.Particles {
		if x, y, _, ok := pr.Project(p); ok {
			c.set(x, y, particleRune, pst, "")
		}
	}
}

// strokeRune picks a line character for the segment direction.
func strokeRune(dx, dy int) rune {
	adx, ady := math.Abs(float64(dx)), math.Abs(float64(dy))
	switch {
	case adx == 0 && ady == 0:
		return '·'
	case ady*2 < adx:
		return '─'
	case adx*2 < ady:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

// line visits every cell of the Bresenham segment from (x0,y0) to (x1,y1).
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// LabelWidth is the widest label, in cells, a font size allows.
func LabelWidth(fontSize float64) int {
	return max(4, int(math.Round(fontSize*1.2)))
}

// Label returns the text drawn for a node: glyph and text truncated to
// the font-size budget, framed in brackets when the descriptor has a border.
func Label(d visualization.Descriptor, id string) string {
	text := d.Text
	if text == "" {
		text = id
	}
	label := text
	if d.Glyph != "" {
		label = d.Glyph + " " + text
	}
	if d.Border.Width > 0 {
		return "[" + runewidth.Truncate(label, LabelWidth(d.FontSize)-2, "…") + "]"
	}
	return runewidth.Truncate(label, LabelWidth(d.FontSize), "…")
}

// labelStyle maps descriptor styling onto a terminal cell.
func labelStyle(d visualization.Descriptor) cellStyle {
	return cellStyle{
		fg:        d.Color,
		bg:        Blend(d.Background, visualization.BackgroundColor),
		bold:      d.FontWeight == visualization.HighlightWeight || d.Glow != "",
		underline: d.Glow != "",
	}
}

func drawNode(c *Canvas, n engine.NodeFrame, x, y int) {
	d := n.Descriptor
	if !n.Styled {
		d = visualization.Descriptor{Text: n.ID, Color: visualization.ParticleColor}
	}
	label := Label(d, n.ID)
	st := labelStyle(d)

	x -= runewidth.StringWidth(label) / 2
	for _, r := range label {
		w := runewidth.RuneWidth(r)
		switch w {
		case 0:
			continue
		case 2:
			c.setWide(x, y, r, st, n.ID)
		default:
			c.set(x, y, r, st, n.ID)
		}
		x += w
	}
}

// Blend composites a translucent colour over an opaque hex background and
// returns the result as hex.
func Blend(fg visualization.RGBA, background string) string {
	var br, bg, bb uint8
	if _, err := fmt.Sscanf(strings.TrimPrefix(background, "#"), "%2x%2x%2x", &br, &bg, &bb); err != nil {
		return fg.Hex()
	}
	a := math.Max(0, math.Min(1, fg.A))
	mix := func(f, b uint8) uint8 {
		return uint8(math.Round(float64(f)*a + float64(b)*(1-a)))
	}
	return visualization.RGBA{R: mix(fg.R, br), G: mix(fg.G, bg), B: mix(fg.B, bb), A: 1}.Hex()
}
