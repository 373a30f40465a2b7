package visualization

import (
	"fmt"
	"strconv"

	"github.com/dd0wney/cluso-topology/pkg/graph"
)

// RGBA is a colour with alpha in [0,1].
type RGBA struct {
	R uint8   `json:"r"`
	G uint8   `json:"g"`
	B uint8   `json:"b"`
	A float64 `json:"a"`
}

// CSS renders the colour as an rgba() expression.
func (c RGBA) CSS() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// Hex renders the colour without alpha.
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WithAlpha returns c with its alpha replaced.
func (c RGBA) WithAlpha(a float64) RGBA {
	c.A = a
	return c
}

// Padding is a label's inner spacing in pixels.
type Padding struct {
	Vertical   int `json:"vertical"`
	Horizontal int `json:"horizontal"`
}

// Border is a label outline. Width 0 means no border.
type Border struct {
	Width int  `json:"width"`
	Color RGBA `json:"color"`
}

// TypeStyle is the base appearance of one node type before degree scaling
// and highlight overrides are applied.
type TypeStyle struct {
	Glyph      string
	Color      string
	FontWeight string

	// Font size = clamp(FontMin, FontMin + degree*FontScale, FontMax)
	FontMin   float64
	FontMax   float64
	FontScale float64

	// Background alpha = clamp(AlphaMin, AlphaMin + degree*AlphaScale, AlphaMax)
	Background RGBA
	AlphaMin   float64
	AlphaMax   float64
	AlphaScale float64

	Border     Border
	Radius     int
	Padding    Padding
	TextShadow string

	HighlightBackground RGBA
	HighlightPadding    Padding
}

// StyleTable maps node types to their base style. Types without an entry
// use Default.
type StyleTable struct {
	Types   map[graph.NodeType]TypeStyle
	Default TypeStyle
}

// For returns the style for a node type.
func (t StyleTable) For(nt graph.NodeType) TypeStyle {
	if s, ok := t.Types[nt]; ok {
		return s
	}
	return t.Default
}

// Highlight overrides, shared by every type.
const (
	HighlightColor     = "#ffffff"
	HighlightWeight    = "bold"
	HighlightFontBonus = 3.0
	HighlightGlow      = "0 0 15px rgba(255,255,255,0.6)"
)

// HighlightBorder replaces a type's border on the highlighted node.
var HighlightBorder = Border{Width: 2, Color: RGBA{R: 255, G: 255, B: 255, A: 1}}

var bookStyle = TypeStyle{
	Glyph:      "📖",
	Color:      "#e1f5fe",
	FontWeight: "500",
	FontMin:    10,
	FontMax:    20,
	FontScale:  0.8,
	Background: RGBA{R: 0, G: 30, B: 60},
	AlphaMin:   0.4,
	AlphaMax:   0.8,
	AlphaScale: 0.04,
	Radius:     3,
	Padding:    Padding{Vertical: 2, Horizontal: 6},
	TextShadow: "0 1px 2px rgba(0,0,0,0.8)",

	HighlightBackground: RGBA{R: 79, G: 195, B: 247, A: 0.7},
	HighlightPadding:    Padding{Vertical: 4, Horizontal: 8},
}

var otherStyle = TypeStyle{
	Glyph:      "✍️",
	Color:      "#ffe082",
	FontWeight: "600",
	FontMin:    11,
	FontMax:    16,
	FontScale:  0.4,
	Background: RGBA{R: 50, G: 30, B: 0},
	AlphaMin:   0.5,
	AlphaMax:   0.85,
	AlphaScale: 0.035,
	Border:     Border{Width: 1, Color: RGBA{R: 255, G: 183, B: 77, A: 0.5}},
	Radius:     12,
	Padding:    Padding{Vertical: 3, Horizontal: 8},
	TextShadow: "0 1px 3px rgba(0,0,0,0.9)",

	HighlightBackground: RGBA{R: 255, G: 183, B: 77, A: 0.7},
	HighlightPadding:    Padding{Vertical: 4, Horizontal: 10},
}

func withGlyph(s TypeStyle, glyph string) TypeStyle {
	s.Glyph = glyph
	return s
}

// DefaultStyles returns the built-in table: books get their own bucket and
// every other type shares one bucket with a type-specific glyph.
func DefaultStyles() StyleTable {
	return StyleTable{
		Types: map[graph.NodeType]TypeStyle{
			graph.NodeTypeBook:      bookStyle,
			graph.NodeTypeAuthor:    otherStyle,
			graph.NodeTypeEra:       withGlyph(otherStyle, "⏳"),
			graph.NodeTypeMovement:  withGlyph(otherStyle, "🌊"),
			graph.NodeTypeCharacter: withGlyph(otherStyle, "👤"),
			graph.NodeTypePlot:      withGlyph(otherStyle, "🧩"),
		},
		Default: otherStyle,
	}
}

// Relation link colours.
const (
	LinkColorWrittenBy = "#ffb74d"
	LinkColorSimilarTo = "#4fc3f7"
	LinkColorDefault   = "#90a4ae"

	ParticleCount = 2
	ParticleWidth = 2.0
	ParticleSpeed = 0.005
	ParticleColor = "#ffffff"

	BackgroundColor = "#0a0a1a"
)

// LinkColor returns the stroke colour for a relation type.
func LinkColor(relation string) string {
	switch graph.RelationType(relation) {
	case graph.RelationWrittenBy:
		return LinkColorWrittenBy
	case graph.RelationSimilarTo:
		return LinkColorSimilarTo
	default:
		return LinkColorDefault
	}
}
