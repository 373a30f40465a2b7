package visualization

import (
	"math"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/validation"
)

// Descriptor is the declarative appearance of one node label. A drawing
// backend turns it into an on-screen primitive; nothing here draws.
type Descriptor struct {
	NodeID      string         `json:"node_id"`
	Type        graph.NodeType `json:"type"`
	Glyph       string         `json:"glyph"`
	Text        string         `json:"text"`
	FontSize    float64        `json:"font_size"`
	FontWeight  string         `json:"font_weight"`
	Color       string         `json:"color"`
	Background  RGBA           `json:"background"`
	Border      Border         `json:"border"`
	Radius      int            `json:"radius"`
	Padding     Padding        `json:"padding"`
	TextShadow  string         `json:"text_shadow"`
	Glow        string         `json:"glow,omitempty"`
	Highlighted bool           `json:"highlighted"`
}

// LinkDescriptor is the declarative appearance of one link.
type LinkDescriptor struct {
	Source        string  `json:"source"`
	Target        string  `json:"target"`
	Type          string  `json:"type"`
	Color         string  `json:"color"`
	Width         float64 `json:"width"`
	Opacity       float64 `json:"opacity"`
	Particles     int     `json:"particles"`
	ParticleWidth float64 `json:"particle_width"`
	ParticleSpeed float64 `json:"particle_speed"`
	ParticleColor string  `json:"particle_color"`
}

// Encoder turns (node, degree, highlighted) into a Descriptor using a style
// table. It holds no state besides the table.
type Encoder struct {
	styles StyleTable
}

// NewEncoder creates an encoder over the given table.
func NewEncoder(styles StyleTable) *Encoder {
	return &Encoder{styles: styles}
}

// Encode uses the built-in style table.
func Encode(node graph.Node, degree int, highlighted bool) Descriptor {
	return defaultEncoder.Encode(node, degree, highlighted)
}

var defaultEncoder = NewEncoder(DefaultStyles())

// Encode computes the descriptor for a node. Equal inputs always yield equal
// descriptors.
func (e *Encoder) Encode(node graph.Node, degree int, highlighted bool) Descriptor {
	if degree < 0 {
		degree = 0
	}
	st := e.styles.For(node.Type)
	deg := float64(degree)

	fontSize := round3(validation.Clamp(st.FontMin+deg*st.FontScale, st.FontMin, st.FontMax))
	alpha := round3(validation.Clamp(st.AlphaMin+deg*st.AlphaScale, st.AlphaMin, st.AlphaMax))

	d := Descriptor{
		NodeID:     node.ID,
		Type:       node.Type,
		Glyph:      st.Glyph,
		Text:       node.Label,
		FontSize:   fontSize,
		FontWeight: st.FontWeight,
		Color:      st.Color,
		Background: st.Background.WithAlpha(alpha),
		Border:     st.Border,
		Radius:     st.Radius,
		Padding:    st.Padding,
		TextShadow: st.TextShadow,
	}

	if highlighted {
		d.Highlighted = true
		d.Color = HighlightColor
		d.FontWeight = HighlightWeight
		d.FontSize = fontSize + HighlightFontBonus
		d.Background = st.HighlightBackground
		d.Border = HighlightBorder
		d.Padding = st.HighlightPadding
		d.Glow = HighlightGlow
	}

	return d
}

// EncodeLink computes a link's appearance from its relation type and the
// current settings.
func EncodeLink(link graph.Link, s Settings) LinkDescriptor {
	return LinkDescriptor{
		Source:        link.Source,
		Target:        link.Target,
		Type:          link.Type,
		Color:         LinkColor(link.Type),
		Width:         s.LinkWidth,
		Opacity:       s.LinkOpacity,
		Particles:     ParticleCount,
		ParticleWidth: ParticleWidth,
		ParticleSpeed: ParticleSpeed,
		ParticleColor: ParticleColor,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
