package visualization

import (
	"math"

	"github.com/dd0wney/cluso-topology/pkg/validation"
)

// Settings are the user-tunable layout inputs.
type Settings struct {
	LinkWidth   float64 `json:"link_width" yaml:"link_width" toml:"link_width" validate:"gt=0"`
	LinkOpacity float64 `json:"link_opacity" yaml:"link_opacity" toml:"link_opacity" validate:"gte=0.1,lte=1"`
	NodeSpread  int     `json:"node_spread" yaml:"node_spread" toml:"node_spread" validate:"gt=0"`
}

// DefaultSettings returns the initial slider positions.
func DefaultSettings() Settings {
	return Settings{
		LinkWidth:   3,
		LinkOpacity: 0.7,
		NodeSpread:  200,
	}
}

// Validate reports the first invalid field as "Field: reason".
func (s Settings) Validate() error {
	return validation.Struct(s)
}

// SliderRange is the UI range of one setting.
type SliderRange struct {
	Min  float64
	Max  float64
	Step float64
}

var (
	LinkWidthRange   = SliderRange{Min: 0.5, Max: 5, Step: 0.5}
	LinkOpacityRange = SliderRange{Min: 0.1, Max: 1, Step: 0.1}
	NodeSpreadRange  = SliderRange{Min: 50, Max: 400, Step: 25}
)

// Nudge moves v by steps slider increments, snapping to the step grid
// anchored at Min and staying inside [Min, Max].
func (r SliderRange) Nudge(v float64, steps int) float64 {
	n := math.Round((v - r.Min) / r.Step)
	n += float64(steps)
	out := r.Min + n*r.Step
	out = validation.Clamp(out, r.Min, r.Max)
	return math.Round(out*1000) / 1000
}

// PhysicsParams are the simulation and stroke values derived from Settings.
type PhysicsParams struct {
	VelocityDecay  float64 `json:"velocity_decay"`
	ChargeStrength float64 `json:"charge_strength"`
	LinkDistance   float64 `json:"link_distance"`
	LinkWidth      float64 `json:"link_width"`
	LinkOpacity    float64 `json:"link_opacity"`
}

// MapPhysics translates settings into simulation parameters:
//
//	velocity decay = clamp(0.1, 1 - spread/500, 1)
//	charge         = -spread * 3
//	link distance  = spread * 0.5
//
// Width and opacity pass through unchanged.
func MapPhysics(s Settings) PhysicsParams {
	spread := float64(s.NodeSpread)
	return PhysicsParams{
		VelocityDecay:  validation.Clamp(1-spread/500, 0.1, 1.0),
		ChargeStrength: -spread * 3,
		LinkDistance:   spread * 0.5,
		LinkWidth:      s.LinkWidth,
		LinkOpacity:    s.LinkOpacity,
	}
}

// NeedsReheat reports whether moving from prev to next changes the forces.
// Width and opacity are cosmetic and never require a reheat.
func NeedsReheat(prev, next Settings) bool {
	return prev.NodeSpread != next.NodeSpread
}

// StrokeChanged reports whether link width or opacity differ.
func StrokeChanged(prev, next Settings) bool {
	return prev.LinkWidth != next.LinkWidth || prev.LinkOpacity != next.LinkOpacity
}
