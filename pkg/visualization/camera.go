package visualization

import (
	"math"
	"time"
)

// Vec3 is a point or direction in scene space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3        { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3        { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(k float64) Vec3   { return Vec3{v.X * k, v.Y * k, v.Z * k} }
func (v Vec3) Dot(o Vec3) float64     { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Len() float64           { return math.Sqrt(v.Dot(v)) }

// Lerp interpolates from v to o; t=0 gives v, t=1 gives o.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return v.Add(o.Sub(v).Scale(t))
}

// Cross returns v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Finite reports whether every component is a finite number.
func (v Vec3) Finite() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// CameraMove is a fly-to command: the renderer animates from its current
// pose to Position looking at LookAt over Duration.
type CameraMove struct {
	Position Vec3          `json:"position"`
	LookAt   Vec3          `json:"look_at"`
	Duration time.Duration `json:"duration"`
}

// Stand-off distances and transition times.
const (
	ClickStandOff = 100.0
	ClickDuration = 1000 * time.Millisecond
	FocusStandOff = 150.0
	FocusDuration = 1500 * time.Millisecond
)

// fallbackAxis is the direction used when the target gives no ray to follow.
var fallbackAxis = Vec3{Z: 1}

// Frame places the camera on the ray from the origin through target, standOff
// units beyond it: position = target * (1 + standOff/|target|). A target at
// the origin, or one with non-finite coordinates, has no usable ray; the
// camera then sits standOff along +Z looking at the origin.
func Frame(target Vec3, standOff float64, d time.Duration) CameraMove {
	if !finite(standOff) || standOff < 0 {
		standOff = 0
	}

	dist := target.Len()
	if !target.Finite() || !finite(dist) || dist == 0 {
		return CameraMove{
			Position: fallbackAxis.Scale(standOff),
			LookAt:   Vec3{},
			Duration: d,
		}
	}

	ratio := 1 + standOff/dist
	return CameraMove{
		Position: target.Scale(ratio),
		LookAt:   target,
		Duration: d,
	}
}
