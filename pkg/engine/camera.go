package engine

import (
	"math"
	"time"

	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// CameraPose is where the camera sits and what it looks at.
type CameraPose struct {
	Position visualization.Vec3 `json:"position"`
	LookAt   visualization.Vec3 `json:"look_at"`
}

// fitPadding is the margin kept around the bounding sphere by FitCamera.
const fitPadding = 10.0

// FieldOfView is the vertical field of view in radians.
var FieldOfView = 40 * math.Pi / 180

// cameraTween animates between two poses.
type cameraTween struct {
	from, to CameraPose
	start    time.Time
	duration time.Duration
}

func (t cameraTween) at(now time.Time) CameraPose {
	if t.duration <= 0 || !now.Before(t.start.Add(t.duration)) {
		return t.to
	}
	p := float64(now.Sub(t.start)) / float64(t.duration)
	if p < 0 {
		p = 0
	}
	p = easeQuadOut(p)
	return CameraPose{
		Position: t.from.Position.Lerp(t.to.Position, p),
		LookAt:   t.from.LookAt.Lerp(t.to.LookAt, p),
	}
}

func (t cameraTween) done(now time.Time) bool {
	return !now.Before(t.start.Add(t.duration))
}

func easeQuadOut(p float64) float64 {
	return p * (2 - p)
}

// initialDistance is the default camera distance for n nodes.
func initialDistance(n int) float64 {
	return 170 * math.Cbrt(float64(max(n, 1)))
}

// bounds returns the min and max corners of the given positions.
func bounds(points []visualization.Vec3) (lo, hi visualization.Vec3) {
	if len(points) == 0 {
		return
	}
	lo, hi = points[0], points[0]
	for _, p := range points[1:] {
		lo.X = math.Min(lo.X, p.X)
		lo.Y = math.Min(lo.Y, p.Y)
		lo.Z = math.Min(lo.Z, p.Z)
		hi.X = math.Max(hi.X, p.X)
		hi.Y = math.Max(hi.Y, p.Y)
		hi.Z = math.Max(hi.Z, p.Z)
	}
	return lo, hi
}

// fitPose frames the bounding sphere of points from +Z.
func fitPose(points []visualization.Vec3) CameraPose {
	if len(points) == 0 {
		return CameraPose{Position: visualization.Vec3{Z: initialDistance(0)}}
	}
	lo, hi := bounds(points)
	center := lo.Add(hi).Scale(0.5)
	radius := hi.Sub(lo).Len()/2 + fitPadding
	dist := radius / math.Tan(FieldOfView/2)
	return CameraPose{
		Position: center.Add(visualization.Vec3{Z: dist}),
		LookAt:   center,
	}
}
