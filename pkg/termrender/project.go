// Package termrender draws engine frames onto a character grid styled with
// lipgloss: links as coloured strokes with particles, nodes as labels built
// from their visual descriptors.
package termrender

import (
	"math"

	"github.com/dd0wney/cluso-topology/pkg/engine"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// cellAspect is the height/width ratio of a terminal cell.
const cellAspect = 2.0

// nearPlane hides points closer to the camera than this.
const nearPlane = 1.0

var worldUp = visualization.Vec3{Y: 1}

// Projector maps scene points to grid cells through a pinhole camera.
type Projector struct {
	eye     visualization.Vec3
	right   visualization.Vec3
	up      visualization.Vec3
	forward visualization.Vec3
	focal   float64
	cx, cy  float64
}

// NewProjector builds a projector for the camera pose and a grid of
// width x height cells.
func NewProjector(pose engine.CameraPose, width, height int) Projector {
	forward := normalize(pose.LookAt.Sub(pose.Position))
	if forward.Len() == 0 {
		forward = visualization.Vec3{Z: -1}
	}
	right := normalize(forward.Cross(worldUp))
	if right.Len() == 0 {
		// Looking straight up or down.
		right = visualization.Vec3{X: 1}
	}
	up := right.Cross(forward)

	return Projector{
		eye:     pose.Position,
		right:   right,
		up:      up,
		forward: forward,
		focal:   float64(height) / 2 / math.Tan(engine.FieldOfView/2),
		cx:      float64(width) / 2,
		cy:      float64(height) / 2,
	}
}

// Project returns the cell for p and its depth along the view axis. ok is
// false for points behind the near plane or with non-finite coordinates.
func (pr Projector) Project(p visualization.Vec3) (x, y int, depth float64, ok bool) {
	if !p.Finite() {
		return 0, 0, 0, false
	}
	rel := p.Sub(pr.eye)
	depth = rel.Dot(pr.forward)
	if depth < nearPlane {
		return 0, 0, depth, false
	}
	sx := pr.cx + rel.Dot(pr.right)*pr.focal*cellAspect/depth
	sy := pr.cy - rel.Dot(pr.up)*pr.focal/depth
	if math.Abs(sx) > 1e6 || math.Abs(sy) > 1e6 {
		return 0, 0, depth, false
	}
	return int(math.Floor(sx)), int(math.Floor(sy)), depth, true
}

func normalize(v visualization.Vec3) visualization.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return visualization.Vec3{}
	}
	return v.Scale(1 / l)
}
