package engine

import (
	"math"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// CircularLayout arranges nodes on a ring in the XY plane
type CircularLayout struct {
	config *LayoutConfig
}

// NewCircularLayout creates a new circular layout
func NewCircularLayout(config *LayoutConfig) *CircularLayout {
	if config == nil {
		config = &LayoutConfig{}
	}
	if config.Radius == 0 {
		config.Radius = 10
	}
	return &CircularLayout{config: config}
}

// ComputeLayout arranges nodes in a circle whose circumference grows with
// the node count.
func (cl *CircularLayout) ComputeLayout(nodes []graph.Node, _ []graph.Link) map[string]visualization.Vec3 {
	positions := make(map[string]visualization.Vec3, len(nodes))

	if len(nodes) == 0 {
		return positions
	}

	radius := cl.config.Radius * math.Sqrt(float64(len(nodes)))
	angleStep := 2 * math.Pi / float64(len(nodes))

	for i, n := range nodes {
		angle := float64(i) * angleStep
		positions[n.ID] = visualization.Vec3{
			X: radius * math.Cos(angle),
			Y: radius * math.Sin(angle),
		}
	}

	return positions
}
