package engine

import (
	"math"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

var (
	initialAngleRoll = math.Pi * (3 - math.Sqrt(5))
	initialAngleYaw  = math.Pi * 20 / (9 + math.Sqrt(221))
)

// SpiralLayout places node i on a 3D phyllotaxis spiral of radius
// Radius*cbrt(0.5+i), which spreads any number of nodes evenly without
// overlaps.
type SpiralLayout struct {
	config *LayoutConfig
}

// NewSpiralLayout creates a new spiral layout
func NewSpiralLayout(config *LayoutConfig) *SpiralLayout {
	if config == nil {
		config = &LayoutConfig{}
	}
	if config.Radius == 0 {
		config.Radius = 10
	}
	return &SpiralLayout{config: config}
}

// ComputeLayout places nodes in list order.
func (sl *SpiralLayout) ComputeLayout(nodes []graph.Node, _ []graph.Link) map[string]visualization.Vec3 {
	positions := make(map[string]visualization.Vec3, len(nodes))
	for i, n := range nodes {
		positions[n.ID] = spiralPoint(i, sl.config.Radius)
	}
	return positions
}

func spiralPoint(i int, base float64) visualization.Vec3 {
	radius := base * math.Cbrt(0.5+float64(i))
	roll := float64(i) * initialAngleRoll
	yaw := float64(i) * initialAngleYaw
	return visualization.Vec3{
		X: radius * math.Sin(roll) * math.Cos(yaw),
		Y: radius * math.Cos(roll),
		Z: radius * math.Sin(roll) * math.Sin(yaw),
	}
}
