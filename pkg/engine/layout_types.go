package engine

import (
	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// LayoutConfig configures the initial placement of new bodies.
type LayoutConfig struct {
	Radius   float64 // Base radius of the seed shape
	LevelGap float64 // Distance between levels of a hierarchical seed
}

// Layout computes starting positions for a node set. The simulation then
// relaxes them; a layout only decides where bodies appear.
type Layout interface {
	ComputeLayout(nodes []graph.Node, links []graph.Link) map[string]visualization.Vec3
}

// LayoutByName returns the named seed layout: "spiral" (default),
// "circular" or "hierarchical".
func LayoutByName(name string, config *LayoutConfig) (Layout, bool) {
	switch name {
	case "", "spiral":
		return NewSpiralLayout(config), true
	case "circular":
		return NewCircularLayout(config), true
	case "hierarchical":
		return NewHierarchicalLayout(config), true
	default:
		return nil, false
	}
}

// LayoutNames lists the accepted LayoutByName values.
var LayoutNames = []string{"spiral", "circular", "hierarchical"}
