package engine

import (
	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// HierarchicalLayout stacks nodes in levels along Y, following link
// direction from nodes that have no incoming links
type HierarchicalLayout struct {
	config *LayoutConfig
}

// NewHierarchicalLayout creates a new hierarchical layout
func NewHierarchicalLayout(config *LayoutConfig) *HierarchicalLayout {
	if config == nil {
		config = &LayoutConfig{}
	}
	if config.Radius == 0 {
		config.Radius = 10
	}
	if config.LevelGap == 0 {
		config.LevelGap = 40
	}
	return &HierarchicalLayout{config: config}
}

// ComputeLayout arranges nodes hierarchically
func (hl *HierarchicalLayout) ComputeLayout(nodes []graph.Node, links []graph.Link) map[string]visualization.Vec3 {
	positions := make(map[string]visualization.Vec3, len(nodes))

	if len(nodes) == 0 {
		return positions
	}

	known := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		known[n.ID] = true
	}
	outgoing := make(map[string][]string)
	hasIncoming := make(map[string]bool)
	for _, l := range links {
		if !known[l.Source] || !known[l.Target] || l.Source == l.Target {
			continue
		}
		outgoing[l.Source] = append(outgoing[l.Source], l.Target)
		hasIncoming[l.Target] = true
	}

	// Find root nodes (nodes with no incoming links)
	roots := make([]string, 0)
	for _, n := range nodes {
		if !hasIncoming[n.ID] {
			roots = append(roots, n.ID)
		}
	}
	if len(roots) == 0 {
		roots = []string{nodes[0].ID}
	}

	// Build levels using BFS
	levels := make([][]string, 0)
	visited := make(map[string]bool)
	for _, r := range roots {
		visited[r] = true
	}
	currentLevel := roots

	for len(currentLevel) > 0 {
		levels = append(levels, currentLevel)
		nextLevel := make([]string, 0)

		for _, id := range currentLevel {
			for _, to := range outgoing[id] {
				if !visited[to] {
					nextLevel = append(nextLevel, to)
					visited[to] = true
				}
			}
		}

		currentLevel = nextLevel
	}

	// Cycles unreachable from a root go to the last level
	for _, n := range nodes {
		if !visited[n.ID] {
			levels[len(levels)-1] = append(levels[len(levels)-1], n.ID)
		}
	}

	// Centre the stack on the origin
	top := float64(len(levels)-1) * hl.config.LevelGap / 2
	for levelIdx, level := range levels {
		y := top - float64(levelIdx)*hl.config.LevelGap
		width := float64(len(level)-1) * hl.config.Radius * 2
		for nodeIdx, id := range level {
			positions[id] = visualization.Vec3{
				X: float64(nodeIdx)*hl.config.Radius*2 - width/2,
				Y: y,
			}
		}
	}

	return positions
}
