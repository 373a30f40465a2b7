package visualization

import "github.com/dd0wney/cluso-topology/pkg/graph"

// ComputeDegrees counts, for every node, the links where it is the source
// plus the links where it is the target. A self-link therefore counts twice.
// Endpoints that do not name a node in nodes are ignored, using the same
// exact-id rule for source and target. Runs in O(len(nodes) + len(links)).
func ComputeDegrees(nodes []graph.Node, links []graph.Link) map[string]int {
	degrees := make(map[string]int, len(nodes))
	for _, n := range nodes {
		degrees[n.ID] = 0
	}

	for _, l := range links {
		if _, ok := degrees[l.Source]; ok {
			degrees[l.Source]++
		}
		if _, ok := degrees[l.Target]; ok {
			degrees[l.Target]++
		}
	}

	return degrees
}
