package session

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/logging"
)

// Property is one displayed key/value of the detail panel.
type Property struct {
	Key   string
	Value string
}

// Detail is the content of the detail panel.
type Detail struct {
	Node       graph.Node
	Properties []Property
	Neighbors  []graph.Neighbor
	Loading    bool
	Err        error
}

// hiddenProperties are shown elsewhere in the panel.
var hiddenProperties = []string{"id", "title", "name"}

// DetailProperties lists the node's properties sorted by key, without the
// id, title and name keys and without nil values.
func DetailProperties(n graph.Node) []Property {
	out := make([]Property, 0, len(n.Properties))
	for k, v := range n.Properties {
		if v == nil || slices.Contains(hiddenProperties, k) {
			continue
		}
		out = append(out, Property{Key: k, Value: formatValue(v)})
	}
	slices.SortFunc(out, func(a, b Property) int { return strings.Compare(a.Key, b.Key) })
	return out
}

func formatValue(v any) string {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = formatValue(e)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(x, ",")
	default:
		return fmt.Sprint(x)
	}
}

// Detail returns the open detail panel, or nil.
func (s *Session) Detail() *Detail {
	return s.detail
}

// BeginDetail opens the detail panel for n with its neighbours pending.
func (s *Session) BeginDetail(n graph.Node) {
	s.detail = &Detail{
		Node:       n,
		Properties: DetailProperties(n),
		Loading:    true,
	}
}

// ApplyNeighbors fills the neighbour list of the panel opened for id. A
// result for a node that is no longer shown is dropped. A failed lookup
// leaves the list empty.
func (s *Session) ApplyNeighbors(id string, nbrs []graph.Neighbor, err error) bool {
	if s.detail == nil || s.detail.Node.ID != id {
		return false
	}
	s.detail.Loading = false
	if err != nil {
		s.logger.Warn("neighbor lookup failed", logging.NodeID(id), logging.Error(err))
		s.detail.Err = err
		s.detail.Neighbors = nil
		return true
	}
	s.detail.Err = nil
	s.detail.Neighbors = nbrs
	return true
}

// OpenDetail opens the panel for n and loads its neighbours.
func (s *Session) OpenDetail(ctx context.Context, n graph.Node) *Detail {
	s.BeginDetail(n)
	s.LoadNeighbors(ctx, n.ID)
	return s.detail
}

// LoadNeighbors fetches and applies the neighbours of id.
func (s *Session) LoadNeighbors(ctx context.Context, id string) {
	nbrs, err := s.backend.Neighbors(ctx, id)
	s.ApplyNeighbors(id, nbrs, err)
}

// CloseDetail closes the panel and clears highlight and focus.
func (s *Session) CloseDetail() {
	s.detail = nil
	s.view.ClearSelection()
}

// Direction renders a neighbour's direction relative to the shown node.
func Direction(n graph.Neighbor) string {
	if n.IsOutgoing {
		return "→"
	}
	return "←"
}
