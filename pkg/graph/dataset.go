package graph

import "maps"

// Node is a graph vertex as served by the backend. Layout coordinates are
// never stored here; the render engine keeps them in its own shadow state.
type Node struct {
	ID         string         `json:"id" yaml:"id"`
	Label      string         `json:"label" yaml:"label"`
	Type       NodeType       `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties" yaml:"properties,omitempty"`
}

// Link is a directed relationship between two node ids.
type Link struct {
	Source     string         `json:"source" yaml:"source"`
	Target     string         `json:"target" yaml:"target"`
	Type       string         `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Dataset is an immutable snapshot of nodes and links. A reload produces a
// new *Dataset; callers must not mutate one after handing it to a view.
type Dataset struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Links []Link `json:"links" yaml:"links"`
}

// Clone returns a deep copy so the receiver of the copy may attach or
// mutate fields without affecting the caller's snapshot.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return &Dataset{}
	}
	out := &Dataset{
		Nodes: make([]Node, len(d.Nodes)),
		Links: make([]Link, len(d.Links)),
	}
	for i, n := range d.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, l := range d.Links {
		out.Links[i] = l.Clone()
	}
	return out
}

// Clone copies the node including its property map.
func (n Node) Clone() Node {
	n.Properties = maps.Clone(n.Properties)
	return n
}

// Clone copies the link including its property map.
func (l Link) Clone() Link {
	l.Properties = maps.Clone(l.Properties)
	return l
}

// Node returns the node with the given id.
func (d *Dataset) Node(id string) (Node, bool) {
	if d == nil {
		return Node{}, false
	}
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// DanglingLinks returns the links whose source or target is not a node of
// the dataset. Such links are passed through to the renderer unchanged.
func (d *Dataset) DanglingLinks() []Link {
	if d == nil {
		return nil
	}
	ids := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = struct{}{}
	}
	var out []Link
	for _, l := range d.Links {
		_, okS := ids[l.Source]
		_, okT := ids[l.Target]
		if !okS || !okT {
			out = append(out, l)
		}
	}
	return out
}
