package visualization

import (
	"maps"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/metrics"
)

// Renderer is the force-directed engine the view configures and drives. It
// owns node positions in its own shadow state keyed by node id; the view
// only ever reads them back through NodePosition.
type Renderer interface {
	// SetGraph replaces the live node and link collections. The slices are
	// private copies the renderer may keep.
	SetGraph(nodes []graph.Node, links []graph.Link)
	// UpdateNodes replaces the descriptors of the listed nodes only.
	UpdateNodes(descriptors []Descriptor)
	// UpdateLinks replaces every link descriptor.
	UpdateLinks(descriptors []LinkDescriptor)
	ApplyPhysics(p PhysicsParams)
	Reheat()
	MoveCamera(m CameraMove)
	NodePosition(id string) (Vec3, bool)
	Resize(width, height int)
}

type encodeInput struct {
	degree      int
	highlighted bool
}

// Synchronizer pushes dataset snapshots into a Renderer and keeps node
// descriptors current. After a full sync it re-encodes only nodes whose
// (degree, highlighted) input changed.
type Synchronizer struct {
	renderer Renderer
	encoder  *Encoder
	logger   logging.Logger
	metrics  *metrics.Registry

	current   *graph.Dataset
	nodes     map[string]graph.Node
	order     []string
	degrees   map[string]int
	encoded   map[string]encodeInput
	highlight string
}

// NewSynchronizer creates a synchronizer for r.
func NewSynchronizer(r Renderer, enc *Encoder, logger logging.Logger, reg *metrics.Registry) *Synchronizer {
	if enc == nil {
		enc = defaultEncoder
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Synchronizer{
		renderer: r,
		encoder:  enc,
		logger:   logger.With(logging.Component("sync")),
		metrics:  reg,
		nodes:    map[string]graph.Node{},
		degrees:  map[string]int{},
		encoded:  map[string]encodeInput{},
	}
}

// Sync hands ds to the renderer unless it is the snapshot already shown.
// The renderer receives its own deep copy, degrees are recomputed and every
// node is re-encoded. It reports whether anything was pushed.
func (s *Synchronizer) Sync(ds *graph.Dataset, settings Settings) bool {
	if ds == s.current {
		s.metrics.RecordDatasetSync(false, 0, 0, 0)
		return false
	}
	s.current = ds

	clone := ds.Clone()
	s.nodes = make(map[string]graph.Node, len(clone.Nodes))
	s.order = s.order[:0]
	for _, n := range clone.Nodes {
		if _, dup := s.nodes[n.ID]; dup {
			s.logger.Warn("duplicate node id in dataset", logging.NodeID(n.ID))
			continue
		}
		s.nodes[n.ID] = n
		s.order = append(s.order, n.ID)
	}
	s.degrees = ComputeDegrees(clone.Nodes, clone.Links)

	dangling := clone.DanglingLinks()
	for _, l := range dangling {
		s.logger.Warn("link references a missing node",
			logging.String("source", l.Source),
			logging.String("target", l.Target),
			logging.String("type", l.Type),
		)
	}

	pushed := ds.Clone()
	s.renderer.SetGraph(pushed.Nodes, pushed.Links)
	s.renderer.UpdateLinks(s.encodeLinks(settings))

	s.encoded = make(map[string]encodeInput, len(s.order))
	if _, ok := s.nodes[s.highlight]; !ok {
		s.highlight = ""
	}
	descriptors := make([]Descriptor, 0, len(s.order))
	for _, id := range s.order {
		in := encodeInput{degree: s.degrees[id], highlighted: id == s.highlight}
		descriptors = append(descriptors, s.encoder.Encode(s.nodes[id], in.degree, in.highlighted))
		s.encoded[id] = in
	}
	s.renderer.UpdateNodes(descriptors)

	s.metrics.RecordDatasetSync(true, len(s.order), len(clone.Links), len(dangling))
	s.metrics.RecordEncodes("full", len(descriptors))
	s.logger.Info("dataset synced",
		logging.Int("nodes", len(s.order)),
		logging.Int("links", len(clone.Links)),
		logging.Int("dangling", len(dangling)),
	)
	return true
}

// Refresh sets the highlighted node (empty for none) and re-encodes only
// the nodes whose inputs changed. It returns how many were re-encoded.
func (s *Synchronizer) Refresh(highlight string) int {
	if _, ok := s.nodes[highlight]; !ok {
		highlight = ""
	}
	s.highlight = highlight

	var changed []Descriptor
	for _, id := range s.order {
		in := encodeInput{degree: s.degrees[id], highlighted: id == highlight}
		if prev, ok := s.encoded[id]; ok && prev == in {
			continue
		}
		changed = append(changed, s.encoder.Encode(s.nodes[id], in.degree, in.highlighted))
		s.encoded[id] = in
	}

	if len(changed) > 0 {
		s.renderer.UpdateNodes(changed)
		s.metrics.RecordEncodes("targeted", len(changed))
	}
	return len(changed)
}

// RestyleLinks re-encodes every link with new stroke settings.
func (s *Synchronizer) RestyleLinks(settings Settings) {
	if s.current == nil {
		return
	}
	s.renderer.UpdateLinks(s.encodeLinks(settings))
}

func (s *Synchronizer) encodeLinks(settings Settings) []LinkDescriptor {
	if s.current == nil {
		return nil
	}
	out := make([]LinkDescriptor, len(s.current.Links))
	for i, l := range s.current.Links {
		out[i] = EncodeLink(l, settings)
	}
	return out
}

// Dataset returns the snapshot last synced.
func (s *Synchronizer) Dataset() *graph.Dataset {
	return s.current
}

// Node returns a node of the current snapshot.
func (s *Synchronizer) Node(id string) (graph.Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Degree returns the current degree of id.
func (s *Synchronizer) Degree(id string) int {
	return s.degrees[id]
}

// Degrees returns a copy of the current degree map.
func (s *Synchronizer) Degrees() map[string]int {
	return maps.Clone(s.degrees)
}

// Descriptor encodes id with its current inputs.
func (s *Synchronizer) Descriptor(id string) (Descriptor, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Descriptor{}, false
	}
	return s.encoder.Encode(n, s.degrees[id], id == s.highlight), true
}

// Highlighted returns the node currently encoded as highlighted.
func (s *Synchronizer) Highlighted() string {
	return s.highlight
}
