package visualization

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/dd0wney/cluso-topology/pkg/graph"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

type manualClock struct {
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time          { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// recordingRenderer captures every call the view makes.
type recordingRenderer struct {
	setGraphCalls int
	nodes         []graph.Node
	links         []graph.Link
	descriptors   map[string]Descriptor
	updateBatches [][]Descriptor
	linkUpdates   [][]LinkDescriptor
	physics       []PhysicsParams
	reheats       int
	moves         []CameraMove
	positions     map[string]Vec3
	resizes       [][2]int
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{
		descriptors: map[string]Descriptor{},
		positions:   map[string]Vec3{},
	}
}

func (r *recordingRenderer) SetGraph(nodes []graph.Node, links []graph.Link) {
	r.setGraphCalls++
	r.nodes = nodes
	r.links = links
}

func (r *recordingRenderer) UpdateNodes(ds []Descriptor) {
	r.updateBatches = append(r.updateBatches, ds)
	for _, d := range ds {
		r.descriptors[d.NodeID] = d
	}
}

func (r *recordingRenderer) UpdateLinks(ds []LinkDescriptor) {
	r.linkUpdates = append(r.linkUpdates, ds)
}

func (r *recordingRenderer) ApplyPhysics(p PhysicsParams) { r.physics = append(r.physics, p) }
func (r *recordingRenderer) Reheat()                      { r.reheats++ }
func (r *recordingRenderer) MoveCamera(m CameraMove)      { r.moves = append(r.moves, m) }
func (r *recordingRenderer) Resize(w, h int)              { r.resizes = append(r.resizes, [2]int{w, h}) }

func (r *recordingRenderer) NodePosition(id string) (Vec3, bool) {
	p, ok := r.positions[id]
	return p, ok
}

func (r *recordingRenderer) lastBatch() []Descriptor {
	if len(r.updateBatches) == 0 {
		return nil
	}
	return r.updateBatches[len(r.updateBatches)-1]
}

// sampleDataset is a small library: two books by one author, a similar-to
// link between the books and an era.
func sampleDataset() *graph.Dataset {
	return &graph.Dataset{
		Nodes: []graph.Node{
			{ID: "b1", Label: "Dune", Type: graph.NodeTypeBook, Properties: map[string]any{"year": 1965}},
			{ID: "b2", Label: "Children of Dune", Type: graph.NodeTypeBook},
			{ID: "a1", Label: "Frank Herbert", Type: graph.NodeTypeAuthor},
			{ID: "e1", Label: "New Wave", Type: graph.NodeTypeEra},
		},
		Links: []graph.Link{
			{Source: "b1", Target: "a1", Type: string(graph.RelationWrittenBy)},
			{Source: "b2", Target: "a1", Type: string(graph.RelationWrittenBy)},
			{Source: "b1", Target: "b2", Type: string(graph.RelationSimilarTo)},
			{Source: "b1", Target: "e1", Type: string(graph.RelationBelongsToEra)},
		},
	}
}
