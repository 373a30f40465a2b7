package engine

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/metrics"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testGraph() ([]graph.Node, []graph.Link) {
	nodes := []graph.Node{
		{ID: "b1", Label: "Dune", Type: graph.NodeTypeBook},
		{ID: "b2", Label: "Children of Dune", Type: graph.NodeTypeBook},
		{ID: "a1", Label: "Frank Herbert", Type: graph.NodeTypeAuthor},
		{ID: "e1", Label: "New Wave", Type: graph.NodeTypeEra},
	}
	links := []graph.Link{
		{Source: "b1", Target: "a1", Type: "WRITTEN_BY"},
		{Source: "b2", Target: "a1", Type: "WRITTEN_BY"},
		{Source: "b1", Target: "b2", Type: "SIMILAR_TO"},
		{Source: "b1", Target: "e1", Type: "BELONGS_TO_ERA"},
	}
	return nodes, links
}

func TestSpiralLayout(t *testing.T) {
	nodes, links := testGraph()
	pos := NewSpiralLayout(nil).ComputeLayout(nodes, links)
	require.Len(t, pos, 4)

	assert.InDelta(t, 10*math.Cbrt(0.5), pos["b1"].Len(), 1e-9)
	assert.InDelta(t, 10*math.Cbrt(3.5), pos["e1"].Len(), 1e-9)

	seen := make(map[visualization.Vec3]bool)
	for _, p := range pos {
		assert.False(t, seen[p], "positions must be distinct")
		seen[p] = true
	}
}

func TestCircularLayout(t *testing.T) {
	nodes, links := testGraph()
	pos := NewCircularLayout(&LayoutConfig{Radius: 5}).ComputeLayout(nodes, links)
	for id, p := range pos {
		assert.InDelta(t, 10.0, p.Len(), 1e-9, id)
		assert.Zero(t, p.Z)
	}
	assert.Empty(t, NewCircularLayout(nil).ComputeLayout(nil, nil))
}

func TestHierarchicalLayout(t *testing.T) {
	nodes, links := testGraph()
	pos := NewHierarchicalLayout(nil).ComputeLayout(nodes, links)
	require.Len(t, pos, 4)

	assert.Equal(t, 20.0, pos["b1"].Y)
	for _, id := range []string{"a1", "b2", "e1"} {
		assert.Equal(t, -20.0, pos[id].Y, id)
	}
	assert.Equal(t, 0.0, pos["b1"].X)
	assert.Equal(t, -20.0, pos["a1"].X)
	assert.Equal(t, 20.0, pos["e1"].X)
}

func TestHierarchicalLayoutCycle(t *testing.T) {
	nodes := []graph.Node{{ID: "x"}, {ID: "y"}}
	links := []graph.Link{{Source: "x", Target: "y"}, {Source: "y", Target: "x"}}
	pos := NewHierarchicalLayout(nil).ComputeLayout(nodes, links)
	assert.Len(t, pos, 2)
}

func TestLayoutByName(t *testing.T) {
	for _, name := range LayoutNames {
		l, ok := LayoutByName(name, nil)
		assert.True(t, ok, name)
		assert.NotNil(t, l)
	}
	l, ok := LayoutByName("", nil)
	assert.True(t, ok)
	assert.IsType(t, &SpiralLayout{}, l)

	_, ok = LayoutByName("radial", nil)
	assert.False(t, ok)
}

func TestSetGraphSeedsAndKeepsPositions(t *testing.T) {
	e := New()
	nodes, links := testGraph()
	e.SetGraph(nodes, links)

	p, ok := e.NodePosition("b1")
	require.True(t, ok)
	assert.InDelta(t, 10*math.Cbrt(0.5), p.Len(), 1e-9)
	_, ok = e.NodePosition("ghost")
	assert.False(t, ok)

	for i := 0; i < 10; i++ {
		e.Step()
	}
	moved, _ := e.NodePosition("a1")

	// Reload with one more node: survivors keep their place.
	nodes = append(nodes, graph.Node{ID: "m1", Type: graph.NodeTypeMovement})
	e.SetGraph(nodes, links)
	again, _ := e.NodePosition("a1")
	assert.Equal(t, moved, again)
	_, ok = e.NodePosition("m1")
	assert.True(t, ok)
	assert.Equal(t, 1.0, e.Alpha())
}

func TestSetGraphCountsDanglingLinks(t *testing.T) {
	e := New()
	nodes, links := testGraph()
	links = append(links, graph.Link{Source: "b1", Target: "ghost", Type: "WRITTEN_BY"})
	e.SetGraph(nodes, links)
	assert.Equal(t, 1, e.DanglingLinks())
	n, l := e.Counts()
	assert.Equal(t, len(nodes), n)
	assert.Equal(t, len(links), l)

	e.UpdateLinks([]visualization.LinkDescriptor{
		{Source: "b1", Target: "a1"},
		{Source: "b1", Target: "ghost"},
	})
	f := e.Snapshot(time.Now())
	assert.Len(t, f.Links, 1)

	// Forces still run with a dangling link present.
	for i := 0; i < 5; i++ {
		require.True(t, e.Step())
	}
}

func TestSimulationCools(t *testing.T) {
	reg := metrics.NewRegistry()
	e := New(WithMetrics(reg))
	assert.True(t, e.Settled(), "an empty engine starts cold")
	assert.False(t, e.Step())

	nodes, links := testGraph()
	e.SetGraph(nodes, links)
	assert.False(t, e.Settled())

	steps := 0
	for e.Step() {
		steps++
		require.Less(t, steps, 1000)
	}
	assert.InDelta(t, 300, steps, 2)
	assert.True(t, e.Settled())
	assert.Equal(t, uint64(steps), e.Ticks())

	for _, n := range nodes {
		p, _ := e.NodePosition(n.ID)
		assert.True(t, p.Finite(), n.ID)
	}

	e.Reheat()
	assert.False(t, e.Settled())
	assert.True(t, e.Step())
}

func TestCenterForceKeepsCentroidAtOrigin(t *testing.T) {
	e := New()
	nodes, links := testGraph()
	e.SetGraph(nodes, links)
	for i := 0; i < 50; i++ {
		e.Step()
	}
	var sum visualization.Vec3
	for _, n := range nodes {
		p, _ := e.NodePosition(n.ID)
		sum = sum.Add(p)
	}
	assert.InDelta(t, 0, sum.Len(), 1e-6)
}

func TestChargeRepelsUnlinkedBodies(t *testing.T) {
	e := New()
	nodes := []graph.Node{{ID: "x"}, {ID: "y"}}
	e.SetGraph(nodes, nil)

	px, _ := e.NodePosition("x")
	py, _ := e.NodePosition("y")
	before := px.Sub(py).Len()

	for i := 0; i < 20; i++ {
		e.Step()
	}
	px, _ = e.NodePosition("x")
	py, _ = e.NodePosition("y")
	assert.Greater(t, px.Sub(py).Len(), before)
}

func TestLinkForcePullsTowardDistance(t *testing.T) {
	e := New()
	e.ApplyPhysics(visualization.PhysicsParams{VelocityDecay: 0.4, LinkDistance: 30})
	nodes := []graph.Node{{ID: "x"}, {ID: "y"}}
	e.SetGraph(nodes, []graph.Link{{Source: "x", Target: "y"}})

	for e.Step() {
	}
	px, _ := e.NodePosition("x")
	py, _ := e.NodePosition("y")
	assert.InDelta(t, 30, px.Sub(py).Len(), 1)
}

func TestSelfLinkExertsNoForce(t *testing.T) {
	e := New()
	e.ApplyPhysics(visualization.PhysicsParams{VelocityDecay: 0.4, LinkDistance: 30})
	e.SetGraph([]graph.Node{{ID: "x"}}, []graph.Link{{Source: "x", Target: "x"}})
	require.True(t, e.Step())
	p, _ := e.NodePosition("x")
	assert.Equal(t, visualization.Vec3{}, p)
}

func TestCameraTween(t *testing.T) {
	clock := newStepClock()
	e := New(WithClock(clock))
	nodes, links := testGraph()
	e.SetGraph(nodes, links)

	start := e.Camera(clock.Now())
	assert.InDelta(t, 170*math.Cbrt(4), start.Position.Z, 1e-9)

	target := visualization.CameraMove{
		Position: visualization.Vec3{X: 100},
		LookAt:   visualization.Vec3{X: 10},
		Duration: time.Second,
	}
	e.MoveCamera(target)
	assert.True(t, e.CameraMoving(clock.Now()))

	clock.Advance(500 * time.Millisecond)
	mid := e.Camera(clock.Now())
	want := start.Position.Lerp(target.Position, 0.75)
	assert.InDelta(t, want.X, mid.Position.X, 1e-9)
	assert.InDelta(t, want.Z, mid.Position.Z, 1e-9)

	clock.Advance(500 * time.Millisecond)
	assert.False(t, e.CameraMoving(clock.Now()))
	end := e.Camera(clock.Now())
	assert.Equal(t, target.Position, end.Position)
	assert.Equal(t, target.LookAt, end.LookAt)

	// A user-placed camera is not reset by reloads.
	e.SetGraph(nodes, links)
	assert.Equal(t, target.Position, e.Camera(clock.Now()).Position)
}

func TestFitCamera(t *testing.T) {
	e := New(WithLayout(NewCircularLayout(&LayoutConfig{Radius: 10})))
	e.SetGraph([]graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}, nil)

	m := e.FitCamera(time.Second)
	assert.InDelta(t, 0, m.LookAt.Len(), 1e-9)
	assert.Greater(t, m.Position.Z, 20.0)
	assert.Equal(t, time.Second, m.Duration)

	empty := New().FitCamera(0)
	assert.True(t, empty.Position.Finite())
}

func TestSnapshotParticles(t *testing.T) {
	e := New()
	nodes, links := testGraph()
	e.SetGraph(nodes, links)
	e.UpdateNodes([]visualization.Descriptor{visualization.Encode(nodes[0], 3, false)})
	e.UpdateLinks([]visualization.LinkDescriptor{
		visualization.EncodeLink(links[0], visualization.DefaultSettings()),
	})
	e.Resize(80, 24)

	f := e.Snapshot(time.Now())
	assert.Equal(t, 80, f.Width)
	assert.Equal(t, 24, f.Height)
	require.Len(t, f.Nodes, 4)
	assert.True(t, f.Nodes[0].Styled)
	assert.False(t, f.Nodes[1].Styled)

	require.Len(t, f.Links, 1)
	lf := f.Links[0]
	require.Len(t, lf.Particles, visualization.ParticleCount)
	assert.InDelta(t, 0, lf.Particles[0].Sub(lf.Source.Lerp(lf.Target, 0.005)).Len(), 1e-9)
	assert.InDelta(t, 0, lf.Particles[1].Sub(lf.Source.Lerp(lf.Target, 0.505)).Len(), 1e-9)
}

func TestRendererWithView(t *testing.T) {
	clock := newStepClock()
	e := New(WithClock(clock))
	v, err := visualization.NewView(e, visualization.WithClock(clock))
	require.NoError(t, err)

	nodes, links := testGraph()
	v.SetDataset(&graph.Dataset{Nodes: nodes, Links: links})
	for i := 0; i < 30; i++ {
		e.Step()
	}

	require.NoError(t, v.Click("a1"))
	p, _ := e.NodePosition("a1")
	clock.Advance(visualization.ClickDuration)
	cam := e.Camera(clock.Now())
	assert.InDelta(t, p.Len()+visualization.ClickStandOff, cam.Position.Len(), 1e-6)
	assert.Equal(t, p, cam.LookAt)

	v.Highlight("b1", visualization.NeighborSelectTimeout)
	f := e.Snapshot(clock.Now())
	for _, n := range f.Nodes {
		assert.Equal(t, n.ID == "b1", n.Descriptor.Highlighted, n.ID)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	e := New()
	nodes, links := testGraph()
	e.SetGraph(nodes, links)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := e.Run(ctx, time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, e.Ticks())
}
