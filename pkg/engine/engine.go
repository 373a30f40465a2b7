// Package engine is an in-process 3D force-directed simulation that
// implements visualization.Renderer. It keeps node positions in its own
// shadow state keyed by node id, applies link, charge and centring forces
// on each Step, and animates the camera between poses.
package engine

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/metrics"
	"github.com/dd0wney/cluso-topology/pkg/visualization"
)

// Simulation cooling constants.
const (
	AlphaMin    = 0.001
	alphaTarget = 0.0
)

// alphaDecay cools alpha from 1 to AlphaMin in 300 ticks.
var alphaDecay = 1 - math.Pow(AlphaMin, 1.0/300)

// Engine is a force simulation plus the descriptors needed to draw it.
// All methods are safe for concurrent use.
type Engine struct {
	mu sync.RWMutex

	clock   visualization.Clock
	logger  logging.Logger
	metrics *metrics.Registry
	layout  Layout
	rng     *rand.Rand

	bodies  []*body
	index   map[string]int
	nodes   []graph.Node
	links   []graph.Link
	springs []spring

	nodeDesc map[string]visualization.Descriptor
	linkDesc []visualization.LinkDescriptor

	params   visualization.PhysicsParams
	alpha    float64
	ticks    uint64
	frames   uint64
	dangling int

	camera    cameraTween
	cameraSet bool
	width     int
	height    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for camera animation.
func WithClock(c visualization.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the engine logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics records simulation ticks to reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(e *Engine) { e.metrics = reg }
}

// WithLayout sets the seed layout for new bodies.
func WithLayout(l Layout) Option {
	return func(e *Engine) { e.layout = l }
}

// WithRandSeed makes the jiggle applied to coincident bodies reproducible.
func WithRandSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// New creates an idle engine using the default physics.
func New(opts ...Option) *Engine {
	e := &Engine{
		index:    make(map[string]int),
		nodeDesc: make(map[string]visualization.Descriptor),
		params:   visualization.MapPhysics(visualization.DefaultSettings()),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = visualization.SystemClock{}
	}
	if e.logger == nil {
		e.logger = logging.NewNopLogger()
	}
	if e.layout == nil {
		e.layout = NewSpiralLayout(nil)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(1))
	}
	e.camera = cameraTween{to: CameraPose{Position: visualization.Vec3{Z: initialDistance(0)}}}
	return e
}

var _ visualization.Renderer = (*Engine)(nil)

// SetGraph replaces the simulated graph. Bodies whose id survives keep
// their position and velocity; new ids are seeded by the layout. The
// simulation is reheated.
func (e *Engine) SetGraph(nodes []graph.Node, links []graph.Link) {
	e.mu.Lock()
	defer e.mu.Unlock()

	seeds := e.layout.ComputeLayout(nodes, links)

	old := e.index
	oldBodies := e.bodies
	e.bodies = make([]*body, 0, len(nodes))
	e.index = make(map[string]int, len(nodes))

	for _, n := range nodes {
		if _, dup := e.index[n.ID]; dup {
			continue
		}
		b := &body{id: n.ID}
		if i, ok := old[n.ID]; ok {
			*b = *oldBodies[i]
		} else {
			b.pos = seeds[n.ID]
		}
		e.index[n.ID] = len(e.bodies)
		e.bodies = append(e.bodies, b)
	}

	for id := range e.nodeDesc {
		if _, ok := e.index[id]; !ok {
			delete(e.nodeDesc, id)
		}
	}

	e.nodes = nodes
	e.links = links
	e.dangling = e.resolveSprings()
	if e.dangling > 0 {
		e.logger.Warn("links reference missing nodes",
			logging.Count(e.dangling),
			logging.Component("engine"))
	}

	if !e.cameraSet {
		e.camera = cameraTween{to: CameraPose{Position: visualization.Vec3{Z: initialDistance(len(e.bodies))}}}
	}

	e.alpha = 1
	e.logger.Debug("graph loaded",
		logging.Int("nodes", len(e.bodies)),
		logging.Int("links", len(e.springs)))
}

// UpdateNodes replaces the descriptors of the listed nodes.
func (e *Engine) UpdateNodes(descriptors []visualization.Descriptor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, d := range descriptors {
		e.nodeDesc[d.NodeID] = d
	}
}

// UpdateLinks replaces every link descriptor.
func (e *Engine) UpdateLinks(descriptors []visualization.LinkDescriptor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.linkDesc = append(e.linkDesc[:0], descriptors...)
}

// ApplyPhysics sets the force parameters. It does not reheat.
func (e *Engine) ApplyPhysics(p visualization.PhysicsParams) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.params = p
}

// Reheat restarts cooling from alpha 1.
func (e *Engine) Reheat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.alpha = 1
}

// MoveCamera starts a camera animation from the current pose.
func (e *Engine) MoveCamera(m visualization.CameraMove) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock.Now()
	e.camera = cameraTween{
		from:     e.camera.at(now),
		to:       CameraPose{Position: m.Position, LookAt: m.LookAt},
		start:    now,
		duration: m.Duration,
	}
	e.cameraSet = true
}

// NodePosition returns the simulated position of id.
func (e *Engine) NodePosition(id string) (visualization.Vec3, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	i, ok := e.index[id]
	if !ok {
		return visualization.Vec3{}, false
	}
	return e.bodies[i].pos, true
}

// Resize records the viewport size.
func (e *Engine) Resize(width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.width, e.height = width, height
}

// Step advances the simulation by one tick. It returns false without
// moving anything once alpha has cooled below AlphaMin.
func (e *Engine) Step() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.alpha < AlphaMin {
		return false
	}

	e.alpha += (alphaTarget - e.alpha) * alphaDecay
	e.applyLinkForce(e.alpha)
	e.applyChargeForce(e.alpha)
	e.integrate()
	e.applyCenterForce()

	e.ticks++
	e.metrics.RecordTick(e.alpha)
	return true
}

// Settled reports whether the simulation has cooled.
func (e *Engine) Settled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alpha < AlphaMin
}

// Alpha returns the current simulation temperature.
func (e *Engine) Alpha() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alpha
}

// Ticks returns the number of steps taken since creation.
func (e *Engine) Ticks() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ticks
}

// DanglingLinks returns how many links of the current graph reference a
// missing node.
func (e *Engine) DanglingLinks() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dangling
}

// Counts returns the number of simulated nodes and links, dangling links
// included.
func (e *Engine) Counts() (nodes, links int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.bodies), len(e.links)
}

// Size returns the last viewport size passed to Resize.
func (e *Engine) Size() (width, height int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.width, e.height
}

// Camera returns the animated camera pose at now.
func (e *Engine) Camera(now time.Time) CameraPose {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.camera.at(now)
}

// CameraMoving reports whether a camera animation is still in progress.
func (e *Engine) CameraMoving(now time.Time) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.camera.done(now)
}

// FitCamera returns a move that frames every body, for passing to
// MoveCamera.
func (e *Engine) FitCamera(d time.Duration) visualization.CameraMove {
	e.mu.RLock()
	points := make([]visualization.Vec3, len(e.bodies))
	for i, b := range e.bodies {
		points[i] = b.pos
	}
	e.mu.RUnlock()

	pose := fitPose(points)
	return visualization.CameraMove{Position: pose.Position, LookAt: pose.LookAt, Duration: d}
}

// Run steps the simulation every interval until ctx is cancelled. Ticks
// after the simulation settles are no-ops.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Step()
		}
	}
}
