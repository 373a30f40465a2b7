package visualization

import (
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-topology/pkg/graph"
	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/metrics"
)

// ErrUnknownNode is returned when an operation names a node that is not in
// the current dataset.
var ErrUnknownNode = errors.New("node not in current dataset")

// View is the host-facing facade over the synchronizer, the highlight and
// focus controller, the camera director and the physics mapper. Every
// method is meant to be called from a single event loop.
type View struct {
	renderer Renderer
	sync     *Synchronizer
	ctrl     *Controller
	clock    Clock
	logger   logging.Logger
	metrics  *metrics.Registry

	settings Settings
	width    int
	height   int
	onClick  func(graph.Node)
}

// ViewOption configures a View.
type ViewOption func(*viewOptions)

type viewOptions struct {
	clock    Clock
	logger   logging.Logger
	metrics  *metrics.Registry
	styles   *StyleTable
	settings *Settings
}

// WithClock overrides the wall clock used for expiry.
func WithClock(c Clock) ViewOption {
	return func(o *viewOptions) { o.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) ViewOption {
	return func(o *viewOptions) { o.logger = l }
}

// WithMetrics records view activity into reg.
func WithMetrics(reg *metrics.Registry) ViewOption {
	return func(o *viewOptions) { o.metrics = reg }
}

// WithStyles replaces the built-in style table.
func WithStyles(t StyleTable) ViewOption {
	return func(o *viewOptions) { o.styles = &t }
}

// WithSettings sets the initial settings instead of DefaultSettings.
func WithSettings(s Settings) ViewOption {
	return func(o *viewOptions) { o.settings = &s }
}

// NewView creates a view driving r and pushes the initial physics.
func NewView(r Renderer, opts ...ViewOption) (*View, error) {
	o := viewOptions{
		clock:  SystemClock{},
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	settings := DefaultSettings()
	if o.settings != nil {
		settings = *o.settings
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("initial settings: %w", err)
	}

	styles := DefaultStyles()
	if o.styles != nil {
		styles = *o.styles
	}

	v := &View{
		renderer: r,
		sync:     NewSynchronizer(r, NewEncoder(styles), o.logger, o.metrics),
		ctrl:     NewController(o.clock, o.logger, o.metrics),
		clock:    o.clock,
		logger:   o.logger.With(logging.Component("view")),
		metrics:  o.metrics,
		settings: settings,
	}
	r.ApplyPhysics(MapPhysics(settings))
	return v, nil
}

// OnNodeClick registers the callback invoked by Click.
func (v *View) OnNodeClick(fn func(graph.Node)) {
	v.onClick = fn
}

// SetDataset shows ds. Passing the snapshot already shown does nothing.
func (v *View) SetDataset(ds *graph.Dataset) bool {
	hl, _ := v.ctrl.Active(SlotHighlight)
	// Keep the current highlight encoded if the node survives the reload.
	v.sync.highlight = hl
	return v.sync.Sync(ds, v.settings)
}

// Dataset returns the snapshot currently shown.
func (v *View) Dataset() *graph.Dataset {
	return v.sync.Dataset()
}

// Settings returns the applied settings.
func (v *View) Settings() Settings {
	return v.settings
}

// SetSettings validates and applies s. Node spread changes push new physics
// and reheat the simulation; width and opacity changes only restyle links.
// Equal settings are a no-op.
func (v *View) SetSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if s == v.settings {
		return nil
	}
	prev := v.settings
	v.settings = s

	v.renderer.ApplyPhysics(MapPhysics(s))
	if NeedsReheat(prev, s) {
		v.renderer.Reheat()
		v.metrics.RecordReheat()
		v.metrics.RecordSettingsChange("physics")
	}
	if StrokeChanged(prev, s) {
		v.sync.RestyleLinks(s)
		v.metrics.RecordSettingsChange("visual")
	}

	v.logger.Debug("settings applied",
		logging.Float64("link_width", s.LinkWidth),
		logging.Float64("link_opacity", s.LinkOpacity),
		logging.Int("node_spread", s.NodeSpread),
	)
	return nil
}

// Highlight emphasizes id for ttl.
func (v *View) Highlight(id string, ttl time.Duration) Wakeup {
	w := v.ctrl.Select(SlotHighlight, id, ttl)
	v.sync.Refresh(id)
	return w
}

// Focus flies the camera to id and holds the focus slot for ttl. If the
// node has no position yet the slot is still set but the camera stays put.
func (v *View) Focus(id string, ttl time.Duration) Wakeup {
	w := v.ctrl.Select(SlotFocus, id, ttl)
	if pos, ok := v.renderer.NodePosition(id); ok {
		v.renderer.MoveCamera(Frame(pos, FocusStandOff, FocusDuration))
		v.metrics.RecordCameraMove("search")
	}
	return w
}

// SelectSearchResult highlights and focuses id together for the search
// timeout.
func (v *View) SelectSearchResult(id string) []Wakeup {
	return []Wakeup{
		v.Highlight(id, SearchSelectTimeout),
		v.Focus(id, SearchSelectTimeout),
	}
}

// SelectNeighbor highlights a node picked from a neighbour list for the
// shorter neighbour timeout.
func (v *View) SelectNeighbor(id string) (graph.Node, Wakeup, error) {
	n, ok := v.sync.Node(id)
	if !ok {
		return graph.Node{}, Wakeup{}, fmt.Errorf("select neighbor %q: %w", id, ErrUnknownNode)
	}
	return n, v.Highlight(id, NeighborSelectTimeout), nil
}

// ClearSelection resets highlight and focus immediately.
func (v *View) ClearSelection() {
	v.ctrl.ClearAll()
	v.sync.Refresh("")
}

// Expire delivers a wakeup. Stale wakeups change nothing.
func (v *View) Expire(w Wakeup) bool {
	if !v.ctrl.Expire(w) {
		return false
	}
	if w.Slot == SlotHighlight {
		v.sync.Refresh("")
	}
	return true
}

// Advance applies any expiry that is due but whose wakeup has not arrived.
func (v *View) Advance() {
	for _, slot := range v.ctrl.Sweep() {
		if slot == SlotHighlight {
			v.sync.Refresh("")
		}
	}
}

// Click handles a pick on node id: the host callback runs and the camera
// flies to the node.
func (v *View) Click(id string) error {
	n, ok := v.sync.Node(id)
	if !ok {
		return fmt.Errorf("click %q: %w", id, ErrUnknownNode)
	}
	if v.onClick != nil {
		v.onClick(n)
	}
	pos, _ := v.renderer.NodePosition(id)
	v.renderer.MoveCamera(Frame(pos, ClickStandOff, ClickDuration))
	v.metrics.RecordCameraMove("click")
	return nil
}

// Resize sets the render surface size. Repeating the current size is a no-op.
func (v *View) Resize(width, height int) {
	if width == v.width && height == v.height {
		return
	}
	v.width, v.height = width, height
	v.renderer.Resize(width, height)
}

// Highlighted returns the highlighted node id, or "" when idle.
func (v *View) Highlighted() string {
	id, _ := v.ctrl.Active(SlotHighlight)
	return id
}

// Focused returns the focused node id, or "" when idle.
func (v *View) Focused() string {
	id, _ := v.ctrl.Active(SlotFocus)
	return id
}

// Node returns a node of the current dataset.
func (v *View) Node(id string) (graph.Node, bool) {
	return v.sync.Node(id)
}

// Degree returns the current degree of id.
func (v *View) Degree(id string) int {
	return v.sync.Degree(id)
}

// Descriptor returns the current descriptor of id.
func (v *View) Descriptor(id string) (Descriptor, bool) {
	return v.sync.Descriptor(id)
}

// Now returns the view clock's time, for scheduling wakeups.
func (v *View) Now() time.Time {
	return v.clock.Now()
}
