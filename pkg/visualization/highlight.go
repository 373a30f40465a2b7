package visualization

import (
	"time"

	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/metrics"
)

// Slot identifies one of the two independent selection timers.
type Slot int

const (
	// SlotHighlight drives emphasized rendering of one node.
	SlotHighlight Slot = iota
	// SlotFocus drives one camera transition toward a node.
	SlotFocus

	slotCount
)

func (s Slot) String() string {
	switch s {
	case SlotHighlight:
		return "highlight"
	case SlotFocus:
		return "focus"
	default:
		return "unknown"
	}
}

// Selection timeouts by trigger.
const (
	SearchSelectTimeout   = 3000 * time.Millisecond
	NeighborSelectTimeout = 2000 * time.Millisecond
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Wakeup is a request to call Controller.Expire at At. Gen ties it to the
// selection that issued it; once that selection is superseded or cleared
// the wakeup is stale and Expire ignores it.
type Wakeup struct {
	Slot Slot
	Gen  uint64
	At   time.Time
}

// Delay is how long the host should wait before delivering w.
func (w Wakeup) Delay(now time.Time) time.Duration {
	if d := w.At.Sub(now); d > 0 {
		return d
	}
	return 0
}

// SelectionState is a snapshot of one slot. NodeID is empty when idle.
type SelectionState struct {
	NodeID    string
	ExpiresAt time.Time
}

// Active reports whether the slot holds a node.
func (s SelectionState) Active() bool { return s.NodeID != "" }

type slotState struct {
	nodeID    string
	expiresAt time.Time
	gen       uint64
}

// Controller owns the highlight and focus slots. Each slot is Idle or
// Active(nodeID, expiresAt); selecting replaces the previous node outright.
// It never starts goroutines: callers receive a Wakeup and hand it back
// through their own event loop. Not safe for concurrent use.
type Controller struct {
	clock   Clock
	slots   [slotCount]slotState
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewController creates a controller reading time from clock.
func NewController(clock Clock, logger logging.Logger, reg *metrics.Registry) *Controller {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Controller{
		clock:   clock,
		logger:  logger.With(logging.Component("highlight")),
		metrics: reg,
	}
}

// Select activates slot for nodeID until now+ttl, cancelling whatever the
// slot held before.
func (c *Controller) Select(slot Slot, nodeID string, ttl time.Duration) Wakeup {
	s := &c.slots[slot]
	s.gen++
	s.nodeID = nodeID
	s.expiresAt = c.clock.Now().Add(ttl)

	c.metrics.RecordHighlightTransition(slot.String(), "select")
	c.logger.Debug("slot selected",
		logging.Slot(slot.String()),
		logging.NodeID(nodeID),
		logging.Duration("ttl", ttl),
	)

	return Wakeup{Slot: slot, Gen: s.gen, At: s.expiresAt}
}

// Expire resets the slot if w is still current and its deadline has passed.
// It returns true only when this call moved the slot to Idle.
func (c *Controller) Expire(w Wakeup) bool {
	if w.Slot < 0 || w.Slot >= slotCount {
		return false
	}
	s := &c.slots[w.Slot]
	if w.Gen != s.gen || s.nodeID == "" {
		c.metrics.RecordHighlightTransition(w.Slot.String(), "stale")
		return false
	}
	if c.clock.Now().Before(s.expiresAt) {
		return false
	}
	c.reset(w.Slot, "expire")
	return true
}

// Clear resets slot immediately and invalidates its pending wakeup.
func (c *Controller) Clear(slot Slot) {
	if c.slots[slot].nodeID == "" {
		return
	}
	c.reset(slot, "clear")
}

// ClearAll clears both slots.
func (c *Controller) ClearAll() {
	for s := Slot(0); s < slotCount; s++ {
		c.Clear(s)
	}
}

// Sweep expires every slot whose deadline has passed, regardless of whether
// its wakeup was delivered, and returns the slots it reset.
func (c *Controller) Sweep() []Slot {
	var out []Slot
	now := c.clock.Now()
	for slot := Slot(0); slot < slotCount; slot++ {
		s := &c.slots[slot]
		if s.nodeID != "" && !now.Before(s.expiresAt) {
			c.reset(slot, "expire")
			out = append(out, slot)
		}
	}
	return out
}

// State returns the slot as seen at the current time: a slot past its
// deadline reads as Idle even if no wakeup has been delivered yet.
func (c *Controller) State(slot Slot) SelectionState {
	s := c.slots[slot]
	if s.nodeID == "" || !c.clock.Now().Before(s.expiresAt) {
		return SelectionState{}
	}
	return SelectionState{NodeID: s.nodeID, ExpiresAt: s.expiresAt}
}

// Active returns the node held by slot, if any.
func (c *Controller) Active(slot Slot) (string, bool) {
	st := c.State(slot)
	return st.NodeID, st.Active()
}

func (c *Controller) reset(slot Slot, transition string) {
	s := &c.slots[slot]
	c.logger.Debug("slot reset",
		logging.Slot(slot.String()),
		logging.NodeID(s.nodeID),
		logging.String("transition", transition),
	)
	s.gen++
	s.nodeID = ""
	s.expiresAt = time.Time{}
	c.metrics.RecordHighlightTransition(slot.String(), transition)
}
