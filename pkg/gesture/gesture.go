// Package gesture implements the interaction controller for the look canvas.
//
// The controller translates a generic pointer contract (down / move / up /
// cancel, in canvas pixels) into geometry-model intents. It supports two
// coexisting gesture families without conflict - item drag (reposition) and
// corner-handle drag (resize) - plus tap-to-toggle-controls, confirm-before-
// delete, and drop-to-add from a source palette.
//
// The controller never mutates the arrangement. It reads current placement
// through a lookup callback and reports finished gestures through the
// [Callbacks] with already-clamped values; the session owner applies them to
// the authoritative arrangement. During an active gesture the transient
// position/scale are exposed for rendering.
//
// # Gating
//
// On regular (pointer) devices a drag starts once the pointer moves past a
// small slop distance. On compact (touch) devices a drag starts after a
// press-and-hold delay with a movement tolerance; movement past the tolerance
// before the delay elapses rejects the gesture so list scrolling wins. An
// accepted tap (down and up without a drag starting) toggles the per-item
// controls on compact layouts.
package gesture

import (
	"math"
	"sync"
	"time"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/arrangement"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
)

// Gating constants for drag disambiguation.
const (
	// DragSlop is the minimum pointer travel (px) before a drag starts on
	// regular devices.
	DragSlop = 4.0

	// HoldDelay is the press-and-hold duration before a drag starts on
	// compact devices.
	HoldDelay = 300 * time.Millisecond

	// HoldTolerance is how far (px) a touch may wander during the hold delay
	// before the gesture is rejected as a scroll.
	HoldTolerance = 10.0

	// RemoveConfirmWindow is how long an armed remove stays armed before
	// auto-reverting.
	RemoveConfirmWindow = 3 * time.Second
)

// Phase identifies a pointer event's position in its lifecycle.
type Phase int

// Pointer phases.
const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
	PhaseCancel
)

// Point is a position in canvas pixels.
type Point struct {
	X float64
	Y float64
}

func (p Point) distanceTo(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Size is a measured canvas extent in pixels.
type Size struct {
	Width  float64
	Height float64
}

// PointerEvent is one low-level pointer sample.
type PointerEvent struct {
	PointerID int64
	Phase     Phase
	Position  Point
	Time      time.Time
}

// SubjectKind identifies what a pointer went down on.
type SubjectKind int

// Drag subject kinds. A tagged union replaces the string-prefixed drag ids
// the original interface used to separate palette and canvas sources.
const (
	// SubjectPaletteItem is an item in the source palette; dragging it onto
	// the canvas (or tapping it) adds it to the arrangement.
	SubjectPaletteItem SubjectKind = iota

	// SubjectCanvasItem is an item already placed on the canvas; dragging it
	// repositions it.
	SubjectCanvasItem

	// SubjectResizeHandle is the corner resize handle of a placed item;
	// dragging it rescales the item.
	SubjectResizeHandle
)

// Subject is the typed identity of a drag source.
type Subject struct {
	Kind   SubjectKind
	ItemID string
}

// DropTarget identifies a registered drop region.
type DropTarget string

// DropTargetCanvas is the canvas drop region, the only legal target for
// palette drags.
const DropTargetCanvas DropTarget = "canvas"

// Callbacks receive finished gesture intents. All placement values are
// already clamped. Nil callbacks are skipped.
type Callbacks struct {
	// OnPositionChange fires when an item drag ends.
	OnPositionChange func(itemID string, pos geometry.Position)

	// OnScaleChange fires when a resize gesture ends or a zoom step is taken.
	OnScaleChange func(itemID string, scale float64)

	// OnAdd fires when a palette item is dropped over the canvas or tapped.
	// The arrangement enforces idempotency, so duplicate adds are harmless.
	OnAdd func(itemID string)

	// OnRemove fires when a remove is confirmed.
	OnRemove func(itemID string)
}

// Config wires a controller to its session.
type Config struct {
	Profile geometry.LayoutProfile

	// CanvasSize returns the canvas's pixel dimensions, measured at call
	// time rather than cached, so a viewport resize mid-drag is tolerated.
	CanvasSize func() Size

	// Lookup resolves an item's current placement from the authoritative
	// arrangement.
	Lookup func(itemID string) (arrangement.Entry, bool)

	Callbacks Callbacks

	// After schedules the remove-confirm auto-revert. Injectable for tests;
	// defaults to time.AfterFunc.
	After func(d time.Duration, f func()) *time.Timer
}

// gesturePhase is the internal per-pointer state.
type gesturePhase int

const (
	gesturePending  gesturePhase = iota // down seen, not yet a drag
	gestureDragging                     // move or resize in progress
	gestureRejected                     // wandered past tolerance before hold elapsed
)

// pointerState tracks one active pointer. A single pointer drives exactly one
// gesture; gestures on different items under different pointers are
// independent.
type pointerState struct {
	subject  Subject
	phase    gesturePhase
	downAt   time.Time
	downPos  Point
	lastPos  Point
	startPos geometry.Position // placement at down (canvas items)
	curPos   geometry.Position // transient position during drag
	scale    float64           // placement scale at down
	curScale float64           // transient scale during resize

	// hovered is the last drop target reported while this palette drag was
	// active. It is consumed exactly once at drag end.
	hovered *DropTarget
}

// Controller is the interaction state machine for one composition session.
// It is safe for use from a single UI goroutine; the remove-confirm timer is
// synchronized internally.
type Controller struct {
	cfg Config

	pointers map[int64]*pointerState

	mu       sync.Mutex
	controls map[string]bool // compact: item id -> controls visible
	armed    string          // item id with an armed remove, "" if none
	armedGen int             // invalidates stale disarm timers
}

// NewController creates a controller for the given configuration.
func NewController(cfg Config) *Controller {
	if cfg.After == nil {
		cfg.After = time.AfterFunc
	}
	return &Controller{
		cfg:      cfg,
		pointers: make(map[int64]*pointerState),
		controls: make(map[string]bool),
	}
}

// compact reports whether the session uses touch-first gating and controls.
func (c *Controller) compact() bool {
	return c.cfg.Profile.Class == geometry.DeviceCompact
}

// PointerDown begins tracking a pointer against the given subject.
func (c *Controller) PointerDown(subject Subject, ev PointerEvent) {
	st := &pointerState{
		subject: subject,
		phase:   gesturePending,
		downAt:  ev.Time,
		downPos: ev.Position,
		lastPos: ev.Position,
	}
	if subject.Kind == SubjectCanvasItem || subject.Kind == SubjectResizeHandle {
		entry, ok := c.cfg.Lookup(subject.ItemID)
		if !ok {
			return
		}
		st.startPos = entry.Pos
		st.curPos = entry.Pos
		st.scale = entry.Scale
		st.curScale = entry.Scale
	}
	if subject.Kind == SubjectResizeHandle {
		// The handle is only reachable while controls are showing; no
		// hold gating, the resize starts on first movement.
		st.phase = gestureDragging
	}
	c.pointers[ev.PointerID] = st
}

// PointerMove advances the gesture for the pointer, if any.
func (c *Controller) PointerMove(ev PointerEvent) {
	st, ok := c.pointers[ev.PointerID]
	if !ok || st.phase == gestureRejected {
		return
	}

	if st.phase == gesturePending && !c.shouldStartDrag(st, ev) {
		return
	}
	if st.phase == gesturePending {
		st.phase = gestureDragging
		st.lastPos = ev.Position
		// A drag always hides the tapped-open controls.
		c.setControlsVisible(st.subject.ItemID, false)
		return
	}

	dx := ev.Position.X - st.lastPos.X
	dy := ev.Position.Y - st.lastPos.Y
	st.lastPos = ev.Position

	switch st.subject.Kind {
	case SubjectCanvasItem:
		size := c.cfg.CanvasSize()
		if size.Width <= 0 || size.Height <= 0 {
			return
		}
		st.curPos = c.cfg.Profile.ApplyDelta(st.curPos, st.scale,
			dx/size.Width*100, dy/size.Height*100)

	case SubjectResizeHandle:
		size := c.cfg.CanvasSize()
		basePx := c.cfg.Profile.BaseSizePercent / 100 * size.Width
		if basePx <= 0 {
			return
		}
		// Corner drag: outward movement grows the item. Continuous, so no
		// step rounding.
		st.curScale = geometry.ApplyScaleDelta(st.curScale, (dx+dy)/(2*basePx))

	case SubjectPaletteItem:
		// Position tracking only; the drop decision happens at release.
	}
}

// shouldStartDrag applies the device-class gating rules to a pending pointer.
func (c *Controller) shouldStartDrag(st *pointerState, ev PointerEvent) bool {
	dist := ev.Position.distanceTo(st.downPos)
	if !c.compact() {
		return dist >= DragSlop
	}
	if ev.Time.Sub(st.downAt) >= HoldDelay {
		return true
	}
	if dist > HoldTolerance {
		// Moved too far too early: this is a scroll, not a drag.
		st.phase = gestureRejected
	}
	return false
}

// PointerUp completes the gesture for the pointer, emitting the appropriate
// intent.
func (c *Controller) PointerUp(ev PointerEvent) {
	st, ok := c.pointers[ev.PointerID]
	if !ok {
		return
	}
	delete(c.pointers, ev.PointerID)

	switch st.phase {
	case gestureRejected:
		return

	case gesturePending:
		c.finishTap(st)

	case gestureDragging:
		c.finishDrag(st)
	}
}

// PointerCancel abandons the gesture without emitting any intent.
func (c *Controller) PointerCancel(ev PointerEvent) {
	delete(c.pointers, ev.PointerID)
}

func (c *Controller) finishTap(st *pointerState) {
	switch st.subject.Kind {
	case SubjectPaletteItem:
		// Tap-to-add.
		if cb := c.cfg.Callbacks.OnAdd; cb != nil {
			cb(st.subject.ItemID)
		}
	case SubjectCanvasItem:
		if c.compact() {
			c.toggleControls(st.subject.ItemID)
		}
	}
}

func (c *Controller) finishDrag(st *pointerState) {
	switch st.subject.Kind {
	case SubjectCanvasItem:
		if cb := c.cfg.Callbacks.OnPositionChange; cb != nil {
			cb(st.subject.ItemID, st.curPos)
		}

	case SubjectResizeHandle:
		if cb := c.cfg.Callbacks.OnScaleChange; cb != nil {
			cb(st.subject.ItemID, st.curScale)
		}

	case SubjectPaletteItem:
		// Consume the threaded drop target exactly once. No registered hit
		// falls back to accept: the canvas is the only legal target.
		target := st.hovered
		st.hovered = nil
		if target == nil || *target == DropTargetCanvas {
			if cb := c.cfg.Callbacks.OnAdd; cb != nil {
				cb(st.subject.ItemID)
			}
		}
	}
}

// HoverDropTarget records the drop target currently under an active palette
// drag. It is called on every drag-over and the stored value is consumed at
// drag end.
func (c *Controller) HoverDropTarget(pointerID int64, target DropTarget) {
	st, ok := c.pointers[pointerID]
	if !ok || st.subject.Kind != SubjectPaletteItem {
		return
	}
	t := target
	st.hovered = &t
}

// =============================================================================
// Transient state for rendering
// =============================================================================

// ActiveItem returns the item currently being dragged or resized, if any.
// The renderer promotes it above all other items.
func (c *Controller) ActiveItem() (string, bool) {
	for _, st := range c.pointers {
		if st.phase != gestureDragging {
			continue
		}
		if st.subject.Kind == SubjectCanvasItem || st.subject.Kind == SubjectResizeHandle {
			return st.subject.ItemID, true
		}
	}
	return "", false
}

// TransientPosition returns the in-flight position for an item mid-drag.
func (c *Controller) TransientPosition(itemID string) (geometry.Position, bool) {
	for _, st := range c.pointers {
		if st.phase == gestureDragging && st.subject.Kind == SubjectCanvasItem && st.subject.ItemID == itemID {
			return st.curPos, true
		}
	}
	return geometry.Position{}, false
}

// TransientScale returns the in-flight scale for an item mid-resize.
func (c *Controller) TransientScale(itemID string) (float64, bool) {
	for _, st := range c.pointers {
		if st.phase == gestureDragging && st.subject.Kind == SubjectResizeHandle && st.subject.ItemID == itemID {
			return st.curScale, true
		}
	}
	return 0, false
}

// =============================================================================
// Controls visibility
// =============================================================================

// ControlsVisible reports whether the item's remove/resize controls show.
// Regular layouts always show controls on hover, so this is always true
// there; compact layouts toggle per item by tap.
func (c *Controller) ControlsVisible(itemID string) bool {
	if !c.compact() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controls[itemID]
}

func (c *Controller) toggleControls(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.controls[itemID] = !c.controls[itemID]
}

func (c *Controller) setControlsVisible(itemID string, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if visible {
		c.controls[itemID] = true
	} else {
		delete(c.controls, itemID)
	}
}

// =============================================================================
// Zoom steps and remove confirmation
// =============================================================================

// ZoomStep adjusts an item's scale by discrete steps (the compact +/-
// buttons). The intent is emitted immediately with the stepped, clamped value.
func (c *Controller) ZoomStep(itemID string, steps int) {
	entry, ok := c.cfg.Lookup(itemID)
	if !ok {
		return
	}
	if cb := c.cfg.Callbacks.OnScaleChange; cb != nil {
		cb(itemID, geometry.StepScale(entry.Scale, steps))
	}
}

// RequestRemove handles the remove affordance.
//
// On regular layouts the remove fires immediately. On compact layouts the
// first request arms a confirmation that auto-reverts after
// [RemoveConfirmWindow]; a second request inside the window confirms and
// emits OnRemove. Arming a different item replaces the previous arm.
func (c *Controller) RequestRemove(itemID string) {
	if !c.compact() {
		c.emitRemove(itemID)
		return
	}

	c.mu.Lock()
	if c.armed == itemID {
		c.armed = ""
		c.armedGen++
		c.mu.Unlock()
		c.emitRemove(itemID)
		return
	}
	c.armed = itemID
	c.armedGen++
	gen := c.armedGen
	c.mu.Unlock()

	c.cfg.After(RemoveConfirmWindow, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.armedGen == gen && c.armed == itemID {
			c.armed = ""
		}
	})
}

// RemoveArmed reports whether the item's remove is awaiting confirmation.
func (c *Controller) RemoveArmed(itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed == itemID
}

func (c *Controller) emitRemove(itemID string) {
	if cb := c.cfg.Callbacks.OnRemove; cb != nil {
		cb(itemID)
	}
}
