package gesture

import (
	"math"
	"testing"
	"time"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/arrangement"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
)

// harness wires a controller to a real arrangement and records emitted intents.
type harness struct {
	arr        *arrangement.Arrangement
	ctrl       *Controller
	canvas     Size
	moves      []geometry.Position
	scales     []float64
	added      []string
	removed    []string
	timers     []*fakeTimer
	movedItems []string
}

type fakeTimer struct {
	d     time.Duration
	f     func()
	fired bool
}

// fire runs the timer callback as if the duration elapsed.
func (ft *fakeTimer) fire() {
	if !ft.fired {
		ft.fired = true
		ft.f()
	}
}

func newHarness(t *testing.T, class geometry.DeviceClass) *harness {
	t.Helper()
	profile := geometry.ProfileFor(class)
	h := &harness{
		arr:    arrangement.New(profile),
		canvas: Size{Width: 1000, Height: 800},
	}
	h.ctrl = NewController(Config{
		Profile:    profile,
		CanvasSize: func() Size { return h.canvas },
		Lookup:     h.arr.Get,
		Callbacks: Callbacks{
			OnPositionChange: func(itemID string, pos geometry.Position) {
				h.moves = append(h.moves, pos)
				h.movedItems = append(h.movedItems, itemID)
			},
			OnScaleChange: func(itemID string, scale float64) { h.scales = append(h.scales, scale) },
			OnAdd:         func(itemID string) { h.added = append(h.added, itemID) },
			OnRemove:      func(itemID string) { h.removed = append(h.removed, itemID) },
		},
		After: func(d time.Duration, f func()) *time.Timer {
			h.timers = append(h.timers, &fakeTimer{d: d, f: f})
			return time.NewTimer(time.Hour) // never fires on its own in tests
		},
	})
	return h
}

func (h *harness) place(id string, x, y, scale float64) {
	h.arr.AddAt(arrangement.Item{ID: id, Type: arrangement.ItemTypeCloset},
		geometry.Position{X: x, Y: y}, scale)
}

var testEpoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ev(id int64, phase Phase, x, y float64, at time.Duration) PointerEvent {
	return PointerEvent{PointerID: id, Phase: phase, Position: Point{X: x, Y: y}, Time: testEpoch.Add(at)}
}

func TestRegularDragRepositionsItem(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)
	h.place("shirt", 10, 10, 1)

	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 100, 100, 0))
	// First move past slop starts the drag; travel accrues from here.
	h.ctrl.PointerMove(ev(1, PhaseMove, 110, 100, 10*time.Millisecond))
	// 100px right, 80px down on a 1000x800 canvas = +10% on each axis.
	h.ctrl.PointerMove(ev(1, PhaseMove, 210, 180, 20*time.Millisecond))
	h.ctrl.PointerUp(ev(1, PhaseUp, 210, 180, 30*time.Millisecond))

	if len(h.moves) != 1 {
		t.Fatalf("moves = %v, want one", h.moves)
	}
	got := h.moves[0]
	if math.Abs(got.X-20) > 1e-9 || math.Abs(got.Y-20) > 1e-9 {
		t.Errorf("position = %v, want {20 20}", got)
	}
	if h.movedItems[0] != "shirt" {
		t.Errorf("item = %q, want shirt", h.movedItems[0])
	}
}

func TestRegularTapBelowSlopEmitsNothing(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)
	h.place("shirt", 10, 10, 1)

	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 100, 100, 0))
	h.ctrl.PointerMove(ev(1, PhaseMove, 102, 101, 10*time.Millisecond)) // under slop
	h.ctrl.PointerUp(ev(1, PhaseUp, 102, 101, 20*time.Millisecond))

	if len(h.moves) != 0 {
		t.Errorf("moves = %v, want none for a tap", h.moves)
	}
	// Regular layouts always show controls (hover-equivalent).
	if !h.ctrl.ControlsVisible("shirt") {
		t.Error("ControlsVisible = false on regular layout")
	}
}

func TestDragClampsAtCanvasEdge(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)
	h.place("shirt", 70, 70, 1)

	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 700, 560, 0))
	h.ctrl.PointerMove(ev(1, PhaseMove, 710, 560, 10*time.Millisecond))
	h.ctrl.PointerMove(ev(1, PhaseMove, 1700, 1560, 20*time.Millisecond)) // way past the edge
	h.ctrl.PointerUp(ev(1, PhaseUp, 1700, 1560, 30*time.Millisecond))

	limit := 100 - geometry.RegularProfile().BaseSizePercent
	got := h.moves[0]
	if got.X != limit || got.Y != limit {
		t.Errorf("position = %v, want {%v %v}", got, limit, limit)
	}
}

func TestDragUsesCanvasSizeAtEventTime(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)
	h.place("shirt", 0, 0, 1)

	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 100, 100, 0))
	h.ctrl.PointerMove(ev(1, PhaseMove, 110, 100, 10*time.Millisecond))
	h.ctrl.PointerMove(ev(1, PhaseMove, 210, 100, 20*time.Millisecond)) // +100px = +10% at 1000px wide

	// Viewport shrinks mid-drag; the same pixel delta now means more percent.
	h.canvas = Size{Width: 500, Height: 800}
	h.ctrl.PointerMove(ev(1, PhaseMove, 260, 100, 30*time.Millisecond)) // +50px = +10% at 500px wide
	h.ctrl.PointerUp(ev(1, PhaseUp, 260, 100, 40*time.Millisecond))

	got := h.moves[0]
	if math.Abs(got.X-20) > 1e-9 {
		t.Errorf("x = %v, want 20 (10%% + 10%%)", got.X)
	}
}

func TestCompactHoldStartsDrag(t *testing.T) {
	h := newHarness(t, geometry.DeviceCompact)
	h.place("shirt", 10, 10, 1)

	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 100, 100, 0))
	// Small wiggle inside the tolerance before the hold elapses: no drag yet.
	h.ctrl.PointerMove(ev(1, PhaseMove, 104, 100, 100*time.Millisecond))
	if _, dragging := h.ctrl.TransientPosition("shirt"); dragging {
		t.Fatal("drag started before hold delay")
	}

	// After the hold delay the drag starts.
	h.ctrl.PointerMove(ev(1, PhaseMove, 104, 100, HoldDelay+10*time.Millisecond))
	h.ctrl.PointerMove(ev(1, PhaseMove, 204, 100, HoldDelay+20*time.Millisecond))
	h.ctrl.PointerUp(ev(1, PhaseUp, 204, 100, HoldDelay+30*time.Millisecond))

	if len(h.moves) != 1 {
		t.Fatalf("moves = %v, want one", h.moves)
	}
	if math.Abs(h.moves[0].X-20) > 1e-9 {
		t.Errorf("x = %v, want 20", h.moves[0].X)
	}
}

func TestCompactEarlyMovementRejectsGesture(t *testing.T) {
	h := newHarness(t, geometry.DeviceCompact)
	h.place("shirt", 10, 10, 1)

	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 100, 100, 0))
	// Fast movement past the tolerance before the hold: this is a scroll.
	h.ctrl.PointerMove(ev(1, PhaseMove, 130, 100, 50*time.Millisecond))
	h.ctrl.PointerMove(ev(1, PhaseMove, 230, 100, HoldDelay+10*time.Millisecond))
	h.ctrl.PointerUp(ev(1, PhaseUp, 230, 100, HoldDelay+20*time.Millisecond))

	if len(h.moves) != 0 {
		t.Errorf("moves = %v, want none for a rejected gesture", h.moves)
	}
	// A rejected gesture is not a tap either.
	if h.ctrl.ControlsVisible("shirt") {
		t.Error("rejected gesture toggled controls")
	}
}

func TestCompactTapTogglesControls(t *testing.T) {
	h := newHarness(t, geometry.DeviceCompact)
	h.place("shirt", 10, 10, 1)

	tap := func(at time.Duration) {
		h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 100, 100, at))
		h.ctrl.PointerUp(ev(1, PhaseUp, 100, 100, at+50*time.Millisecond))
	}

	if h.ctrl.ControlsVisible("shirt") {
		t.Fatal("controls visible before any tap")
	}
	tap(0)
	if !h.ctrl.ControlsVisible("shirt") {
		t.Error("controls hidden after first tap")
	}
	tap(time.Second)
	if h.ctrl.ControlsVisible("shirt") {
		t.Error("controls visible after second tap")
	}
}

func TestDragStartHidesControls(t *testing.T) {
	h := newHarness(t, geometry.DeviceCompact)
	h.place("shirt", 10, 10, 1)

	// Tap to show controls.
	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 100, 100, 0))
	h.ctrl.PointerUp(ev(1, PhaseUp, 100, 100, 50*time.Millisecond))
	if !h.ctrl.ControlsVisible("shirt") {
		t.Fatal("controls not shown by tap")
	}

	// Hold-drag the item.
	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(2, PhaseDown, 100, 100, time.Second))
	h.ctrl.PointerMove(ev(2, PhaseMove, 100, 100, time.Second+HoldDelay+10*time.Millisecond))

	if h.ctrl.ControlsVisible("shirt") {
		t.Error("controls still visible after drag start")
	}
}

func TestResizeHandleDrag(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)
	h.place("shirt", 10, 10, 1)

	// Base size px = 22% of 1000 = 220. Dragging the corner out by
	// (110, 110) adds (110+110)/(2*220) = 0.5 to the scale.
	h.ctrl.PointerDown(Subject{Kind: SubjectResizeHandle, ItemID: "shirt"}, ev(1, PhaseDown, 320, 320, 0))
	h.ctrl.PointerMove(ev(1, PhaseMove, 430, 430, 10*time.Millisecond))

	if s, ok := h.ctrl.TransientScale("shirt"); !ok || math.Abs(s-1.5) > 1e-9 {
		t.Errorf("TransientScale = %v, %v; want 1.5, true", s, ok)
	}
	// Continuous resize: values between steps are kept.
	h.ctrl.PointerMove(ev(1, PhaseMove, 441, 441, 20*time.Millisecond))
	s, _ := h.ctrl.TransientScale("shirt")
	if math.Abs(s-1.55) > 1e-9 {
		t.Errorf("TransientScale = %v, want 1.55", s)
	}

	// Commit on release.
	h.ctrl.PointerUp(ev(1, PhaseUp, 441, 441, 30*time.Millisecond))
	if len(h.scales) != 1 || math.Abs(h.scales[0]-1.55) > 1e-9 {
		t.Errorf("scales = %v, want [1.55]", h.scales)
	}
}

func TestResizeClampsToScaleBounds(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)
	h.place("shirt", 10, 10, 1)

	h.ctrl.PointerDown(Subject{Kind: SubjectResizeHandle, ItemID: "shirt"}, ev(1, PhaseDown, 320, 320, 0))
	h.ctrl.PointerMove(ev(1, PhaseMove, 5000, 5000, 10*time.Millisecond))
	h.ctrl.PointerUp(ev(1, PhaseUp, 5000, 5000, 20*time.Millisecond))

	if len(h.scales) != 1 || h.scales[0] != geometry.MaxScale {
		t.Errorf("scales = %v, want [%v]", h.scales, geometry.MaxScale)
	}
}

func TestPaletteDropOverCanvasAdds(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)

	h.ctrl.PointerDown(Subject{Kind: SubjectPaletteItem, ItemID: "hat"}, ev(1, PhaseDown, 50, 50, 0))
	h.ctrl.PointerMove(ev(1, PhaseMove, 300, 300, 10*time.Millisecond))
	h.ctrl.HoverDropTarget(1, DropTargetCanvas)
	h.ctrl.PointerUp(ev(1, PhaseUp, 300, 300, 20*time.Millisecond))

	if len(h.added) != 1 || h.added[0] != "hat" {
		t.Errorf("added = %v, want [hat]", h.added)
	}
}

func TestPaletteDropWithNoTargetFallsBackToAccept(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)

	h.ctrl.PointerDown(Subject{Kind: SubjectPaletteItem, ItemID: "hat"}, ev(1, PhaseDown, 50, 50, 0))
	h.ctrl.PointerMove(ev(1, PhaseMove, 300, 300, 10*time.Millisecond))
	h.ctrl.PointerUp(ev(1, PhaseUp, 300, 300, 20*time.Millisecond))

	if len(h.added) != 1 || h.added[0] != "hat" {
		t.Errorf("added = %v, want [hat] via fallback accept", h.added)
	}
}

func TestPaletteDropOverOtherTargetDoesNotAdd(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)

	h.ctrl.PointerDown(Subject{Kind: SubjectPaletteItem, ItemID: "hat"}, ev(1, PhaseDown, 50, 50, 0))
	h.ctrl.PointerMove(ev(1, PhaseMove, 300, 300, 10*time.Millisecond))
	h.ctrl.HoverDropTarget(1, DropTarget("trash"))
	h.ctrl.PointerUp(ev(1, PhaseUp, 300, 300, 20*time.Millisecond))

	if len(h.added) != 0 {
		t.Errorf("added = %v, want none", h.added)
	}
}

func TestPaletteTapAdds(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)

	h.ctrl.PointerDown(Subject{Kind: SubjectPaletteItem, ItemID: "hat"}, ev(1, PhaseDown, 50, 50, 0))
	h.ctrl.PointerUp(ev(1, PhaseUp, 50, 50, 30*time.Millisecond))

	if len(h.added) != 1 || h.added[0] != "hat" {
		t.Errorf("added = %v, want [hat]", h.added)
	}
}

func TestPointerCancelEmitsNothing(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)
	h.place("shirt", 10, 10, 1)

	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 100, 100, 0))
	h.ctrl.PointerMove(ev(1, PhaseMove, 200, 200, 10*time.Millisecond))
	h.ctrl.PointerCancel(ev(1, PhaseCancel, 200, 200, 20*time.Millisecond))

	if len(h.moves) != 0 || len(h.scales) != 0 || len(h.added) != 0 {
		t.Error("cancelled gesture emitted intents")
	}
}

func TestIndependentGesturesOnDifferentItems(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)
	h.place("shirt", 10, 10, 1)
	h.place("pants", 50, 50, 1)

	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 100, 100, 0))
	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "pants"}, ev(2, PhaseDown, 500, 400, 0))

	h.ctrl.PointerMove(ev(1, PhaseMove, 110, 100, 10*time.Millisecond))
	h.ctrl.PointerMove(ev(2, PhaseMove, 510, 400, 10*time.Millisecond))
	h.ctrl.PointerMove(ev(1, PhaseMove, 210, 100, 20*time.Millisecond))
	h.ctrl.PointerMove(ev(2, PhaseMove, 510, 480, 20*time.Millisecond))

	h.ctrl.PointerUp(ev(1, PhaseUp, 210, 100, 30*time.Millisecond))
	h.ctrl.PointerUp(ev(2, PhaseUp, 510, 480, 30*time.Millisecond))

	if len(h.moves) != 2 {
		t.Fatalf("moves = %v, want two", h.moves)
	}
	// shirt moved +10% x, pants moved +10% y.
	if math.Abs(h.moves[0].X-20) > 1e-9 || math.Abs(h.moves[0].Y-10) > 1e-9 {
		t.Errorf("shirt = %v, want {20 10}", h.moves[0])
	}
	if math.Abs(h.moves[1].X-50) > 1e-9 || math.Abs(h.moves[1].Y-60) > 1e-9 {
		t.Errorf("pants = %v, want {50 60}", h.moves[1])
	}
}

func TestTransientStateDuringDrag(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)
	h.place("shirt", 10, 10, 1)

	h.ctrl.PointerDown(Subject{Kind: SubjectCanvasItem, ItemID: "shirt"}, ev(1, PhaseDown, 100, 100, 0))
	h.ctrl.PointerMove(ev(1, PhaseMove, 110, 100, 10*time.Millisecond))
	h.ctrl.PointerMove(ev(1, PhaseMove, 210, 100, 20*time.Millisecond))

	if id, ok := h.ctrl.ActiveItem(); !ok || id != "shirt" {
		t.Errorf("ActiveItem = %q, %v; want shirt, true", id, ok)
	}
	pos, ok := h.ctrl.TransientPosition("shirt")
	if !ok || math.Abs(pos.X-20) > 1e-9 {
		t.Errorf("TransientPosition = %v, %v", pos, ok)
	}

	h.ctrl.PointerUp(ev(1, PhaseUp, 210, 100, 30*time.Millisecond))
	if _, ok := h.ctrl.ActiveItem(); ok {
		t.Error("ActiveItem still set after release")
	}
}

func TestZoomStep(t *testing.T) {
	h := newHarness(t, geometry.DeviceCompact)
	h.place("shirt", 10, 10, 1)

	h.ctrl.ZoomStep("shirt", 1)
	h.ctrl.ZoomStep("shirt", -2)

	if len(h.scales) != 2 {
		t.Fatalf("scales = %v, want two", h.scales)
	}
	if math.Abs(h.scales[0]-1.1) > 1e-9 {
		t.Errorf("step up = %v, want 1.1", h.scales[0])
	}
	// Steps are computed from the authoritative scale (still 1.0 here since
	// the harness doesn't apply intents back).
	if math.Abs(h.scales[1]-0.8) > 1e-9 {
		t.Errorf("step down = %v, want 0.8", h.scales[1])
	}

	h.ctrl.ZoomStep("ghost", 1)
	if len(h.scales) != 2 {
		t.Error("ZoomStep on unknown item emitted a change")
	}
}

func TestRemoveImmediateOnRegular(t *testing.T) {
	h := newHarness(t, geometry.DeviceRegular)
	h.place("shirt", 10, 10, 1)

	h.ctrl.RequestRemove("shirt")
	if len(h.removed) != 1 || h.removed[0] != "shirt" {
		t.Errorf("removed = %v, want [shirt]", h.removed)
	}
}

func TestRemoveConfirmOnCompact(t *testing.T) {
	h := newHarness(t, geometry.DeviceCompact)
	h.place("shirt", 10, 10, 1)

	// First request arms but does not remove.
	h.ctrl.RequestRemove("shirt")
	if len(h.removed) != 0 {
		t.Fatalf("removed = %v after arming", h.removed)
	}
	if !h.ctrl.RemoveArmed("shirt") {
		t.Fatal("remove not armed")
	}
	if len(h.timers) != 1 || h.timers[0].d != RemoveConfirmWindow {
		t.Fatalf("disarm timer = %+v, want one with %v", h.timers, RemoveConfirmWindow)
	}

	// Second request confirms.
	h.ctrl.RequestRemove("shirt")
	if len(h.removed) != 1 || h.removed[0] != "shirt" {
		t.Errorf("removed = %v, want [shirt]", h.removed)
	}
	if h.ctrl.RemoveArmed("shirt") {
		t.Error("still armed after confirm")
	}

	// The stale timer firing later must not disarm anything new.
	h.ctrl.RequestRemove("pants")
	h.timers[0].fire()
	if !h.ctrl.RemoveArmed("pants") {
		t.Error("stale timer disarmed a newer arm")
	}
}

func TestRemoveArmAutoReverts(t *testing.T) {
	h := newHarness(t, geometry.DeviceCompact)
	h.place("shirt", 10, 10, 1)

	h.ctrl.RequestRemove("shirt")
	h.timers[0].fire() // 3s elapse

	if h.ctrl.RemoveArmed("shirt") {
		t.Fatal("arm did not auto-revert")
	}

	// The next request arms again rather than removing.
	h.ctrl.RequestRemove("shirt")
	if len(h.removed) != 0 {
		t.Errorf("removed = %v, want none after revert", h.removed)
	}
}
