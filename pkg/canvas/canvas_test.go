package canvas

import (
	"math"
	"testing"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/arrangement"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
)

func entries(ids ...string) []arrangement.Entry {
	p := geometry.RegularProfile()
	out := make([]arrangement.Entry, len(ids))
	for i, id := range ids {
		out[i] = arrangement.Entry{
			Item:  arrangement.Item{ID: id, ImageRef: "https://example.com/" + id + ".png"},
			Pos:   p.DefaultSlot(i),
			Scale: 1,
		}
	}
	return out
}

// fakeState is a scriptable TransientState.
type fakeState struct {
	active    string
	pos       map[string]geometry.Position
	scale     map[string]float64
	controls  map[string]bool
	armed     map[string]bool
}

func (f *fakeState) ActiveItem() (string, bool) { return f.active, f.active != "" }

func (f *fakeState) TransientPosition(id string) (geometry.Position, bool) {
	p, ok := f.pos[id]
	return p, ok
}

func (f *fakeState) TransientScale(id string) (float64, bool) {
	s, ok := f.scale[id]
	return s, ok
}

func (f *fakeState) ControlsVisible(id string) bool { return f.controls[id] }
func (f *fakeState) RemoveArmed(id string) bool     { return f.armed[id] }

func TestBuildZOrderFollowsSequence(t *testing.T) {
	scene := Build(entries("a", "b", "c"), geometry.RegularProfile(), Options{Mode: ModeView})

	if len(scene.Boxes) != 3 {
		t.Fatalf("boxes = %d, want 3", len(scene.Boxes))
	}
	for i, box := range scene.Boxes {
		if box.Z != i+1 {
			t.Errorf("box %d z = %d, want %d", i, box.Z, i+1)
		}
	}
}

func TestActiveItemPromotedAboveAll(t *testing.T) {
	state := &fakeState{active: "a"}
	scene := Build(entries("a", "b", "c"), geometry.RegularProfile(), Options{Mode: ModeCompose, State: state})

	if got, want := scene.Boxes[0].Z, 4; got != want {
		t.Errorf("active box z = %d, want %d (above all %d items)", got, want, 3)
	}
	// Others keep their base order.
	if scene.Boxes[1].Z != 2 || scene.Boxes[2].Z != 3 {
		t.Errorf("other z = %d, %d; want 2, 3", scene.Boxes[1].Z, scene.Boxes[2].Z)
	}
}

func TestControlsVisiblePromotesOnCompact(t *testing.T) {
	state := &fakeState{controls: map[string]bool{"b": true}}

	scene := Build(entries("a", "b", "c"), geometry.CompactProfile(), Options{Mode: ModeCompose, State: state})
	if scene.Boxes[1].Z != 4 {
		t.Errorf("controls-visible box z = %d, want 4", scene.Boxes[1].Z)
	}

	// On regular layouts controls don't affect stacking (hover shows them
	// on every item).
	scene = Build(entries("a", "b", "c"), geometry.RegularProfile(), Options{Mode: ModeCompose, State: state})
	if scene.Boxes[1].Z != 2 {
		t.Errorf("regular box z = %d, want base order 2", scene.Boxes[1].Z)
	}
}

func TestTransientOverridesPlacement(t *testing.T) {
	state := &fakeState{
		pos:   map[string]geometry.Position{"a": {X: 33, Y: 44}},
		scale: map[string]float64{"a": 1.5},
	}
	p := geometry.RegularProfile()

	scene := Build(entries("a"), p, Options{Mode: ModeCompose, State: state})
	box := scene.Boxes[0]
	if box.X != 33 || box.Y != 44 {
		t.Errorf("pos = (%v, %v), want (33, 44)", box.X, box.Y)
	}
	if want := p.EffectiveSizePercent(1.5); box.SizePct != want {
		t.Errorf("size = %v, want %v", box.SizePct, want)
	}
}

func TestControlAffordancesByDeviceClass(t *testing.T) {
	state := &fakeState{controls: map[string]bool{"a": true}, armed: map[string]bool{"a": true}}

	// Regular: corner handle, plain remove, no zoom buttons.
	scene := Build(entries("a"), geometry.RegularProfile(), Options{Mode: ModeCompose, State: state})
	c := scene.Boxes[0].Controls
	if !c.ResizeHandle || c.ZoomButtons || !c.Remove {
		t.Errorf("regular controls = %+v", c)
	}

	// Compact: zoom buttons, remove with confirm state, no handle.
	scene = Build(entries("a"), geometry.CompactProfile(), Options{Mode: ModeCompose, State: state})
	c = scene.Boxes[0].Controls
	if c.ResizeHandle || !c.ZoomButtons || !c.Remove || !c.RemoveArmed {
		t.Errorf("compact controls = %+v", c)
	}
}

func TestViewModeHasNoControls(t *testing.T) {
	state := &fakeState{controls: map[string]bool{"a": true}}
	scene := Build(entries("a"), geometry.RegularProfile(), Options{Mode: ModeView, State: state})

	if scene.Boxes[0].Controls != (Controls{}) {
		t.Errorf("view-mode controls = %+v, want none", scene.Boxes[0].Controls)
	}
}

func TestFitContentHeight(t *testing.T) {
	p := geometry.RegularProfile()
	es := entries("a", "b")
	es[0].Pos = geometry.Position{X: 10, Y: 10}
	es[1].Pos = geometry.Position{X: 10, Y: 50} // lowest: bottom at 50+22=72

	scene := Build(es, p, Options{Mode: ModeView, FitContent: true})
	want := 72 + FitContentPadding
	if math.Abs(scene.HeightPct-want) > 1e-9 {
		t.Errorf("HeightPct = %v, want %v", scene.HeightPct, want)
	}

	// Without fit-content the reference height is used.
	scene = Build(es, p, Options{Mode: ModeView})
	if scene.HeightPct != 100 {
		t.Errorf("HeightPct = %v, want 100", scene.HeightPct)
	}
}

func TestGalleryModeSingleRow(t *testing.T) {
	p := geometry.RegularProfile()
	es := entries("a", "b", "c")
	// Stored positions must be ignored.
	es[1].Pos = geometry.Position{X: 70, Y: 70}

	scene := Build(es, p, Options{Mode: ModeGallery})

	x := 0.0
	for i, box := range scene.Boxes {
		if box.Y != 0 {
			t.Errorf("box %d y = %v, want 0", i, box.Y)
		}
		if math.Abs(box.X-x) > 1e-9 {
			t.Errorf("box %d x = %v, want %v", i, box.X, x)
		}
		if box.SizePct != p.BaseSizePercent {
			t.Errorf("box %d size = %v, want %v", i, box.SizePct, p.BaseSizePercent)
		}
		x += p.BaseSizePercent + galleryGap
	}
}

func TestPixelRect(t *testing.T) {
	box := Box{X: 10, Y: 20, SizePct: 22}
	x, y, w, h := box.PixelRect(1000, 800)

	if x != 100 || y != 160 {
		t.Errorf("origin = (%v, %v), want (100, 160)", x, y)
	}
	if w != 220 || h != 220 {
		t.Errorf("size = (%v, %v), want square 220", w, h)
	}
}

func TestBuildEmptyArrangement(t *testing.T) {
	scene := Build(nil, geometry.RegularProfile(), Options{Mode: ModeCompose, FitContent: true})
	if len(scene.Boxes) != 0 {
		t.Errorf("boxes = %v, want none", scene.Boxes)
	}
	if scene.HeightPct != FitContentPadding {
		t.Errorf("HeightPct = %v, want padding only", scene.HeightPct)
	}
}
