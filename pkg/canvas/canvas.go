// Package canvas maps an arrangement to a deterministic set of absolutely
// positioned boxes for presentation.
//
// The renderer is stateless: [Build] is a pure function from an arrangement
// snapshot (plus optional transient gesture state) to a [Scene]. Hosts - the
// HTTP API, the CLI preview, or a native front end - consume the scene and
// draw it however they like; nothing here touches pixels.
//
// Coordinates in a scene are percentages of the canvas dimensions, matching
// the geometry model. [Box.PixelRect] converts to pixels for a measured
// canvas.
package canvas

import (
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/arrangement"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
)

// Mode selects the renderer's display contract.
type Mode int

// Display modes.
const (
	// ModeCompose is the fully interactive canvas with drag, resize, and
	// remove affordances.
	ModeCompose Mode = iota

	// ModeView is read-only free-form placement with no affordances.
	ModeView

	// ModeGallery is a read-only horizontal single-row layout for simple
	// item galleries, ignoring stored positions.
	ModeGallery
)

// FitContentPadding is added below the lowest item when a scene is built
// with fit-content height, in percent of canvas height.
const FitContentPadding = 4.0

// galleryGap is the horizontal spacing between boxes in gallery mode, in
// percent of canvas width.
const galleryGap = 3.0

// TransientState is the slice of interaction state the renderer reads.
// *gesture.Controller satisfies it; read-only scenes pass nil.
type TransientState interface {
	// ActiveItem is the item being dragged or resized, promoted above all.
	ActiveItem() (string, bool)

	// TransientPosition is an in-flight drag position overriding the model.
	TransientPosition(itemID string) (geometry.Position, bool)

	// TransientScale is an in-flight resize scale overriding the model.
	TransientScale(itemID string) (float64, bool)

	// ControlsVisible reports whether the item's controls are showing.
	ControlsVisible(itemID string) bool

	// RemoveArmed reports whether the item's remove awaits confirmation.
	RemoveArmed(itemID string) bool
}

// Controls describes which affordances a box presents.
type Controls struct {
	// ResizeHandle is the drag-to-resize corner handle (regular devices).
	ResizeHandle bool

	// ZoomButtons are the fixed-size +/- scale buttons (compact devices).
	ZoomButtons bool

	// Remove is the remove affordance.
	Remove bool

	// RemoveArmed marks a compact remove awaiting its confirmation tap.
	RemoveArmed bool
}

// Box is one absolutely positioned square region.
type Box struct {
	ItemID   string
	ImageRef string
	X        float64 // percent of canvas width
	Y        float64 // percent of canvas height
	SizePct  float64 // percent of canvas width; height matches for 1:1 aspect
	Z        int
	Controls Controls
}

// PixelRect converts the box to pixel coordinates for a measured canvas.
func (b Box) PixelRect(canvasW, canvasH float64) (x, y, w, h float64) {
	side := b.SizePct / 100 * canvasW
	return b.X / 100 * canvasW, b.Y / 100 * canvasH, side, side
}

// Scene is a fully resolved render of one arrangement.
type Scene struct {
	Mode  Mode
	Boxes []Box

	// HeightPct is the fit-content canvas height: the bottom edge of the
	// lowest box plus padding, in percent of the reference canvas height.
	// Hosts using a fixed-height canvas ignore it.
	HeightPct float64
}

// Options configure a scene build.
type Options struct {
	Mode Mode

	// State supplies transient gesture overrides; nil for read-only scenes.
	State TransientState

	// FitContent sizes HeightPct to enclose the lowest item plus padding
	// instead of the full canvas.
	FitContent bool
}

// Build produces the scene for an arrangement snapshot.
//
// Z-order follows the arrangement sequence (index+1, painter's order); the
// item currently dragged or showing controls is promoted above all others.
// This promotion is transient and never persisted.
func Build(entries []arrangement.Entry, profile geometry.LayoutProfile, opts Options) Scene {
	scene := Scene{Mode: opts.Mode, HeightPct: 100}

	if opts.Mode == ModeGallery {
		return buildGallery(entries, profile, scene)
	}

	activeID := ""
	if opts.State != nil {
		if id, ok := opts.State.ActiveItem(); ok {
			activeID = id
		}
	}

	topZ := len(entries) + 1
	lowestBottom := 0.0

	for i, e := range entries {
		pos, scale := e.Pos, e.Scale
		controlsVisible := false

		if opts.State != nil {
			if p, ok := opts.State.TransientPosition(e.Item.ID); ok {
				pos = p
			}
			if s, ok := opts.State.TransientScale(e.Item.ID); ok {
				scale = s
			}
			controlsVisible = opts.State.ControlsVisible(e.Item.ID)
		}

		box := Box{
			ItemID:   e.Item.ID,
			ImageRef: e.Item.ImageRef,
			X:        pos.X,
			Y:        pos.Y,
			SizePct:  profile.EffectiveSizePercent(scale),
			Z:        i + 1,
		}

		if e.Item.ID == activeID || (controlsVisible && profile.Class == geometry.DeviceCompact) {
			box.Z = topZ
		}

		if opts.Mode == ModeCompose && controlsVisible {
			box.Controls = controlsFor(profile.Class)
			if opts.State != nil && opts.State.RemoveArmed(e.Item.ID) {
				box.Controls.RemoveArmed = true
			}
		}

		if bottom := box.Y + box.SizePct; bottom > lowestBottom {
			lowestBottom = bottom
		}

		scene.Boxes = append(scene.Boxes, box)
	}

	if opts.FitContent {
		scene.HeightPct = lowestBottom + FitContentPadding
	}

	return scene
}

// controlsFor returns the affordance set for a device class: regular devices
// get the hover corner handle, compact devices get fixed +/- buttons and the
// confirm-style remove.
func controlsFor(class geometry.DeviceClass) Controls {
	if class == geometry.DeviceCompact {
		return Controls{ZoomButtons: true, Remove: true}
	}
	return Controls{ResizeHandle: true, Remove: true}
}

// buildGallery lays entries out in a single scrollable row, left to right,
// ignoring stored positions.
func buildGallery(entries []arrangement.Entry, profile geometry.LayoutProfile, scene Scene) Scene {
	size := profile.BaseSizePercent
	x := 0.0
	for i, e := range entries {
		scene.Boxes = append(scene.Boxes, Box{
			ItemID:   e.Item.ID,
			ImageRef: e.Item.ImageRef,
			X:        x,
			Y:        0,
			SizePct:  size,
			Z:        i + 1,
		})
		x += size + galleryGap
	}
	scene.HeightPct = size + FitContentPadding
	return scene
}
