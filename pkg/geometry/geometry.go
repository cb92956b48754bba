// Package geometry provides the pure placement math for the look canvas.
//
// All positions are expressed as percentages of the canvas dimensions, so the
// same arrangement renders identically regardless of the measured pixel size
// of the canvas. The package has no side effects: every function takes a value
// and returns a new value.
//
// # Layout profiles
//
// Spacing and item footprint differ between compact (touch-first) and regular
// (pointer-first) device classes. Rather than scattering device-class
// conditionals through the math, a [LayoutProfile] is selected once at session
// start and passed wherever geometry is computed:
//
//	profile := geometry.RegularProfile()
//	pos := profile.Clamp(geometry.Position{X: 95, Y: 10}, 1.5)
package geometry

import "math"

// DeviceClass selects the interaction/layout profile for a session.
type DeviceClass string

// Supported device classes.
const (
	DeviceRegular DeviceClass = "regular" // pointer-first (desktop)
	DeviceCompact DeviceClass = "compact" // touch-first (phone)
)

// Scale bounds and granularity for item scaling.
const (
	// MinScale is the smallest allowed item scale.
	MinScale = 0.5

	// MaxScale is the largest allowed item scale.
	MaxScale = 2.0

	// DefaultScale is the scale assigned when an item is first placed.
	DefaultScale = 1.0

	// ScaleStep is the granularity of the discrete +/- zoom controls.
	// Continuous corner-drag resize is not rounded to this step.
	ScaleStep = 0.1
)

// Position is the top-left anchor of an item's bounding box, expressed as
// percentages of canvas width and height.
type Position struct {
	X float64 `json:"position_x"`
	Y float64 `json:"position_y"`
}

// LayoutProfile holds the per-device-class layout constants.
//
// BaseSizePercent is an item's footprint as a fraction of canvas width at
// scale 1. Slots is the cyclic grid of candidate positions used when items
// are first added, so consecutive additions do not fully overlap.
type LayoutProfile struct {
	Class           DeviceClass
	BaseSizePercent float64
	Slots           []Position
}

// RegularProfile returns the layout profile for pointer-first devices.
func RegularProfile() LayoutProfile {
	return LayoutProfile{
		Class:           DeviceRegular,
		BaseSizePercent: 22,
		Slots: []Position{
			{X: 8, Y: 8}, {X: 38, Y: 8}, {X: 68, Y: 8},
			{X: 8, Y: 38}, {X: 38, Y: 38}, {X: 68, Y: 38},
			{X: 8, Y: 68}, {X: 38, Y: 68}, {X: 68, Y: 68},
		},
	}
}

// CompactProfile returns the layout profile for touch-first devices.
// Items are larger relative to the canvas, so the grid is coarser.
func CompactProfile() LayoutProfile {
	return LayoutProfile{
		Class:           DeviceCompact,
		BaseSizePercent: 28,
		Slots: []Position{
			{X: 6, Y: 6}, {X: 40, Y: 6},
			{X: 6, Y: 40}, {X: 40, Y: 40},
			{X: 6, Y: 70}, {X: 40, Y: 70},
		},
	}
}

// ProfileFor returns the profile for the given device class.
// Unknown classes fall back to the regular profile.
func ProfileFor(class DeviceClass) LayoutProfile {
	if class == DeviceCompact {
		return CompactProfile()
	}
	return RegularProfile()
}

// DefaultSlot returns the initial position for the index-th item added to an
// arrangement. Slots cycle, so arrangements larger than the grid reuse
// positions rather than erroring.
func (p LayoutProfile) DefaultSlot(index int) Position {
	if len(p.Slots) == 0 {
		return Position{}
	}
	if index < 0 {
		index = 0
	}
	return p.Slots[index%len(p.Slots)]
}

// EffectiveSizePercent returns an item's on-canvas footprint as a percentage
// of canvas width after scale is applied.
func (p LayoutProfile) EffectiveSizePercent(scale float64) float64 {
	return p.BaseSizePercent * ClampScale(scale)
}

// Clamp constrains pos so the item's bounding box stays on the canvas:
// each axis is limited to [0, 100 − effectiveSizePercent].
//
// If the effective size exceeds the canvas (max would be negative), the
// position clamps to 0 so the item anchors against the top-left edge instead
// of erroring.
func (p LayoutProfile) Clamp(pos Position, scale float64) Position {
	limit := 100 - p.EffectiveSizePercent(scale)
	if limit < 0 {
		limit = 0
	}
	return Position{
		X: clampFloat(pos.X, 0, limit),
		Y: clampFloat(pos.Y, 0, limit),
	}
}

// ApplyDelta shifts pos by the given percentage deltas and clamps the result.
// Callers convert pixel deltas to percentages using the canvas dimensions
// measured at the time of the gesture, so a viewport resize mid-drag is
// tolerated.
func (p LayoutProfile) ApplyDelta(pos Position, scale, dxPct, dyPct float64) Position {
	return p.Clamp(Position{X: pos.X + dxPct, Y: pos.Y + dyPct}, scale)
}

// ClampScale constrains s to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	return clampFloat(s, MinScale, MaxScale)
}

// ApplyScaleDelta returns the clamped result of adding delta to s without
// rounding. This is the continuous path used by corner-drag resize.
func ApplyScaleDelta(s, delta float64) float64 {
	return ClampScale(s + delta)
}

// StepScale returns s adjusted by steps increments of [ScaleStep], rounded to
// the step granularity and clamped. This is the discrete path used by the
// +/- zoom buttons on compact layouts.
func StepScale(s float64, steps int) float64 {
	stepped := s + float64(steps)*ScaleStep
	rounded := math.Round(stepped/ScaleStep) * ScaleStep
	return ClampScale(rounded)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
