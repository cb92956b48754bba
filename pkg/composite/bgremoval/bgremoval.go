// Package bgremoval isolates wardrobe items from their photo backgrounds.
//
// Removal is an optional capability: the composite generator works against
// the Remover interface and defaults to NullRemover, which leaves images
// untouched. ChromaRemover handles the common case of product photos shot on
// a near-uniform backdrop; APIRemover delegates to an external service for
// everything else.
package bgremoval

import (
	"context"
	"image"
	"image/color"
	"math"
)

// Remover strips the background from an item photo. Implementations return
// the input image unchanged when they cannot improve on it.
type Remover interface {
	// Remove returns img with background pixels made transparent.
	Remove(ctx context.Context, img image.Image) (image.Image, error)

	// Name identifies the remover for cache key scoping.
	Name() string
}

// NullRemover performs no background removal.
type NullRemover struct{}

// NewNullRemover creates the identity remover.
func NewNullRemover() Remover {
	return &NullRemover{}
}

// Remove returns img unchanged.
func (NullRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	return img, nil
}

// Name returns "null".
func (NullRemover) Name() string { return "null" }

// DefaultTolerance is the per-channel color distance (0..1) within which a
// pixel counts as background for ChromaRemover.
const DefaultTolerance = 0.10

// ChromaRemover keys out a near-uniform background by sampling the image
// corners. If the corners disagree on a background color the image is
// returned unchanged rather than guessing.
type ChromaRemover struct {
	// Tolerance is the normalized color distance treated as background.
	// Zero means DefaultTolerance.
	Tolerance float64
}

// NewChromaRemover creates a corner-sampling remover.
func NewChromaRemover(tolerance float64) Remover {
	return &ChromaRemover{Tolerance: tolerance}
}

// Name returns "chroma".
func (r *ChromaRemover) Name() string { return "chroma" }

// Remove makes pixels close to the sampled background color transparent.
func (r *ChromaRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	tol := r.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	bg, uniform := sampleBackground(img, tol)
	if !uniform {
		return img, nil
	}

	bounds := img.Bounds()
	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := img.At(x, y)
			if colorDistance(px, bg) <= tol {
				out.Set(x, y, color.NRGBA{})
				continue
			}
			out.Set(x, y, px)
		}
	}
	return out, nil
}

// sampleBackground reads the four corner pixels and reports whether they
// agree within tol. The first corner is the candidate background color.
func sampleBackground(img image.Image, tol float64) (color.Color, bool) {
	b := img.Bounds()
	if b.Empty() {
		return color.NRGBA{}, false
	}
	corners := []color.Color{
		img.At(b.Min.X, b.Min.Y),
		img.At(b.Max.X-1, b.Min.Y),
		img.At(b.Min.X, b.Max.Y-1),
		img.At(b.Max.X-1, b.Max.Y-1),
	}
	for _, c := range corners[1:] {
		if colorDistance(corners[0], c) > tol {
			return corners[0], false
		}
	}
	return corners[0], true
}

// colorDistance returns the euclidean RGB distance normalized to 0..1.
func colorDistance(a, b color.Color) float64 {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	dr := float64(ar) - float64(br)
	dg := float64(ag) - float64(bg)
	db := float64(ab) - float64(bb)
	return math.Sqrt(dr*dr+dg*dg+db*db) / (math.Sqrt(3) * 0xffff)
}
