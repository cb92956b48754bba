// Package composite flattens an arrangement into a single shareable image.
//
// The generator resolves each item's image reference, optionally removes its
// background, scales it to the placement's effective size, and paints it
// onto a portrait canvas in arrangement order so later items overlap earlier
// ones. The result is returned as a base64 PNG data URI; the generator
// performs no persistence.
package composite

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/arrangement"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/cache"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/composite/bgremoval"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/imageref"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/observability"
)

// Default canvas dimensions (portrait, 3:4).
const (
	DefaultWidth  = 600
	DefaultHeight = 800
)

// Options configure a Generator.
type Options struct {
	// Width and Height of the output canvas in pixels.
	// Zero values use the defaults.
	Width  int
	Height int

	// Background fills the canvas before items are painted.
	// Nil means white.
	Background color.Color

	// Remover strips item backgrounds. Nil means no removal.
	Remover bgremoval.Remover

	// Cache stores rendered composites so an unchanged arrangement is not
	// re-rendered. Nil disables composite caching.
	Cache cache.Cache

	// Keyer generates composite cache keys. Nil means the default keyer.
	Keyer cache.Keyer

	// Logger for per-item warnings. Nil means the default logger.
	Logger *log.Logger
}

// Generator renders arrangements to composite images.
type Generator struct {
	resolver   imageref.Resolver
	remover    bgremoval.Remover
	cache      cache.Cache
	keyer      cache.Keyer
	logger     *log.Logger
	width      int
	height     int
	background color.Color
}

// NewGenerator creates a generator that loads item images through resolver.
func NewGenerator(resolver imageref.Resolver, opts Options) *Generator {
	g := &Generator{
		resolver:   resolver,
		remover:    opts.Remover,
		cache:      opts.Cache,
		keyer:      opts.Keyer,
		logger:     opts.Logger,
		width:      opts.Width,
		height:     opts.Height,
		background: opts.Background,
	}
	if g.remover == nil {
		g.remover = bgremoval.NewNullRemover()
	}
	if g.cache != nil && g.keyer == nil {
		g.keyer = cache.NewDefaultKeyer()
	}
	if g.logger == nil {
		g.logger = log.Default()
	}
	if g.width <= 0 {
		g.width = DefaultWidth
	}
	if g.height <= 0 {
		g.height = DefaultHeight
	}
	if g.background == nil {
		g.background = color.White
	}
	return g
}

// Generate renders the entries onto the canvas and returns the PNG as a
// base64 data URI. Items are painted in entry order, so later entries
// overlap earlier ones. An entry whose image cannot be loaded or decoded is
// skipped with a warning; Generate only fails when the canvas itself cannot
// be produced or the arrangement is empty.
func (g *Generator) Generate(ctx context.Context, lookID string, entries []arrangement.Entry, profile geometry.LayoutProfile) (string, error) {
	start := time.Now()
	observability.Composite().OnGenerateStart(ctx, lookID, len(entries))

	uri, err := g.cached(ctx, lookID, entries, profile)
	observability.Composite().OnGenerateComplete(ctx, lookID, time.Since(start), err)
	return uri, err
}

// cached consults the composite cache around the actual render. Cache
// failures fall through to a fresh render.
func (g *Generator) cached(ctx context.Context, lookID string, entries []arrangement.Entry, profile geometry.LayoutProfile) (string, error) {
	if g.cache == nil {
		return g.generate(ctx, lookID, entries, profile)
	}

	key := g.keyer.CompositeKey(lookID, arrangementHash(entries, profile),
		cache.CompositeKeyOpts{Width: g.width, Height: g.height})
	if data, hit, err := g.cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "composite")
		return string(data), nil
	}
	observability.Cache().OnCacheMiss(ctx, "composite")

	uri, err := g.generate(ctx, lookID, entries, profile)
	if err != nil {
		return "", err
	}
	if err := g.cache.Set(ctx, key, []byte(uri), cache.TTLComposite); err == nil {
		observability.Cache().OnCacheSet(ctx, "composite", len(uri))
	}
	return uri, nil
}

// arrangementHash fingerprints the placements and profile constants that
// affect the render. Image references are included so a re-photographed
// item invalidates the entry.
func arrangementHash(entries []arrangement.Entry, profile geometry.LayoutProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%g", profile.Class, profile.BaseSizePercent)
	for _, e := range entries {
		fmt.Fprintf(&b, "|%s:%s:%g:%g:%g", e.Item.ID, e.Item.ImageRef, e.Pos.X, e.Pos.Y, e.Scale)
	}
	return cache.Hash([]byte(b.String()))
}

func (g *Generator) generate(ctx context.Context, lookID string, entries []arrangement.Entry, profile geometry.LayoutProfile) (string, error) {
	if len(entries) == 0 {
		return "", errors.New(errors.ErrCodeInvalidLook, "cannot render a composite for an empty look")
	}

	dc := gg.NewContext(g.width, g.height)
	dc.SetColor(g.background)
	dc.Clear()

	painted := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := g.paintEntry(ctx, dc, entry, profile); err != nil {
			observability.Composite().OnItemSkipped(ctx, lookID, entry.Item.ID, err)
			g.logger.Warn("skipping item in composite", "look", lookID, "item", entry.Item.ID, "error", err)
			continue
		}
		painted++
	}
	if painted == 0 {
		return "", errors.New(errors.ErrCodeInternal, "no items could be rendered")
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode composite PNG")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// paintEntry loads, cuts out, scales, and draws a single placement.
func (g *Generator) paintEntry(ctx context.Context, dc *gg.Context, entry arrangement.Entry, profile geometry.LayoutProfile) error {
	data, err := g.resolver.Resolve(ctx, entry.Item.ImageRef)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidImageRef, err, "decode image for %s", entry.Item.ID)
	}

	// Removal failures fall back to the original photo.
	if cut, err := g.remover.Remove(ctx, img); err == nil {
		img = cut
	} else {
		g.logger.Warn("background removal failed, using original", "item", entry.Item.ID, "error", err)
	}

	// Placement cells are squares sized as a percentage of canvas width.
	side := int(profile.EffectiveSizePercent(entry.Scale) / 100 * float64(g.width))
	if side < 1 {
		side = 1
	}
	fitted := fitToCell(img, side)

	x := int(entry.Pos.X / 100 * float64(g.width))
	y := int(entry.Pos.Y / 100 * float64(g.height))

	// Center the fitted image within its cell.
	offsetX := (side - fitted.Bounds().Dx()) / 2
	offsetY := (side - fitted.Bounds().Dy()) / 2
	dc.DrawImage(fitted, x+offsetX, y+offsetY)
	return nil
}

// fitToCell scales img to fill a side x side cell, preserving aspect ratio.
// Unlike imaging.Fit this also upscales small images so every placement
// occupies its full effective size.
func fitToCell(img image.Image, side int) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return img
	}
	if w >= h {
		return imaging.Resize(img, side, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, side, imaging.Lanczos)
}
