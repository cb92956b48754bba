package bgremoval

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/cache"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/observability"
)

// CachedRemover wraps a Remover with a byte cache so the same source image
// is only cut out once. Keys are content-addressed by the hash of the source
// PNG plus the inner remover's parameters.
type CachedRemover struct {
	inner     Remover
	cache     cache.Cache
	keyer     cache.Keyer
	tolerance float64
}

// NewCachedRemover wraps inner with the given cache.
// tolerance is recorded in the key so removers with different settings never
// share entries; pass 0 for removers without a tolerance.
func NewCachedRemover(inner Remover, c cache.Cache, tolerance float64) Remover {
	return &CachedRemover{
		inner:     inner,
		cache:     c,
		keyer:     cache.NewDefaultKeyer(),
		tolerance: tolerance,
	}
}

// Name returns the inner remover's name.
func (r *CachedRemover) Name() string { return r.inner.Name() }

// Remove returns the cached cutout when available, otherwise delegates to
// the inner remover and stores the result. Cache failures fall through to
// the inner remover.
func (r *CachedRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	var src bytes.Buffer
	if err := png.Encode(&src, img); err != nil {
		return r.inner.Remove(ctx, img)
	}

	opts := cache.CutoutKeyOpts{Remover: r.inner.Name(), Tolerance: r.tolerance}
	key := r.keyer.CutoutKey(cache.Hash(src.Bytes()), opts)

	if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		if cached, err := png.Decode(bytes.NewReader(data)); err == nil {
			observability.Cache().OnCacheHit(ctx, "cutout")
			return cached, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "cutout")

	out, err := r.inner.Remove(ctx, img)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err == nil {
		if err := r.cache.Set(ctx, key, buf.Bytes(), cache.TTLCutout); err == nil {
			observability.Cache().OnCacheSet(ctx, "cutout", buf.Len())
		}
	}
	return out, nil
}
