// Package imageref resolves opaque wardrobe-item image references to raw
// image bytes.
//
// A reference is either an inline data URI or a URL. URLs from known sharing
// services (Google Drive, Dropbox) point at HTML preview pages rather than
// the image itself, so they are rewritten to their direct-download form
// before fetching.
package imageref

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/cache"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/httputil"
)

// Resolver maps an image reference to loadable image bytes.
type Resolver interface {
	Resolve(ctx context.Context, ref string) ([]byte, error)
}

// IsDataURI reports whether ref is an inline data URI.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// DecodeDataURI decodes a base64 data URI into raw bytes.
func DecodeDataURI(ref string) ([]byte, error) {
	if !IsDataURI(ref) {
		return nil, errors.New(errors.ErrCodeInvalidImageRef, "not a data URI")
	}
	idx := strings.Index(ref, ",")
	if idx < 0 {
		return nil, errors.New(errors.ErrCodeInvalidImageRef, "malformed data URI: missing comma")
	}
	meta, payload := ref[len("data:"):idx], ref[idx+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New(errors.ErrCodeInvalidImageRef, "only base64 data URIs are supported")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImageRef, err, "invalid base64 payload")
	}
	return data, nil
}

// Normalize rewrites a reference URL to a direct-fetchable form.
// Data URIs pass through unchanged. Google Drive and Dropbox share links are
// rewritten; other http(s) URLs are returned as-is.
func Normalize(ref string) (string, error) {
	if IsDataURI(ref) {
		return ref, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidImageRef, err, "invalid image URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New(errors.ErrCodeInvalidImageRef, "image URL must use http or https")
	}

	switch {
	case strings.HasSuffix(u.Host, "drive.google.com"):
		return normalizeDrive(u)
	case strings.HasSuffix(u.Host, "dropbox.com"):
		return normalizeDropbox(u), nil
	default:
		return ref, nil
	}
}

// normalizeDrive rewrites a Drive share link to the uc?export=view form.
// Handles /file/d/<id>/... paths and open?id=<id> links.
func normalizeDrive(u *url.URL) (string, error) {
	id := u.Query().Get("id")
	if id == "" {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i, p := range parts {
			if p == "d" && i+1 < len(parts) {
				id = parts[i+1]
				break
			}
		}
	}
	if id == "" {
		return "", errors.New(errors.ErrCodeInvalidImageRef, "cannot extract file id from Drive link")
	}
	return "https://drive.google.com/uc?export=view&id=" + id, nil
}

// normalizeDropbox forces direct download by setting dl=1.
func normalizeDropbox(u *url.URL) string {
	q := u.Query()
	q.Set("dl", "1")
	u.RawQuery = q.Encode()
	return u.String()
}

// namespace classifies a URL host for cache key scoping.
func namespace(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "url:"
	}
	switch {
	case strings.HasSuffix(u.Host, "drive.google.com"):
		return "drive:"
	case strings.HasSuffix(u.Host, "dropbox.com"):
		return "dropbox:"
	default:
		return "url:"
	}
}

// HTTPResolver resolves references by decoding data URIs inline and fetching
// URLs over HTTP with retries. Fetched bodies are cached by normalized URL.
type HTTPResolver struct {
	Client *http.Client
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewHTTPResolver creates a resolver with the given cache.
// A nil c disables caching; a nil logger falls back to the default.
func NewHTTPResolver(c cache.Cache, logger *log.Logger) *HTTPResolver {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPResolver{
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		Logger: logger,
	}
}

// Resolve returns the image bytes for ref.
func (r *HTTPResolver) Resolve(ctx context.Context, ref string) ([]byte, error) {
	if IsDataURI(ref) {
		return DecodeDataURI(ref)
	}

	target, err := Normalize(ref)
	if err != nil {
		return nil, err
	}

	key := r.Keyer.HTTPKey(namespace(target), target)
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		r.Logger.Debug("image cache hit", "url", target)
		return data, nil
	}

	data, err := httputil.Fetch(ctx, r.Client, target)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "failed to fetch image")
	}

	if err := r.Cache.Set(ctx, key, data, cache.TTLImage); err != nil {
		r.Logger.Warn("failed to cache image", "url", target, "error", err)
	}
	return data, nil
}

// Ensure HTTPResolver implements Resolver.
var _ Resolver = (*HTTPResolver)(nil)
