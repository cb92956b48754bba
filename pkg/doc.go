// Package pkg provides the core libraries for Turnstyle look composition.
//
// # Overview
//
// Turnstyle lets users arrange wardrobe item images on a 2D canvas, flatten
// an arrangement into a shareable composite image, and persist looks with a
// minimal diff against stored placement records. The pkg directory is
// organized into four main areas:
//
//  1. Domain model ([geometry], [arrangement], [gesture], [canvas])
//  2. Persistence ([reconcile] plus internal/store backends)
//  3. Rendering ([imageref], [composite], [composite/bgremoval])
//  4. Infrastructure ([cache], [httputil], [errors], [observability])
//
// # Architecture
//
// The typical data flow through Turnstyle:
//
//	Pointer events
//	         ↓
//	    [gesture] package (recognize drag, resize, drop, remove)
//	         ↓
//	    [arrangement] package (authoritative placement state)
//	         ↓
//	    [reconcile] package (diff against stored records, apply plan)
//	         ↓
//	    [composite] package (flatten to a PNG data URI)
//
// # Quick Start
//
// Drive a full editing session:
//
//	import (
//	    "context"
//	    "github.com/areebaatariq/turnstyle-platform-sub001/pkg/composer"
//	    "github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry"
//	)
//
//	session := composer.NewSession(composer.Options{
//	    Profile:    geometry.RegularProfile(),
//	    Store:      st,
//	    Generator:  gen,
//	    Palette:    closet.Lookup,
//	    CanvasSize: view.Size,
//	})
//
//	// Pointer events flow through the controller.
//	session.Controller().PointerDown(subject, ev)
//
//	// Save diffs the arrangement against stored records and renders
//	// the composite in the background.
//	err := session.Save(ctx, "weekend look")
//
// # Main Packages
//
// [geometry] - Percentage-based coordinate model: device-class layout
// profiles, default slot grids, scale and position clamping.
//
// [arrangement] - Ordered in-memory placement state, at most one entry per
// wardrobe item, with insertion order driving paint order.
//
// [gesture] - Pointer gesture recognition: drag with slop threshold, compact
// hold-to-drag, pinch resize, armed remove confirmation, drop targets.
//
// [canvas] - Pure scene construction: converts entries plus transient
// gesture state into positioned boxes for any front end to draw.
//
// [reconcile] - The save diff engine. Compares the arrangement with stored
// placement records and produces a create/update/delete plan, applied with
// creates first and the rest concurrently.
//
// [imageref] - Image reference resolution: data URIs, Google Drive and
// Dropbox share links, cached HTTP fetching.
//
// [composite] - Flattens an arrangement to a PNG data URI using the
// painter's algorithm over a white canvas.
//
// [composite/bgremoval] - Optional background removal: chroma keying or an
// external API, content-addressed caching of cutouts.
//
// [composer] - Session orchestration tying all of the above together.
//
// [cache] - Cache interface with file, Redis, and null implementations plus
// domain key builders.
//
// [httputil] - HTTP fetching with retries and exponential backoff.
//
// [errors] - Coded errors with user-facing messages and input validation.
//
// [observability] - Pluggable hooks for cache, HTTP, and render events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/reconcile/...    # Specific package
//
// [geometry]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/geometry
// [arrangement]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/arrangement
// [gesture]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/gesture
// [canvas]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/canvas
// [reconcile]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/reconcile
// [imageref]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/imageref
// [composite]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/composite
// [composite/bgremoval]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/composite/bgremoval
// [composer]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/composer
// [cache]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/errors
// [observability]: https://pkg.go.dev/github.com/areebaatariq/turnstyle-platform-sub001/pkg/observability
package pkg
