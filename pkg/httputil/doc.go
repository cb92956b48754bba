// Package httputil provides HTTP utilities for fetching item images.
//
// # Overview
//
// This package provides infrastructure used by the image resolvers and the
// background-removal client:
//
//   - [Fetch]: GET with automatic retry and a capped response body
//   - [Retry]: Automatic retry with exponential backoff
//
// # Fetching
//
// [Fetch] downloads an image body with retry for transient failures:
//
//	data, err := httputil.Fetch(ctx, nil, "https://example.com/shirt.png")
//
// Responses larger than [MaxBodyBytes] are rejected, and non-2xx statuses
// that are not transient fail immediately with a [StatusError].
//
// # Retry
//
// [Retry] wraps arbitrary operations with automatic retry for transient
// failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Wrap transient errors with [RetryableError] so Retry knows to try again:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return callFlakyService()
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Max retries: 3
//   - Base backoff: 1 second (doubling each retry)
//   - Max body size: 20 MiB
//
// Fetched image bodies are cached by the resolvers via the cache package,
// not by this package.
package httputil
