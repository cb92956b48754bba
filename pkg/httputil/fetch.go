package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/observability"
)

// MaxBodyBytes caps how much of a response body Fetch will read.
// Item images are photos, not archives; anything larger is rejected.
const MaxBodyBytes = 20 << 20 // 20 MiB

// StatusError is returned by [Fetch] for non-2xx responses.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}

// Fetch performs a GET request with retry on transient failures and returns
// the response body. Network errors, 5xx responses, and 429 responses are
// retried with exponential backoff; other non-2xx statuses fail immediately
// with a [StatusError].
//
// If client is nil, [http.DefaultClient] is used. The body is read in full,
// capped at [MaxBodyBytes].
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		data, err := fetchOnce(ctx, client, url)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	return body, err
}

func fetchOnce(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fallthrough to read
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RetryableError{Err: &StatusError{StatusCode: resp.StatusCode, URL: url}}
	default:
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if len(data) > MaxBodyBytes {
		return nil, fmt.Errorf("response body exceeds %d bytes: %s", MaxBodyBytes, url)
	}
	return data, nil
}
