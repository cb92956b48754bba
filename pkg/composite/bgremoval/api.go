package bgremoval

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/httputil"
	"github.com/areebaatariq/turnstyle-platform-sub001/pkg/observability"
)

// APIRemover sends images to an external background-removal service.
// The service receives a PNG body via POST and responds with the cut-out PNG.
type APIRemover struct {
	Endpoint string
	Client   *http.Client
}

// NewAPIRemover creates a remover backed by the service at endpoint.
func NewAPIRemover(endpoint string, client *http.Client) Remover {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &APIRemover{Endpoint: endpoint, Client: client}
}

// Name returns "api".
func (r *APIRemover) Name() string { return "api" }

// Remove posts the image to the service and decodes the returned cutout.
// Transient service failures are retried with backoff.
func (r *APIRemover) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	payload := buf.Bytes()

	var result image.Image
	err := httputil.RetryWithBackoff(ctx, func() error {
		out, err := r.removeOnce(ctx, payload)
		if err != nil {
			return err
		}
		result = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *APIRemover) removeOnce(ctx context.Context, payload []byte) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/png")

	start := time.Now()
	observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, &httputil.RetryableError{Err: err}
	}
	defer resp.Body.Close()

	observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &httputil.RetryableError{Err: fmt.Errorf("removal service returned %d", resp.StatusCode)}
	default:
		return nil, fmt.Errorf("removal service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, httputil.MaxBodyBytes))
	if err != nil {
		return nil, &httputil.RetryableError{Err: err}
	}

	out, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("removal service returned invalid image: %w", err)
	}
	return out, nil
}
