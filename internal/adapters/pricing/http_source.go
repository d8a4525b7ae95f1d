// Package pricing implements live ETH/USD price sources over HTTP.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// httpSource holds what every JSON price endpoint needs.
type httpSource struct {
	client  *http.Client
	baseURL string
	headers map[string]string
}

func newHTTPSource(baseURL string, timeout time.Duration) httpSource {
	return httpSource{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		headers: map[string]string{"Accept": "application/json"},
	}
}

// getJSON fetches baseURL+path and decodes the body into out.
func (s httpSource) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
