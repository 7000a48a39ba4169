package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrCollectorStatus is returned when the collector answers with a non-200 status.
var ErrCollectorStatus = errors.New("collector returned unexpected status")

const maxCollectorBody = 1 << 20

type collectResponse struct {
	Results []Result `json:"results"`
}

// HTTPAdapter calls a collector service over HTTP:
//
//	GET {base}/collect?q=<keyword>&country=<country>&platform=<platform>
//
// which answers {"results":[{"position":1,"url":"..."}]}.
type HTTPAdapter struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAdapter creates an adapter for the collector at baseURL.
func NewHTTPAdapter(baseURL string, timeout time.Duration) *HTTPAdapter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPAdapter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Collect fetches the result list for keyword on platform.
func (a *HTTPAdapter) Collect(ctx context.Context, keyword, country, platform string) ([]Result, error) {
	u, err := url.Parse(a.baseURL + "/collect")
	if err != nil {
		return nil, fmt.Errorf("invalid collector url: %w", err)
	}
	q := u.Query()
	q.Set("q", keyword)
	q.Set("country", country)
	q.Set("platform", platform)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build collector request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "seotrack-collector/1.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("collector request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxCollectorBody))
		return nil, fmt.Errorf("%w: %d for %s", ErrCollectorStatus, resp.StatusCode, platform)
	}

	var payload collectResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCollectorBody)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode collector response: %w", err)
	}
	return payload.Results, nil
}
