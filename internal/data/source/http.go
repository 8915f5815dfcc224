package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-presence-timeline/internal/core/model"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPSource fetches history from GET {base}/api/history/{device}[/{date}]
type HTTPSource struct {
	baseURL *url.URL
	client  *http.Client
}

// NewHTTPSource creates an HTTPSource for the given base URL
func NewHTTPSource(baseURL string, timeout time.Duration) (*HTTPSource, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("http source requires a base URL")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPSource{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (s *HTTPSource) endpoint(deviceID, window string) string {
	u := *s.baseURL
	p := strings.TrimRight(u.Path, "/") + "/api/history/" + url.PathEscape(deviceID)
	if window != "" {
		p += "/" + url.PathEscape(window)
	}
	u.Path = p
	u.RawPath = ""
	return u.String()
}

// FetchEvents performs one request; non-2xx responses are errors
func (s *HTTPSource) FetchEvents(ctx context.Context, deviceID, window string) ([]model.PresenceEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(deviceID, window), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build history request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("history request for %s returned %s: %s", deviceID, resp.Status, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read history response: %w", err)
	}

	var records []HostRecord
	if len(strings.TrimSpace(string(body))) == 0 {
		return []model.PresenceEvent{}, nil
	}
	if err := sonic.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to decode history response: %w", err)
	}
	return toEvents(records), nil
}
