package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/narcan-map/internal/domain"
)

// HTTPLoader fetches the case CSV over HTTP(S).
// It implements domain.Loader.
type HTTPLoader struct {
	url        string
	httpClient *http.Client
}

// NewHTTPLoader creates a loader for csvPath resolved against basePath.
// A zero timeout leaves requests unbounded; cancellation still flows through the context.
func NewHTTPLoader(basePath, csvPath string, timeout time.Duration) (*HTTPLoader, error) {
	u, err := ResolveURL(basePath, csvPath)
	if err != nil {
		return nil, err
	}
	return &HTTPLoader{
		url:        u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// ResolveURL joins a deployment base path with the CSV path. An absolute csvPath is used as-is.
func ResolveURL(basePath, csvPath string) (string, error) {
	if p, err := url.Parse(csvPath); err == nil && p.IsAbs() {
		return csvPath, nil
	}
	if basePath == "" {
		return "", fmt.Errorf("resolve csv url: base path required for relative path %q", csvPath)
	}
	base, err := url.Parse(basePath)
	if err != nil || !base.IsAbs() {
		return "", fmt.Errorf("resolve csv url: invalid base path %q", basePath)
	}
	joined, err := url.JoinPath(basePath, strings.TrimPrefix(csvPath, "/"))
	if err != nil {
		return "", fmt.Errorf("resolve csv url: %w", err)
	}
	return joined, nil
}

// URL returns the resolved resource URL.
func (l *HTTPLoader) URL() string { return l.url }

// Load retrieves the full CSV body. Any transport error or non-2xx status is a load failure.
func (l *HTTPLoader) Load(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return "", domain.LoadError(l.url, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", domain.LoadError(l.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", domain.LoadError(l.url, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.LoadError(l.url, fmt.Errorf("read body: %w", err))
	}
	return string(body), nil
}
