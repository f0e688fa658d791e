package loader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/poiesic/docchat/core"
	"github.com/tmc/langchaingo/documentloaders"
)

// maxPageBytes bounds how much of a response body is parsed.
const maxPageBytes = 10 << 20

// WebLoader fetches a web page and loads its visible text.
type WebLoader struct {
	client *http.Client
	logger *slog.Logger
}

// WebOption configures a WebLoader.
type WebOption func(*WebLoader)

// WithHTTPClient sets the client used to fetch pages.
// Default is a client with a 30 second timeout.
func WithHTTPClient(client *http.Client) WebOption {
	return func(w *WebLoader) {
		if client != nil {
			w.client = client
		}
	}
}

// WithWebLogger sets a custom logger.
func WithWebLogger(logger *slog.Logger) WebOption {
	return func(w *WebLoader) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWebLoader creates a new web page loader.
func NewWebLoader(opts ...WebOption) *WebLoader {
	w := &WebLoader{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "web-loader")
	return w
}

// Load fetches rawURL and returns its text as one document whose source is
// the URL. Only http and https URLs are accepted.
func (w *WebLoader) Load(ctx context.Context, rawURL string) ([]core.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s: not an http(s) url", core.ErrLoad, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrLoad, rawURL, err)
	}
	req.Header.Set("User-Agent", "docchat/1.0")

	w.logger.Debug("fetching page", "url", rawURL)
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrLoad, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: unexpected status %s", core.ErrLoad, rawURL, resp.Status)
	}

	docs, err := documentloaders.NewHTML(io.LimitReader(resp.Body, maxPageBytes)).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrLoad, rawURL, err)
	}
	return fromSchema(docs, rawURL, false), nil
}
