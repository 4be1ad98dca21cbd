package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/endersclarity/nevada-county-kids-events/internal/model"
)

// FeedError represents a non-2xx response from a feed endpoint.
type FeedError struct {
	StatusCode int
	Body       []byte
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed error %d: %s", e.StatusCode, string(e.Body))
}

// Feed fetches raw events from an HTTP endpoint serving a JSON array of
// raw event records. Source-specific extraction (RSS, iCal, rendered HTML)
// lives in the external adapters behind those endpoints; the aggregation
// core only consumes their output.
type Feed struct {
	name       string
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Feed.
type Option func(*Feed)

// NewFeed creates a fetcher for one source endpoint.
func NewFeed(name, url string, opts ...Option) *Feed {
	f := &Feed{
		name: name,
		url:  url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Feed) {
		f.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) {
		f.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Feed) {
		f.httpClient = hc
	}
}

// Name returns the source name this feed produces for.
func (f *Feed) Name() string {
	return f.name
}

// Fetch retrieves and decodes the feed. It fails or succeeds as a whole.
func (f *Feed) Fetch(ctx context.Context) ([]model.RawEvent, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &FeedError{StatusCode: resp.StatusCode, Body: body}
	}

	var events []model.RawEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", f.name, err)
	}

	f.logger.Debug("fetched feed",
		"source", f.name,
		"events", len(events),
		"duration", time.Since(start),
	)

	return events, nil
}
