package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// maxDocumentSize caps a downloaded GeoJSON document at 16 MiB.
const maxDocumentSize = 16 << 20

// HTTPProviderConfig configures the resilient GeoJSON download client.
type HTTPProviderConfig struct {
	// BaseURL is the document root; the event document is fetched from
	// <BaseURL>/<eventID>.geojson unless URLFor overrides it.
	BaseURL string

	// URLFor optionally maps an event id to a full document URL, e.g.
	// from Definition.GeoJSONURL.
	URLFor func(eventID string) string

	// Timeout bounds one HTTP attempt. Default: 10 seconds.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts on transient
	// failures. Default: 3.
	MaxRetries uint64

	// InitialInterval is the first retry backoff delay. Default: 250ms.
	InitialInterval time.Duration

	Logger zerolog.Logger
}

// HTTPProvider downloads GeoJSON documents over HTTP with exponential
// backoff retries and a circuit breaker, so a flapping CDN does not
// stall every observer start.
type HTTPProvider struct {
	cfg     HTTPProviderConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewHTTPProvider creates the provider, filling config defaults.
func NewHTTPProvider(cfg HTTPProviderConfig) *HTTPProvider {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 250 * time.Millisecond
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "geojson-provider",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			cfg.Logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("geojson provider circuit state changed")
		},
	})

	return &HTTPProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
	}
}

// Get downloads the event's GeoJSON document.
func (p *HTTPProvider) Get(ctx context.Context, eventID string) ([]byte, error) {
	docURL, err := p.documentURL(eventID)
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.cfg.InitialInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, p.cfg.MaxRetries), ctx)

	var body []byte
	operation := func() error {
		raw, err := p.breaker.Execute(func() ([]byte, error) {
			return p.fetch(ctx, docURL)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			var status *statusError
			if errors.As(err, &status) && status.code >= 400 && status.code < 500 {
				// Client errors will not improve on retry.
				return backoff.Permanent(err)
			}
			return err
		}
		body = raw
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAreaUnavailable, err)
	}
	return body, nil
}

func (p *HTTPProvider) documentURL(eventID string) (string, error) {
	if p.cfg.URLFor != nil {
		if u := p.cfg.URLFor(eventID); u != "" {
			return u, nil
		}
	}
	if p.cfg.BaseURL == "" {
		return "", fmt.Errorf("%w: no URL for event %q", ErrAreaUnavailable, eventID)
	}
	return strings.TrimSuffix(p.cfg.BaseURL, "/") + "/" + url.PathEscape(eventID) + ".geojson", nil
}

func (p *HTTPProvider) fetch(ctx context.Context, docURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.code)
}
