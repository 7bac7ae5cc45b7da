package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rshade/recordview/internal/logging"
)

// Default HTTP source settings.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10.0
	DefaultBurst     = 5

	maxErrorBody = 512
)

// Source is the remote collaborator behind the Gateway.
type Source interface {
	// Records runs a records query. rawQuery is an encoded query string.
	Records(ctx context.Context, rawQuery string) (RawPage, error)
	Sellers(ctx context.Context) (Index, error)
	Customers(ctx context.Context) (Index, error)
}

// HTTPConfig configures an HTTPSource.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	// RateLimit is requests per second; zero or negative disables limiting.
	RateLimit float64
	Burst     int
	// Client overrides the default client, e.g. in tests.
	Client *http.Client
}

// HTTPSource reads the records API over HTTP.
type HTTPSource struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPSource creates an HTTPSource for cfg.
func NewHTTPSource(cfg HTTPConfig) (*HTTPSource, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrEmptyBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				MaxIdleConns:    20,
				MaxConnsPerHost: 10,
				IdleConnTimeout: 20 * time.Second,
			},
		}
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		if burst < 1 {
			burst = DefaultBurst
		}
	}

	return &HTTPSource{
		baseURL: base,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

// BaseURL returns the normalized base URL.
func (s *HTTPSource) BaseURL() string {
	return s.baseURL
}

// Records implements Source.
func (s *HTTPSource) Records(ctx context.Context, rawQuery string) (RawPage, error) {
	var page RawPage
	err := s.getJSON(ctx, "records", "/records", rawQuery, &page)
	return page, err
}

// Sellers implements Source.
func (s *HTTPSource) Sellers(ctx context.Context) (Index, error) {
	var ix Index
	err := s.getJSON(ctx, "sellers", "/sellers", "", &ix)
	return ix, err
}

// Customers implements Source.
func (s *HTTPSource) Customers(ctx context.Context) (Index, error) {
	var ix Index
	err := s.getJSON(ctx, "customers", "/customers", "", &ix)
	return ix, err
}

func (s *HTTPSource) getJSON(ctx context.Context, op, path, rawQuery string, out any) error {
	log := logging.FromContext(ctx)

	target := s.baseURL + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return &FetchError{Op: op, URL: target, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &FetchError{Op: op, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if traceID := logging.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Request-Id", traceID)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return &FetchError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Ctx(ctx).
		Str("component", "gateway").
		Str("operation", op).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration_ms", time.Since(start)).
		Msg("remote request completed")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &FetchError{
			Op:         op,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", ErrUnexpectedCode, strings.TrimSpace(string(body))),
		}
	}

	if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
		return &FetchError{
			Op:         op,
			URL:        target,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decoding response: %w", decodeErr),
		}
	}
	return nil
}
