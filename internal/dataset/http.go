package dataset

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/solar-farm-simulator/internal/solar"
)

// HTTPLoader fetches `<baseURL>/<site>_data.csv`. A 404 means the site has
// no recorded data.
type HTTPLoader struct {
	baseURL string
	client  *http.Client
	retry   RetryPolicy
	circuit *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// NewHTTPLoader uses http.DefaultClient when client is nil.
func NewHTTPLoader(client *http.Client, baseURL string, log *zap.Logger) *HTTPLoader {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dataset-source",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name), zap.Stringer("from", from), zap.Stringer("to", to))
		},
	})

	return &HTTPLoader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		retry:   RetryPolicy{MaxRetries: 3, FirstDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second},
		circuit: cb,
		log:     log,
	}
}

// WithRetry replaces the retry policy.
func (l *HTTPLoader) WithRetry(p RetryPolicy) *HTTPLoader {
	l.retry = p
	return l
}

// Load implements solar.Loader.
func (l *HTTPLoader) Load(ctx context.Context, siteID string) (solar.Dataset, error) {
	u := l.baseURL + "/" + FileName(siteID)

	resp, err := l.fetch(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		l.log.Warn("dataset not found at source", zap.String("site", siteID), zap.String("url", u))
		return nil, nil
	}

	ds, skipped, err := ParseCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", u, err)
	}
	if skipped > 0 {
		l.log.Warn("skipped unreadable dataset records",
			zap.String("site", siteID), zap.String("url", u), zap.Int("skipped", skipped))
	}
	return ds, nil
}
