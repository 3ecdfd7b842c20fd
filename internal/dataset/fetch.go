package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// RetryPolicy bounds how hard the loader tries before giving up on a site.
type RetryPolicy struct {
	MaxRetries int
	FirstDelay time.Duration
	MaxDelay   time.Duration
}

// delay doubles FirstDelay per attempt, capped at MaxDelay.
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.FirstDelay
	for i := 0; i < attempt && (p.MaxDelay <= 0 || d < p.MaxDelay); i++ {
		d *= 2
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

var (
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errSourceTripped = errors.New("dataset source unavailable")
)

// fetch GETs url through the breaker. Only 5xx, 429 and transport errors are
// retried. A 404 is handed back to the caller as a normal response.
func (l *HTTPLoader) fetch(ctx context.Context, url string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv")

		out, err := l.circuit.Execute(func() (interface{}, error) {
			resp, err := l.client.Do(req)
			if err != nil {
				return nil, err
			}
			switch code := resp.StatusCode; {
			case code == http.StatusNotFound, code >= 200 && code < 300:
				return resp, nil
			case code == http.StatusTooManyRequests, code >= 500:
				drain(resp)
				return nil, fmt.Errorf("%w: %d", errServerError, code)
			default:
				drain(resp)
				return nil, fmt.Errorf("%w: %d", errUnexpected, code)
			}
		})
		if err == nil {
			return out.(*http.Response), nil
		}

		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, fmt.Errorf("%w: %v", errSourceTripped, err)
		case errors.Is(err, errUnexpected), attempt >= l.retry.MaxRetries:
			return nil, err
		}

		t := time.NewTimer(l.retry.delay(attempt))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
