package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tesseract-hub/research-orchestrator/internal/urlfilter"
)

// errQuotaOrRateLimited is the sentinel fed to the breaker so that only
// genuine quota/rate-limit signals trip the degraded latch - transient
// transport errors are retried instead (see doJSON) and never open
// the breaker on their own.
var errQuotaOrRateLimited = errors.New("provider quota exhausted or rate limited")

// baseAdapter carries the shared HTTP client, retry policy and
// degraded-latch circuit breaker every concrete provider embeds.
// Grounded on libretranslate.go's httpClient/backoff shape, with the
// manual healthy/failureCount bookkeeping there replaced by
// sony/gobreaker - a real dependency already present (indirectly) in
// the teacher's own monorepo (search-service/go.mod).
type baseAdapter struct {
	name       string
	apiKey     string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	log        *logrus.Entry
}

func newBaseAdapter(name, apiKey string, timeout time.Duration, maxRetries int, log *logrus.Entry) *baseAdapter {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
	}
	return &baseAdapter{
		name:       name,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    gobreaker.NewCircuitBreaker(settings),
		maxRetries: maxRetries,
		log:        log.WithField("provider", name),
	}
}

func (b *baseAdapter) IsDegraded() bool {
	return b.breaker.State() == gobreaker.StateOpen
}

// doJSON performs an HTTP request with retry-with-backoff for transient
// transport errors, then reports the observed status to the breaker so
// that a 402/429 response sticks the provider into the degraded latch.
func (b *baseAdapter) doJSON(ctx context.Context, method, url string, headers map[string]string, body []byte) ([]byte, Status, error) {
	if b.IsDegraded() {
		return nil, StatusOK, nil
	}

	var lastErr error
	var respBody []byte
	var status Status

	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, StatusTransportError, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, StatusTransportError, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := b.httpClient.Do(req)
		if err != nil {
			lastErr = err
			status = StatusTransportError
			continue
		}

		respBody, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			status = StatusTransportError
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			b.reportSuccess()
			return respBody, StatusOK, nil
		case http.StatusPaymentRequired:
			b.reportQuota()
			return nil, StatusQuotaExhausted, nil
		case http.StatusTooManyRequests:
			b.reportQuota()
			return nil, StatusRateLimited, nil
		case http.StatusUnauthorized, http.StatusForbidden:
			b.reportSuccess()
			return nil, StatusAuthFailed, fmt.Errorf("%s: auth failed (%d)", b.name, resp.StatusCode)
		default:
			lastErr = fmt.Errorf("%s: unexpected status %d", b.name, resp.StatusCode)
			status = StatusTransportError
		}
	}

	return nil, status, lastErr
}

func (b *baseAdapter) reportQuota() {
	_, _ = b.breaker.Execute(func() (interface{}, error) {
		return nil, errQuotaOrRateLimited
	})
	b.log.Warn("provider entered degraded state")
}

func (b *baseAdapter) reportSuccess() {
	_, _ = b.breaker.Execute(func() (interface{}, error) {
		return nil, nil
	})
}

func filterAndCap(hits []Hit) []Hit {
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		if !urlfilter.IsValid(h.URL) {
			continue
		}
		h.Description = truncate(h.Description, descriptionCap)
		out = append(out, h)
	}
	return out
}
