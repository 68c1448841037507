package geolib

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"
)

type httpClient struct {
	userAgent      string
	client         *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
}

func (h httpClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", h.userAgent)

	return h.circuitBreaker.Do(req.Context(), func(ctx context.Context) (*http.Response, error) {
		if err := h.rateLimiter.Wait(ctx); err != nil {
			return nil, ignoreError(err)
		}

		resp, err := h.client.Do(req.WithContext(ctx))
		if err != nil {
			if resp != nil {
				flushResponse(resp.Body)
			}

			// we've cancelled it ourselves, netloc is not guilty.
			if ctx.Err() != nil {
				return nil, ignoreError(err)
			}

			return nil, err
		}

		if resp.StatusCode >= http.StatusBadRequest {
			flushResponse(resp.Body)

			return nil, fmt.Errorf("netloc has responded with %s", resp.Status)
		}

		return resp, nil
	})
}

// Shutdown releases timers of the circuit breaker.
func (h httpClient) Shutdown() {
	h.circuitBreaker.Shutdown()
}

func flushResponse(body io.ReadCloser) {
	io.Copy(io.Discard, body) // nolint: errcheck
	body.Close()
}

// NewHTTPClient prepares a new HTTP client, wraps it with rate limiter,
// circuit breaker, sets a user agent etc.
//
// Please see https://pkg.go.dev/golang.org/x/time/rate to get a meaning
// of rate limiter parameters. ip-api.com allows 45 requests per minute
// for the free tier so an interval of 1.4s with a burst of 1 is a safe
// choice there.
//
// A meaning of circuit breaker parameters:
//
// circuitBreakerOpenThreshold - this is a threshold of failures when
// circuit breaker becomes OPEN. So, if you pass 3 here, then after 3
// failures the next failure switches circuit breaker into OPEN state
// and it blocks access to a target.
//
// circuitBreakerHalfOpenTimeout - when circuit breaker is open, we
// switch it into HALF_OPEN state after this time period. Within this
// state we allow 1 attempt. If this attempt fails, then it goes into
// OPEN state again. If succeed - goes to CLOSED.
//
// circuitBreakerResetFailuresTimeout - each time period when circuit
// breaker is closed, we reset a failure counter. So, if you pass 10s
// here and make 2 errors, then after 10 seconds this counter is going to
// be reset.
//
// Errors caused by cancelled contexts are not counted as failures.
func NewHTTPClient(client *http.Client,
	userAgent string,
	rateLimiterInterval time.Duration,
	rateLimitBurst int,
	circuitBreakerOpenThreshold uint32,
	circuitBreakerHalfOpenTimeout, circuitBreakerResetFailuresTimeout time.Duration) HTTPClient {
	return httpClient{
		userAgent:   userAgent,
		client:      client,
		rateLimiter: rate.NewLimiter(rate.Every(rateLimiterInterval), rateLimitBurst),
		circuitBreaker: newCircuitBreaker(clock.New(),
			circuitBreakerOpenThreshold,
			circuitBreakerHalfOpenTimeout,
			circuitBreakerResetFailuresTimeout),
	}
}
