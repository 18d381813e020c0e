// Package external holds the outbound HTTP clients: the resilience chassis
// (BaseClient) plus the Open-Meteo weather and geocoding client built on it.
// Webhook alert delivery reuses the same chassis so every call that leaves
// the process gets circuit breaking, retries with backoff, trace propagation,
// and mapping to domain error codes.
package external

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"sipwatch/internal/types"

	"github.com/sony/gobreaker/v2"
)

// RetryPolicy configures the retry behavior for the BaseClient.
type RetryPolicy struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryPolicy returns sensible defaults for external API calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		MinWait:    500 * time.Millisecond,
		MaxWait:    10 * time.Second,
	}
}

// BaseClient wraps an *http.Client and a circuit breaker so that the
// Open-Meteo client and webhook alert delivery share one retry and
// failure-handling path.
type BaseClient struct {
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	retryPolicy RetryPolicy
	userAgent   string
	sleepFn     func(time.Duration) // for testability; defaults to time.Sleep
}

// BaseClientOption is a functional option for configuring a BaseClient.
type BaseClientOption func(*BaseClient)

// WithSleepFunc overrides the sleep function used between retries.
// This is intended for testing to avoid real delays.
func WithSleepFunc(fn func(time.Duration)) BaseClientOption {
	return func(c *BaseClient) {
		c.sleepFn = fn
	}
}

// NewBaseClient creates a BaseClient with the given http client, circuit
// breaker settings name, retry policy, and user agent string.
func NewBaseClient(
	httpClient *http.Client,
	breakerName string,
	retryPolicy RetryPolicy,
	userAgent string,
	opts ...BaseClientOption,
) *BaseClient {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	bc := &BaseClient{
		client:      httpClient,
		breaker:     cb,
		retryPolicy: retryPolicy,
		userAgent:   userAgent,
		sleepFn:     time.Sleep,
	}

	for _, opt := range opts {
		opt(bc)
	}

	return bc
}

// NewBaseClientWithBreaker creates a BaseClient with a caller-provided circuit
// breaker. This is useful for testing or when sharing a breaker across clients.
func NewBaseClientWithBreaker(
	httpClient *http.Client,
	breaker *gobreaker.CircuitBreaker[*http.Response],
	retryPolicy RetryPolicy,
	userAgent string,
	opts ...BaseClientOption,
) *BaseClient {
	bc := &BaseClient{
		client:      httpClient,
		breaker:     breaker,
		retryPolicy: retryPolicy,
		userAgent:   userAgent,
		sleepFn:     time.Sleep,
	}

	for _, opt := range opts {
		opt(bc)
	}

	return bc
}

// Do executes the request through the circuit breaker, retrying 429 and 5xx
// responses (honoring Retry-After) up to the policy's MaxRetries. The request
// ID from the context, when present, propagates as X-B3-TraceId.
//
// On success (2xx/3xx, or a 4xx other than 429) the response is returned
// as-is and the caller owns the body. On exhausted retries or an open
// breaker, Do returns a types.AppError carrying the upstream error code.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if traceID := types.GetRequestID(req.Context()); traceID != "" {
		req.Header.Set("X-B3-TraceId", traceID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	// Retries need a replayable body. Bodiless requests skip this.
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, types.NewAppError(
				types.ErrCodeInternalUnexpected,
				"failed to read request body for retry support",
				err,
			)
		}
		req.Body.Close()
	}

	var lastResp *http.Response
	var lastErr error

	maxAttempts := 1 + c.retryPolicy.MaxRetries
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			req.ContentLength = int64(len(bodyBytes))
		}

		// 429 and 5xx count as breaker failures; other statuses do not.
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			r, doErr := c.client.Do(req)
			if doErr != nil {
				return nil, doErr
			}
			if r.StatusCode >= 500 {
				return r, fmt.Errorf("upstream returned %d", r.StatusCode)
			}
			if r.StatusCode == http.StatusTooManyRequests {
				return r, fmt.Errorf("upstream returned 429")
			}
			return r, nil
		})

		if err == nil {
			return resp, nil
		}

		lastErr = err
		if resp != nil {
			// Keep only the final attempt's body for error mapping.
			if attempt < maxAttempts-1 {
				resp.Body.Close()
			} else {
				lastResp = resp
			}
		}

		// An open breaker means the upstream is already failing; stop here.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			break
		}

		// Non-retryable status, hand it back unchanged.
		if resp != nil && resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return resp, nil
		}

		if attempt < maxAttempts-1 {
			c.sleepFn(c.computeBackoff(attempt, resp))
		}
	}

	if lastResp != nil {
		lastResp.Body.Close()
	}

	return nil, c.mapError(lastResp, lastErr)
}

// computeBackoff returns the wait before the next attempt: the Retry-After
// header when the upstream sent one, otherwise exponential backoff with full
// jitter clamped to [MinWait, MaxWait].
func (c *BaseClient) computeBackoff(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
				wait := time.Duration(seconds) * time.Second
				if wait > c.retryPolicy.MaxWait {
					wait = c.retryPolicy.MaxWait
				}
				return wait
			}
			// Retry-After may also be an HTTP-date.
			if t, err := http.ParseTime(retryAfter); err == nil {
				wait := time.Until(t)
				if wait <= 0 {
					return c.retryPolicy.MinWait
				}
				if wait > c.retryPolicy.MaxWait {
					wait = c.retryPolicy.MaxWait
				}
				return wait
			}
		}
	}

	base := float64(c.retryPolicy.MinWait) * math.Pow(2, float64(attempt))
	maxWait := float64(c.retryPolicy.MaxWait)
	if base > maxWait {
		base = maxWait
	}

	// Full jitter over [MinWait, base].
	minWait := float64(c.retryPolicy.MinWait)
	if base <= minWait {
		return c.retryPolicy.MinWait
	}
	jittered := minWait + rand.Float64()*(base-minWait)
	return time.Duration(jittered)
}

// mapError translates transport-level failures into AppErrors the scoring
// and alerting layers can act on.
func (c *BaseClient) mapError(resp *http.Response, err error) *types.AppError {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			"circuit breaker is open; upstream service unavailable",
			err,
		)
	}

	if resp != nil {
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return types.NewAppError(
				types.ErrCodeUpstreamRateLimited,
				"upstream rate limit exceeded",
				err,
			)
		case resp.StatusCode >= 500:
			return types.NewAppError(
				types.ErrCodeUpstreamUnavailable,
				fmt.Sprintf("upstream returned %d after retries", resp.StatusCode),
				err,
			)
		}
	}

	// Network or DNS failure with no usable response.
	return types.NewAppError(
		types.ErrCodeInternalUnexpected,
		"upstream request failed",
		err,
	)
}
