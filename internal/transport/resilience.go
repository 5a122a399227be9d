package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	ErrRateLimited = errors.New("rate limited")
	ErrServerError = errors.New("server error")
	ErrCircuitOpen = errors.New("circuit breaker open")

	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// statusError carries a retryable reply so it can be returned as-is once
// retries run out.
type statusError struct {
	resp Response
	kind error
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%v: %d", e.kind, e.resp.StatusCode)
}

func (e *statusError) Unwrap() error {
	return e.kind
}

// do executes the request built by buildRequest with retries, exponential
// backoff and a circuit breaker. 429 and 5xx replies are retried; any other
// status is returned to the caller for classification and does not count
// as a breaker failure.
func do(
	ctx context.Context,
	client *http.Client,
	backoff BackoffConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) (Response, error) {
	if client == nil {
		return Response{}, errNoHTTPClient
	}
	if backoff.MaxRetries < 0 || backoff.InitialInterval <= 0 {
		return Response{}, errInvalidConfig
	}

	var attempt int
	for {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}

		req, err := buildRequest(ctx)
		if err != nil {
			return Response{}, err
		}

		result, err := cb.Execute(func() (interface{}, error) {
			httpResp, execErr := client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			defer httpResp.Body.Close()

			body, readErr := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
			if readErr != nil {
				return nil, fmt.Errorf("read response body: %w", readErr)
			}
			resp := Response{StatusCode: httpResp.StatusCode, Body: body}

			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, &statusError{resp: resp, kind: ErrRateLimited}
			}
			if resp.StatusCode >= 500 {
				return nil, &statusError{resp: resp, kind: ErrServerError}
			}
			return resp, nil
		})

		if err == nil {
			resp, ok := result.(Response)
			if !ok {
				return Response{}, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Response{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}

		if attempt >= backoff.MaxRetries {
			var se *statusError
			if errors.As(err, &se) {
				return se.resp, nil
			}
			return Response{}, err
		}

		delay := backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > backoff.MaxInterval && backoff.MaxInterval > 0 {
			delay = backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Response{}, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
