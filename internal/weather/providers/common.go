package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"

	"github.com/i474232898/weather-now/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

var (
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// Client errors such as an unknown city say nothing about the
		// provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
	})
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker. 4xx answers other than 429 are returned as
// *weather.APIError without retrying.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				defer resp.Body.Close()
				return nil, decodeAPIError(resp)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if isClientError(err) {
			return nil, err
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= cfg.Backoff.MaxRetries {
			return nil, lastErr
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}

// decodeAPIError reads OpenWeather's {"cod": ..., "message": ...} error
// body. cod may be a number or a string.
func decodeAPIError(resp *http.Response) *weather.APIError {
	apiErr := &weather.APIError{Code: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || !gjson.ValidBytes(body) {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}

	if cod := gjson.GetBytes(body, "cod"); cod.Exists() && cod.Int() != 0 {
		apiErr.Code = int(cod.Int())
	}
	apiErr.Message = gjson.GetBytes(body, "message").String()
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func isClientError(err error) bool {
	var apiErr *weather.APIError
	return errors.As(err, &apiErr) && apiErr.Code < 500
}
