// Package transport issues descriptor requests against the provider API.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/openweathermap-client/internal/request"
)

// DefaultBaseURL is the provider's API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Response is a raw provider reply.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client sends requests with the API key injected as appid. It is safe for
// concurrent use.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithBackoff replaces the retry policy.
func WithBackoff(b BackoffConfig) Option {
	return func(c *Client) {
		c.backoff = b
	}
}

// NewClient returns a client using httpClient, or a client with a 10s
// timeout if httpClient is nil.
func NewClient(httpClient *http.Client, apiKey string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    httpClient,
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweathermap",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get sends desc and returns the reply whatever its status. Errors are
// transport failures only: network errors, exhausted breaker, cancellation.
func (c *Client) Get(ctx context.Context, desc request.Descriptor) (Response, error) {
	if c.apiKey == "" {
		return Response{}, fmt.Errorf("openweathermap api key is not configured")
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		for k, v := range desc.Params {
			values.Set(k, v)
		}
		values.Set("appid", c.apiKey)

		u := fmt.Sprintf("%s/%s?%s", c.baseURL, desc.Path, values.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	return do(ctx, c.http, c.backoff, c.circuit, buildRequest)
}
