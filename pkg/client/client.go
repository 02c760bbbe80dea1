// Package client provides the HTTP client the pagination engine issues its requests
// through: authenticated JSON GETs against a fixed API origin.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/paged-api-client/pkg/logging"
	"github.com/Sternrassler/paged-api-client/pkg/pagination"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apiclient_requests_total",
		Help: "Total API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "apiclient_request_duration_seconds",
		Help:    "API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "apiclient_errors_total",
		Help: "Total API errors by class",
	}, []string{"class"})
)

const (
	// HeaderRequestID carries a per-request UUID for log correlation.
	HeaderRequestID = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// Client is an authenticated JSON API client. It implements pagination.Getter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     oauth2.TokenSource
	config     Config
	logger     zerolog.Logger
}

var _ pagination.Getter = (*Client)(nil)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API origin every request path is appended to,
	// e.g. "https://api.example.com/v1".
	BaseURL string `validate:"required,url"`

	// UserAgent identifies the application to the API.
	UserAgent string `validate:"required"`

	// TokenSource supplies bearer tokens. Nil sends unauthenticated requests.
	TokenSource oauth2.TokenSource

	// Timeout bounds each HTTP round trip.
	Timeout time.Duration `validate:"gt=0"`
}

// DefaultConfig returns a configuration with a 30s request timeout.
func DefaultConfig(baseURL, userAgent string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

var validate = validator.New()

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:  cfg.TokenSource,
		config:  cfg,
		logger:  logging.NewLogger("client"),
	}, nil
}

// BaseURL returns the origin prefixed to every path, without trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET of path and decodes the JSON response into out.
// Query params replace same-named params already embedded in path.
func (c *Client) Get(ctx context.Context, path string, query []pagination.QueryParam, out any) error {
	req, err := c.NewRequest(ctx, path, query)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		c.logger.Warn().
			Err(err).
			Str("endpoint", req.URL.Path).
			Str("error_class", string(ErrorClassDecode)).
			Msg("Response decode failed")
		return fmt.Errorf("%w: %s: %w", ErrDecode, req.URL.Path, err)
	}
	return nil
}

// NewRequest builds a GET request for path relative to the base URL.
func (c *Client) NewRequest(ctx context.Context, path string, query []pagination.QueryParam) (*http.Request, error) {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse request url: %w", err)
	}

	if len(query) > 0 {
		values := u.Query()
		for _, p := range query {
			values.Del(p.Key)
		}
		for _, p := range query {
			values.Add(p.Key, p.Value)
		}
		u.RawQuery = values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return req, nil
}

// Do sends req with the client's headers and bearer token. Responses with
// status >= 400 are returned as *APIError with the body already closed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, requestID)

	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Access token unavailable")
			return nil, fmt.Errorf("obtain access token: %w", err)
		}
		token.SetAuthHeader(req)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := c.classifyError(nil, err)
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Warn().
			Err(err).
			Str("endpoint", endpoint).
			Str("request_id", requestID).
			Msg("HTTP request failed")
		return nil, &APIError{
			ErrorClass: errClass,
			Message:    "request failed",
			Err:        err,
		}
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		errClass := c.classifyError(resp, nil)
		errorsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("API request error")

		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
			Body:       string(body),
		}
	}

	return resp, nil
}

// classifyError categorizes a failure for observability.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
