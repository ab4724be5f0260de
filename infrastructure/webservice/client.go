package webservice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "template-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Client calls the remote web service
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	converter *ConverterFactory
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client for baseURL
func NewClient(baseURL string, converter *ConverterFactory, logger *zap.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid web service base url %q", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: 30 * time.Second},
		converter: converter,
		logger:    logger.Named("WebService"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "webservice:" + u.Host,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c, nil
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get fetches path into out
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post sends in to path and decodes the reply into out
func (c *Client) Post(ctx context.Context, path string, in, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, in, out)
}

type result struct {
	status int
	body   []byte
}

// Do performs one call. in and out may be nil. Non-2xx replies become
// AppErrors carrying the status.
func (c *Client) Do(ctx context.Context, method, path string, in, out interface{}) error {
	target, err := c.baseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return apperrors.NewValidationError("invalid path " + path).WithCause(err)
	}

	var body io.Reader
	if in != nil {
		if body, err = c.converter.RequestBody(in); err != nil {
			return apperrors.NewInternalError("failed to encode request").WithCause(err)
		}
	}

	v, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", c.converter.ContentType())
		if in != nil {
			req.Header.Set("Content-Type", c.converter.ContentType())
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		// Only server faults count against the breaker.
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%s %s returned %d", method, target.Path, resp.StatusCode)
		}
		return result{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		c.logger.Warn("Web service call failed",
			zap.String("method", method),
			zap.String("path", target.Path),
			zap.Error(err),
		)
		return apperrors.NewExternalError("webservice", err)
	}

	res := v.(result)
	if res.status < 200 || res.status >= 300 {
		return statusError(res.status, target.Path)
	}
	if out == nil || len(res.body) == 0 {
		return nil
	}
	if err := c.converter.Mapper().Unmarshal(res.body, out); err != nil {
		return apperrors.NewExternalError("webservice", fmt.Errorf("failed to decode %s: %w", target.Path, err))
	}
	return nil
}

func statusError(status int, path string) error {
	switch status {
	case http.StatusNotFound:
		return apperrors.NewNotFoundError(path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.NewUnauthorizedError(fmt.Sprintf("remote service rejected %s", path))
	case http.StatusConflict:
		return apperrors.NewConflictError(fmt.Sprintf("remote conflict on %s", path))
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.NewValidationError(fmt.Sprintf("remote service rejected request to %s", path))
	default:
		return apperrors.NewExternalError("webservice", fmt.Errorf("%s returned %d", path, status))
	}
}
