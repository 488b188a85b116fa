// Package api provides a JSON-over-HTTP client for the item store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shoplist/shoplist-cli/internal/output"
	"github.com/shoplist/shoplist-cli/internal/version"
)

// RequestInfo describes an outgoing request.
type RequestInfo struct {
	Method string
	URL    string
}

// RequestResult describes how a request ended.
type RequestResult struct {
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Hooks observes requests. Implementations must be safe for concurrent use.
type Hooks interface {
	OnRequestStart(ctx context.Context, info RequestInfo) context.Context
	OnRequestEnd(ctx context.Context, info RequestInfo, result RequestResult)
}

// Client is an HTTP client for the item store.
// It does not retry and sets no timeout of its own; callers bound requests
// through the context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	hooks      Hooks
	logger     zerolog.Logger
}

// Response wraps an API response.
type Response struct {
	Data       json.RawMessage
	StatusCode int
	Headers    http.Header
}

// UnmarshalData unmarshals the response data into the given value.
func (r *Response) UnmarshalData(v any) error {
	if len(bytes.TrimSpace(r.Data)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHooks installs request observability hooks.
func WithHooks(h Hooks) Option {
	return func(c *Client) { c.hooks = h }
}

// WithLogger sets the logger used for request debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a new API client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the store root.
func (c *Client) BaseURL() string { return c.baseURL }

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.doRequest(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.doRequest(ctx, http.MethodPost, path, body)
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.doRequest(ctx, http.MethodPatch, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.doRequest(ctx, http.MethodDelete, path, nil)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*Response, error) {
	url := c.buildURL(path)
	info := RequestInfo{Method: method, URL: url}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.hooks != nil {
		ctx = c.hooks.OnRequestStart(ctx, info)
	}
	start := time.Now()

	resp, err := c.send(req, path)

	result := RequestResult{Duration: time.Since(start), Err: err}
	if resp != nil {
		result.StatusCode = resp.StatusCode
	} else if e, ok := err.(*output.Error); ok {
		result.StatusCode = e.HTTPStatus
	}
	if c.hooks != nil {
		c.hooks.OnRequestEnd(ctx, info, result)
	}

	ev := c.logger.Debug().Ctx(ctx).Str("method", method).Str("url", url).Dur("took", result.Duration)
	if err != nil {
		ev.Err(err).Msg("request failed")
		return nil, err
	}
	ev.Int("status", resp.StatusCode).Msg("request")
	return resp, nil
}

func (c *Client) send(req *http.Request, path string) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, output.ErrNetwork(fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Response{
			Data:       respBody,
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
		}, nil
	}

	return nil, classify(resp.StatusCode, path, respBody)
}

// classify maps a non-2xx status to a structured error.
func classify(status int, path string, body []byte) *output.Error {
	switch status {
	case http.StatusNotFound:
		return output.ErrNotFound("Resource", path)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return output.ErrConflict(status, serverMessage(body, status))
	case http.StatusInternalServerError:
		return output.ErrAPI(status, "Server error (500)")
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return output.ErrAPI(status, fmt.Sprintf("Gateway error (%d)", status))
	default:
		return output.ErrAPI(status, serverMessage(body, status))
	}
}

// serverMessage extracts {"error"} or {"message"} from an error body.
func serverMessage(body []byte, status int) string {
	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if apiErr.Error != "" {
			return apiErr.Error
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return fmt.Sprintf("Request failed (HTTP %d)", status)
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
