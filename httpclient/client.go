package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/kbukum/subtitler/provider"
	"github.com/kbukum/subtitler/resilience"
)

var _ provider.RequestResponse[Request, *Response] = (*Client)(nil)

// Client talks to one remote API such as the transcription or chat
// completion endpoint.
type Client struct {
	http *http.Client
	cfg  Config
}

// New validates cfg and builds a client on a cloned default transport.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &Client{
		http: &http.Client{Transport: transport, Timeout: cfg.Timeout},
		cfg:  cfg,
	}, nil
}

// Do sends req and reads the whole body. A non-2xx status returns both the
// response and a classified *Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.cfg.Retry == nil {
		return c.attempt(ctx, req)
	}
	return resilience.Retry(ctx, *c.cfg.Retry, func() (*Response, error) {
		return c.attempt(ctx, req)
	})
}

func (c *Client) attempt(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, fmt.Errorf("read response body: %w", err))
	}

	out := &Response{StatusCode: resp.StatusCode, Headers: firstValues(resp.Header), Body: body}
	if statusErr := ClassifyStatusCode(resp.StatusCode, body); statusErr != nil {
		statusErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		return out, statusErr
	}
	return out, nil
}

// transportError separates timeouts and cancellations from refused or
// reset connections.
func transportError(ctx context.Context, err error) *Error {
	var t interface{ Timeout() bool }
	if ctx.Err() != nil || (errors.As(err, &t) && t.Timeout()) {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

func (c *Client) resolve(path string) string {
	if c.cfg.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path), body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	h := httpReq.Header
	for _, set := range []map[string]string{c.cfg.Headers, req.Headers} {
		for k, v := range set {
			h.Set(k, v)
		}
	}
	switch {
	case isMultipart(req.Body):
		// The boundary is part of the body.
		h.Set("Content-Type", contentType)
	case body != nil && contentType != "" && h.Get("Content-Type") == "":
		h.Set("Content-Type", contentType)
	}

	auth := c.cfg.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(h))
	return httpReq, nil
}

func isMultipart(body any) bool {
	_, ok := body.(*MultipartBody)
	return ok
}

func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		return v.encode()
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

func firstValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func (c *Client) Name() string { return c.cfg.Name }

// IsAvailable reports whether there is a base URL to send requests to.
func (c *Client) IsAvailable(context.Context) bool { return c.cfg.BaseURL != "" }

// Execute is Do under the provider contract.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	return c.Do(ctx, req)
}

// Close drops idle keep-alive connections.
func (c *Client) Close() { c.http.CloseIdleConnections() }

func (c *Client) Config() Config { return c.cfg }
