package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"

	"github.com/kbukum/subtitler/httpclient"
)

// Client exchanges JSON documents over an httpclient.Client. Errors keep
// the *httpclient.Error classification, so httpclient.IsRateLimit and the
// other predicates apply to them.
type Client struct {
	http *httpclient.Client
}

var jsonHeaders = map[string]string{
	"Content-Type": "application/json",
	"Accept":       "application/json",
}

// New defaults Content-Type and Accept to JSON unless cfg sets them.
func New(cfg httpclient.Config) (*Client, error) {
	headers := maps.Clone(jsonHeaders)
	maps.Copy(headers, cfg.Headers)
	cfg.Headers = headers

	c, err := httpclient.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

func NewFromClient(c *httpclient.Client) *Client { return &Client{http: c} }

func (c *Client) HTTP() *httpclient.Client             { return c.http }
func (c *Client) Name() string                         { return c.http.Name() }
func (c *Client) IsAvailable(ctx context.Context) bool { return c.http.IsAvailable(ctx) }
func (c *Client) Close()                               { c.http.Close() }

// RequestOption adjusts one request.
type RequestOption func(*httpclient.Request)

func WithQuery(params map[string]string) RequestOption {
	return func(r *httpclient.Request) { r.Query = params }
}

func WithHeaders(headers map[string]string) RequestOption {
	return func(r *httpclient.Request) { r.Headers = headers }
}

// Response carries the decoded body. Data is the zero T for an empty body.
type Response[T any] struct {
	StatusCode int
	Headers    map[string]string
	Data       T
}

func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return Do[T](ctx, c, http.MethodGet, path, nil, opts...)
}

// Post JSON-encodes body unless it is already a reader, bytes or a string.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return Do[T](ctx, c, http.MethodPost, path, body, opts...)
}

// Do sends one request with any method and decodes a 2xx body into T.
func Do[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (*Response[T], error) {
	req := httpclient.Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}
	raw, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &Response[T]{StatusCode: raw.StatusCode, Headers: raw.Headers}
	if len(raw.Body) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw.Body, &out.Data); err != nil {
		return nil, fmt.Errorf("rest: decode %s %s response: %w", method, path, err)
	}
	return out, nil
}
