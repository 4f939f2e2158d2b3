// Package client is a Go client for the school profile API. Its hooks keep a
// cached view of one endpoint each and revalidate it on demand, on Focus or
// Reconnect, and optionally on a polling interval.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// APIError is a non-success response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("profile api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("profile api: %s: %s", e.Code, e.Message)
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger

	group singleflight.Group

	mu     sync.Mutex
	cache  map[string]json.RawMessage
	subs   map[int]func(context.Context) error
	nextID int
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default(),
		cache:   map[string]json.RawMessage{},
		subs:    map[int]func(context.Context) error{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Focus revalidates every open hook, as a window regaining focus would.
func (c *Client) Focus(ctx context.Context) error {
	return c.revalidateAll(ctx)
}

// Reconnect revalidates every open hook after connectivity returns.
func (c *Client) Reconnect(ctx context.Context) error {
	return c.revalidateAll(ctx)
}

func (c *Client) revalidateAll(ctx context.Context) error {
	c.mu.Lock()
	fns := make([]func(context.Context) error, 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	var g errgroup.Group
	for _, fn := range fns {
		g.Go(func() error { return fn(ctx) })
	}
	return g.Wait()
}

func (c *Client) subscribe(fn func(context.Context) error) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Client) cached(key string) (json.RawMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.cache[key]
	return raw, ok
}

// load fetches key through the shared cache. Concurrent loads of the same key
// share one request.
func (c *Client) load(ctx context.Context, key string) (json.RawMessage, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		raw, err := c.request(ctx, http.MethodGet, key, nil)
		if err != nil {
			c.logger.WarnContext(ctx, "fetch failed",
				"module", "client",
				"layer", "query",
				"operation", "load",
				"outcome", "failure",
				"key", key,
				"error", err,
			)
			return nil, err
		}
		c.mu.Lock()
		c.cache[key] = raw
		c.mu.Unlock()
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// send performs a mutation and decodes the response data into out when out
// is not nil.
func (c *Client) send(ctx context.Context, method, path string, body any, out any, headers ...string) error {
	raw, err := c.request(ctx, method, path, body, headers...)
	if err != nil {
		c.logger.WarnContext(ctx, "mutation failed",
			"module", "client",
			"layer", "mutation",
			"operation", strings.ToLower(method),
			"outcome", "failure",
			"path", path,
			"error", err,
		)
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func (c *Client) request(ctx context.Context, method, path string, body any, headers ...string) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || env.Status == "error" {
		return nil, &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	return env.Data, nil
}
