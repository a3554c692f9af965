// Package rest implements the generic entity client and the login client on
// top of the upstream REST collection convention:
//
//	GET    {base}/{collection}            list
//	GET    {base}/{collection}/paginated  paginated list
//	GET    {base}/{collection}/search     search (q + pagination)
//	GET    {base}/{collection}/{id}       get by id
//	POST   {base}/{collection}            create
//	PUT    {base}/{collection}/{id}       update
//	DELETE {base}/{collection}/{id}       delete
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mboutique/backoffice/internal/core/domain"
	"github.com/mboutique/backoffice/internal/core/ports"
	"github.com/mboutique/backoffice/internal/pkg/metrics"
)

type bearerKey struct{}

// WithBearer returns a context whose upstream calls carry token as a bearer
// credential.
func WithBearer(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, bearerKey{}, token)
}

func bearerFromContext(ctx context.Context) string {
	v, _ := ctx.Value(bearerKey{}).(string)
	return v
}

// Option configures a Client.
type Option func(*transport)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(t *transport) { t.http = hc }
}

// WithLogger sets the logger used for per-call debug lines.
func WithLogger(log zerolog.Logger) Option {
	return func(t *transport) { t.log = log }
}

// transport is the shared plumbing of Client and AuthClient.
type transport struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

func newTransport(baseURL string, opts []Option) transport {
	t := transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No client-side timeout: failures come from the server or the connection.
		http: &http.Client{},
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Client is a generic REST client bound to one collection path.
type Client[T any] struct {
	transport
	path string
}

var _ ports.EntityClient[struct{}] = (*Client[struct{}])(nil)

// NewClient binds a client to baseURL and collection path.
func NewClient[T any](baseURL, path string, opts ...Option) *Client[T] {
	return &Client[T]{
		transport: newTransport(baseURL, opts),
		path:      strings.Trim(path, "/"),
	}
}

// Path returns the collection path the client is bound to.
func (c *Client[T]) Path() string { return c.path }

// ListAll returns every record of the collection.
func (c *Client[T]) ListAll(ctx context.Context, p *domain.Pagination, opts ...ports.CallOption) ([]T, error) {
	q := url.Values{}
	p.Encode(q)
	var out []T
	err := c.do(ctx, "list", http.MethodGet, c.url(opts, "", q), nil, &out)
	return out, err
}

// ListPaginated returns one page of the collection with total-count metadata.
func (c *Client[T]) ListPaginated(ctx context.Context, p *domain.Pagination, opts ...ports.CallOption) (*domain.Page[T], error) {
	q := url.Values{}
	p.Encode(q)
	var out domain.Page[T]
	if err := c.do(ctx, "list_paginated", http.MethodGet, c.url(opts, "paginated", q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetByID fetches a single record. A missing id yields an error matching
// domain.ErrNotFound.
func (c *Client[T]) GetByID(ctx context.Context, id string, opts ...ports.CallOption) (T, error) {
	var out T
	err := c.do(ctx, "get", http.MethodGet, c.url(opts, url.PathEscape(id), nil), nil, &out)
	return out, err
}

// Create stores a new record; the server assigns its identity.
func (c *Client[T]) Create(ctx context.Context, partial T, opts ...ports.CallOption) (T, error) {
	var out T
	err := c.do(ctx, "create", http.MethodPost, c.url(opts, "", nil), partial, &out)
	return out, err
}

// Update sends partial to the record id and returns the stored version.
func (c *Client[T]) Update(ctx context.Context, id string, partial T, opts ...ports.CallOption) (T, error) {
	var out T
	err := c.do(ctx, "update", http.MethodPut, c.url(opts, url.PathEscape(id), nil), partial, &out)
	return out, err
}

// Delete removes the record id.
func (c *Client[T]) Delete(ctx context.Context, id string, opts ...ports.CallOption) error {
	return c.do(ctx, "delete", http.MethodDelete, c.url(opts, url.PathEscape(id), nil), nil, nil)
}

// Search runs a free-text query over the collection.
func (c *Client[T]) Search(ctx context.Context, query string, p *domain.Pagination, opts ...ports.CallOption) ([]T, error) {
	q := url.Values{}
	q.Set("q", query)
	p.Encode(q)
	var out []T
	err := c.do(ctx, "search", http.MethodGet, c.url(opts, "search", q), nil, &out)
	return out, err
}

func (c *Client[T]) url(opts []ports.CallOption, suffix string, q url.Values) string {
	var o ports.CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	path := c.path
	if p := strings.Trim(o.Path, "/"); p != "" {
		path = p
	}
	u := c.baseURL + "/" + path
	if suffix != "" {
		u += "/" + suffix
	}
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// serverMessage is the subset of upstream error bodies we surface.
type serverMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do performs one request. in is JSON-encoded when non-nil; out is decoded
// from a 2xx body when non-nil.
func (t *transport) do(ctx context.Context, op, method, rawURL string, in, out any) error {
	start := time.Now()
	fail := func(status int, msg string, kind, err error) error {
		label := "network_error"
		if status != 0 {
			label = strconv.Itoa(status)
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(op, label).Inc()
		metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		t.log.Debug().Str("op", op).Str("method", method).Str("url", rawURL).
			Int("status", status).Dur("elapsed", time.Since(start)).Msg("upstream call failed")
		return &domain.APIError{Op: op, Method: method, URL: rawURL, Status: status, Message: msg, Kind: kind, Err: err}
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode body: %w", op, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := bearerFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fail(0, "", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, "", domain.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var sm serverMessage
		_ = json.Unmarshal(raw, &sm)
		msg := sm.Message
		if msg == "" {
			msg = sm.Error
		}
		return fail(resp.StatusCode, msg, domain.KindForStatus(resp.StatusCode), nil)
	}

	if out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fail(resp.StatusCode, "", domain.ErrNetwork, fmt.Errorf("decode response: %w", err))
		}
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	t.log.Debug().Str("op", op).Str("method", method).Str("url", rawURL).
		Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("upstream call")
	return nil
}

// Ping checks that the upstream base URL answers at all; any HTTP response
// counts as reachable.
func (t *transport) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, t.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return errors.Join(domain.ErrNetwork, err)
	}
	return resp.Body.Close()
}
