// Package backend talks to the remote repodeck API: the auth endpoints and the
// bearer-authenticated repository listing.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/johanforsgren/repodeck/internal/notify"
	"github.com/johanforsgren/repodeck/internal/provider/common"
	"github.com/johanforsgren/repodeck/internal/session"
)

const DefaultBaseURL = "https://api.shuyu-lin.com"

const (
	pathRegister  = "/api/register"
	pathLogin     = "/api/login"
	pathVerifyMFA = "/api/verify-mfa"
	pathRefresh   = "/api/refresh"
	pathLogout    = "/api/logout"
	pathRepos     = "/repos"
)

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	session    *session.Context
	notifier   notify.Notifier
	refreshes  singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

func WithNotifier(notifier notify.Notifier) Option {
	return func(c *Client) {
		c.notifier = notifier
	}
}

func NewClient(baseURL string, sess *session.Context, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme and host required", baseURL)
	}

	c := &Client{
		baseURL: parsed,
		httpClient: &http.Client{
			Transport: common.NewLoggingTransport(nil),
			Timeout:   30 * time.Second,
		},
		session:  sess,
		notifier: notify.Discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Session() *session.Context {
	return c.session
}

// Request describes a call relative to the API base URL. Body is kept as
// bytes so the same request can be replayed after a token refresh.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

func JSONRequest(method, path string, payload any) (Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Request{}, fmt.Errorf("failed to encode request body: %w", err)
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return Request{Method: method, Path: path, Header: header, Body: body}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request, requestID string) (*http.Request, error) {
	target := *c.baseURL
	target.Path = c.baseURL.Path + req.Path
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for name, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}
	if requestID != "" {
		httpReq.Header.Set(common.RequestIDHeader, requestID)
	}
	return httpReq, nil
}

// postJSON issues an anonymous JSON POST.
func (c *Client) postJSON(ctx context.Context, path string, payload any, requestID string) (*http.Response, error) {
	req, err := JSONRequest(http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	httpReq, err := c.newHTTPRequest(ctx, req, requestID)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(httpReq)
}

func decodeJSON(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
