package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/libraryclient/internal/logging"
	"github.com/google/uuid"
)

const (
	csrfCookieName = "csrftoken"
	csrfHeaderName = "X-CSRFToken"
	requestIDName  = "X-Request-ID"
	csrfPath       = "/userprofile/csrf/"
)

// CookieStore persists the session cookies between client runs.
type CookieStore interface {
	Load(ctx context.Context) ([]*http.Cookie, error)
	Save(ctx context.Context, cookies []*http.Cookie) error
}

// Client is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	jar     http.CookieJar
	cookies CookieStore
	log     logging.Logger
}

type Option func(*Client)

// WithTimeout bounds every request. Zero disables the client-side deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithTransport replaces the HTTP transport, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithCookieStore(s CookieStore) Option {
	return func(c *Client) { c.cookies = s }
}

// NewClient returns a Client for the backend rooted at baseURL
// (for example "http://127.0.0.1:8000/api").
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must be http or https", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base: base,
		http: &http.Client{Jar: jar},
		jar:  jar,
		log:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RestoreCookies loads persisted cookies into the jar. Without a CookieStore
// it does nothing.
func (c *Client) RestoreCookies(ctx context.Context) error {
	if c.cookies == nil {
		return nil
	}
	cookies, err := c.cookies.Load(ctx)
	if err != nil {
		return fmt.Errorf("load cookies: %w", err)
	}
	if len(cookies) > 0 {
		c.jar.SetCookies(c.rootURL(), cookies)
	}
	return nil
}

// Cookies returns the cookies the jar would send to the backend.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.rootURL())
}

func (c *Client) rootURL() *url.URL {
	return &url.URL{Scheme: c.base.Scheme, Host: c.base.Host, Path: "/"}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) cookieValue(name string) string {
	for _, ck := range c.jar.Cookies(c.rootURL()) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// csrfToken returns the CSRF token, asking the backend to issue one when the
// jar has none yet.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	if tok := c.cookieValue(csrfCookieName); tok != "" {
		return tok, nil
	}
	resp, err := c.send(ctx, http.MethodGet, csrfPath, nil, nil, "")
	if err != nil {
		return "", err
	}
	drain(resp)
	return c.cookieValue(csrfCookieName), nil
}

// do performs a request and returns the response of a 2xx status. Any other
// status is turned into a *StatusError and the body is closed.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any) (*http.Response, error) {
	var body []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = b
	}

	var token string
	if !safeMethod(method) {
		tok, err := c.csrfToken(ctx)
		if err != nil {
			return nil, err
		}
		token = tok
	}

	return c.send(ctx, method, path, query, body, token)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body []byte, csrf string) (*http.Response, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), rdr)
	if err != nil {
		return nil, err
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDName, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if csrf != "" {
		req.Header.Set(csrfHeaderName, csrf)
		req.Header.Set("Referer", c.rootURL().String())
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Warn(ctx, "request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	c.log.Debug(ctx, "request done",
		"method", method, "path", path, "status", resp.StatusCode,
		"request_id", reqID, "duration", time.Since(start))

	if len(resp.Cookies()) > 0 {
		c.persistCookies(ctx)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

func (c *Client) persistCookies(ctx context.Context) {
	if c.cookies == nil {
		return
	}
	if err := c.cookies.Save(ctx, c.Cookies()); err != nil {
		c.log.Warn(ctx, "failed to persist cookies", "error", err)
	}
}

// doJSON performs a request and decodes the JSON response into out (if
// non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	resp, err := c.do(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func statusError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	msg := ""
	if json.Unmarshal(b, &payload) == nil {
		msg = payload.Error
		if msg == "" {
			msg = payload.Detail
		}
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: msg}
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
