package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion = "v23.0"
	DefaultTimeout    = 30 * time.Second
	DefaultUserAgent  = "wacloud-go"
)

// Config holds the immutable settings of a Client
type Config struct {
	AccessToken string
	BaseURL     string
	APIVersion  string
	Timeout     time.Duration
	UserAgent   string
	HTTPClient  *http.Client
	Hooks       Hooks
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{}
	}
	if c.Hooks == nil {
		c.Hooks = NopHooks{}
	}
	return c
}

// Request describes a single call. It is built per call and never shared.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any           // JSON-encoded when not nil
	Form    *Form         // multipart body; takes precedence over Body
	Timeout time.Duration // overrides Config.Timeout when > 0
}

// Client issues one HTTP request per call against the Graph API and classifies every
// failure into an errx variant. It holds no mutable state and is safe for concurrent use.
type Client struct {
	cfg Config
}

// New creates a client. An access token is required.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errx.Validation("access_token", "access token is required")
	}
	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, errx.Validation("base_url", fmt.Sprintf("invalid base URL %q", cfg.BaseURL))
		}
	}
	return &Client{cfg: cfg.withDefaults()}, nil
}

// Config returns the effective configuration
func (c *Client) Config() Config {
	return c.cfg
}

// URL builds {baseURL}/{apiVersion}/{path}
func (c *Client) URL(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" +
		strings.Trim(c.cfg.APIVersion, "/") + "/" +
		strings.TrimLeft(path, "/")
}

// Get issues a GET and decodes the JSON response into out (which may be nil)
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

// Post issues a POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Delete issues a DELETE
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// PostMultipart issues a multipart/form-data POST; the boundary comes from the form
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, out any) error {
	if form == nil {
		return errx.Validation("form", "multipart form is required")
	}
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Form: form}, out)
}

// Do executes req. On 2xx the body is decoded into out when out is not nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if strings.Trim(req.Path, "/") == "" {
		return errx.Validation("path", "request path must not be empty")
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.URL(req.Path)
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return err
	}

	raw, err := c.execute(ctx, call{
		method:      method,
		url:         target,
		path:        req.Path,
		body:        body,
		contentType: contentType,
		timeout:     req.Timeout,
	})
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	return decode(raw, out)
}

// Download fetches an absolute URL with the bearer token and returns the raw body. Media
// URLs returned by the Graph API live outside the versioned API path.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errx.Validation("url", fmt.Sprintf("invalid download URL %q", rawURL))
	}
	return c.execute(ctx, call{method: http.MethodGet, url: rawURL, path: u.Path})
}

type call struct {
	method      string
	url         string
	path        string
	body        []byte
	contentType string
	timeout     time.Duration
}

func (c *Client) execute(ctx context.Context, cl call) ([]byte, error) {
	timeout := cl.timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if cl.body != nil {
		reader = bytes.NewReader(cl.body)
	}

	httpReq, err := http.NewRequestWithContext(callCtx, cl.method, cl.url, reader)
	if err != nil {
		return nil, errx.Validation("path", "cannot build request", errx.WithCause(err))
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.cfg.UserAgent)
	if cl.contentType != "" {
		httpReq.Header.Set("Content-Type", cl.contentType)
	}

	info := &RequestInfo{
		ID:     uuid.NewString(),
		Method: cl.method,
		Path:   cl.path,
		URL:    cl.url,
		Start:  time.Now(),
	}
	c.cfg.Hooks.BeforeRequest(ctx, info)

	resp, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		e := classifyFailure(ctx, callCtx, timeout, err)
		c.cfg.Hooks.OnError(ctx, info, e)
		return nil, e
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		e := classifyFailure(ctx, callCtx, timeout, err)
		c.cfg.Hooks.OnError(ctx, info, e)
		return nil, e
	}

	c.cfg.Hooks.AfterResponse(ctx, info, &ResponseInfo{
		StatusCode: resp.StatusCode,
		Duration:   time.Since(info.Start),
		Size:       len(raw),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := classifyResponse(resp.StatusCode, resp.Header, raw, time.Now())
		c.cfg.Hooks.OnError(ctx, info, e)
		return nil, e
	}

	return raw, nil
}

func encodeBody(req Request) ([]byte, string, error) {
	if req.Form != nil {
		return req.Form.encode()
	}
	if req.Body == nil {
		return nil, "", nil
	}
	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", errx.Validation("body", "request body cannot be encoded as JSON",
			errx.WithCause(err), errx.WithDetail("type", fmt.Sprintf("%T", req.Body)))
	}
	return data, "application/json", nil
}

func decode(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return errx.Network("empty response body", nil, errx.WithCode(errx.CodeDecodeFailed))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errx.Network("response body is not valid JSON", err,
			errx.WithCode(errx.CodeDecodeFailed),
			errx.WithDetail("body", snippet(raw)),
		)
	}
	return nil
}

// classifyFailure maps a failed round trip to a network error. A fired per-call timer
// wins over the generic cause; caller cancellation is reported as such.
func classifyFailure(parent, callCtx context.Context, timeout time.Duration, err error) errx.Error {
	switch {
	case parent.Err() != nil:
		return errx.Network("request cancelled", parent.Err())
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return errx.Timeout(timeout, err)
	default:
		return errx.Network("request failed", err)
	}
}

func snippet(raw []byte) string {
	const limit = 512
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
