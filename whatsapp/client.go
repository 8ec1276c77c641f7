package whatsapp

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/retry"
	"github.com/Abraxas-365/wacloud/transport"
	"github.com/Abraxas-365/wacloud/validatex"
)

const DefaultTemplateCacheTTL = time.Hour

// Config holds WhatsApp Business Cloud API configuration
type Config struct {
	AccessToken       string        `json:"access_token" validate:"required"`
	PhoneNumberID     string        `json:"phone_number_id" validate:"required"`
	BusinessAccountID string        `json:"business_account_id"` // required for templates and phone numbers
	APIVersion        string        `json:"api_version,omitempty"`
	BaseURL           string        `json:"base_url,omitempty"`
	Timeout           time.Duration `json:"timeout,omitempty"`
	CacheTemplates    bool          `json:"cache_templates,omitempty"`
	TemplateCacheTTL  time.Duration `json:"template_cache_ttl,omitempty"`
}

// Option configures a Client
type Option func(*Client)

// WithRetryPolicy replaces the default retry policy
func WithRetryPolicy(p *retry.Policy) Option {
	return func(c *Client) {
		if p != nil {
			c.retry = p
		}
	}
}

// WithRetrySends also runs message sends (POST) under the retry policy. A retried send
// can deliver the same message twice when the first response was lost.
func WithRetrySends(enabled bool) Option {
	return func(c *Client) { c.retrySends = enabled }
}

// WithValidator sets the strategy used to check outbound payloads
func WithValidator(v validatex.Validator) Option {
	return func(c *Client) {
		if v != nil {
			c.validator = v
		}
	}
}

// WithHooks installs transport hooks
func WithHooks(h transport.Hooks) Option {
	return func(c *Client) { c.hooks = h }
}

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

type templateCacheEntry struct {
	template  Template
	expiresAt time.Time
}

// Client talks to the Cloud API for one business phone number
type Client struct {
	cfg        Config
	api        *transport.Client
	retry      *retry.Policy
	retrySends bool
	validator  validatex.Validator
	hooks      transport.Hooks
	httpClient *http.Client

	cacheMu sync.RWMutex
	cache   map[string]templateCacheEntry
	now     func() time.Time
}

// New validates cfg and builds a client
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := validatex.ValidateStruct(cfg); err != nil {
		return nil, err
	}
	if cfg.TemplateCacheTTL <= 0 {
		cfg.TemplateCacheTTL = DefaultTemplateCacheTTL
	}

	c := &Client{
		cfg:       cfg,
		retry:     retry.New(),
		validator: validatex.Strict(),
		cache:     make(map[string]templateCacheEntry),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	api, err := transport.New(transport.Config{
		AccessToken: cfg.AccessToken,
		BaseURL:     cfg.BaseURL,
		APIVersion:  cfg.APIVersion,
		Timeout:     cfg.Timeout,
		HTTPClient:  c.httpClient,
		Hooks:       c.hooks,
	})
	if err != nil {
		return nil, err
	}
	c.api = api
	return c, nil
}

// Transport exposes the underlying transport for endpoints this package does not wrap
func (c *Client) Transport() *transport.Client {
	return c.api
}

// do runs req, under the retry policy for idempotent methods and, when enabled, sends
func (c *Client) do(ctx context.Context, req transport.Request, out any) error {
	op := func(ctx context.Context) error {
		return c.api.Do(ctx, req, out)
	}
	if req.Method == http.MethodPost && !c.retrySends {
		return op(ctx)
	}
	return c.retry.Do(ctx, op)
}

func (c *Client) businessAccount() (string, error) {
	if c.cfg.BusinessAccountID == "" {
		return "", Registry.New(ErrMissingAccount, errx.WithField("business_account_id"))
	}
	return c.cfg.BusinessAccountID, nil
}

type successResponse struct {
	Success bool `json:"success"`
}
