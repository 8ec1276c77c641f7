package configx

import (
	"github.com/Abraxas-365/wacloud/logx"
	"github.com/Abraxas-365/wacloud/retry"
	"github.com/Abraxas-365/wacloud/transport"
	"github.com/Abraxas-365/wacloud/validatex"
	"github.com/Abraxas-365/wacloud/webhook"
	"github.com/Abraxas-365/wacloud/whatsapp"
)

// ConfigureLogging applies the log section to the global logger
func (c *Config) ConfigureLogging() error {
	return logx.Configure(c.Log.Level, c.Log.Format)
}

// RetryPolicy builds a policy from the retry section
func (c *Config) RetryPolicy(opts ...retry.Option) *retry.Policy {
	base := []retry.Option{retry.WithConfig(retry.Config{
		MaxRetries:        c.Retry.MaxRetries,
		InitialDelay:      c.Retry.InitialDelay,
		MaxDelay:          c.Retry.MaxDelay,
		BackoffMultiplier: c.Retry.BackoffMultiplier,
		RetryOnRateLimit:  c.Retry.RetryOnRateLimit,
	})}
	return retry.New(append(base, opts...)...)
}

// Validator returns the strategy named by validation.mode
func (c *Config) Validator() (validatex.Validator, error) {
	return validatex.ForMode(c.Validation.Mode)
}

// TransportConfig builds a transport configuration from the whatsapp section
func (c *Config) TransportConfig(hooks transport.Hooks) (transport.Config, error) {
	if err := validateSection("whatsapp", c.WhatsApp); err != nil {
		return transport.Config{}, err
	}
	return transport.Config{
		AccessToken: c.WhatsApp.AccessToken,
		BaseURL:     c.WhatsApp.BaseURL,
		APIVersion:  c.WhatsApp.APIVersion,
		Timeout:     c.WhatsApp.Timeout,
		Hooks:       hooks,
	}, nil
}

// WhatsAppConfig checks and returns the whatsapp section as a client configuration
func (c *Config) WhatsAppConfig() (whatsapp.Config, error) {
	if err := validateSection("whatsapp", c.WhatsApp); err != nil {
		return whatsapp.Config{}, err
	}
	return whatsapp.Config{
		AccessToken:       c.WhatsApp.AccessToken,
		PhoneNumberID:     c.WhatsApp.PhoneNumberID,
		BusinessAccountID: c.WhatsApp.BusinessAccountID,
		APIVersion:        c.WhatsApp.APIVersion,
		BaseURL:           c.WhatsApp.BaseURL,
		Timeout:           c.WhatsApp.Timeout,
		CacheTemplates:    c.WhatsApp.CacheTemplates,
		TemplateCacheTTL:  c.WhatsApp.TemplateCacheTTL,
	}, nil
}

// NewWhatsAppClient wires a client with the configured retry policy and validator.
// opts are applied last.
func (c *Config) NewWhatsAppClient(opts ...whatsapp.Option) (*whatsapp.Client, error) {
	cfg, err := c.WhatsAppConfig()
	if err != nil {
		return nil, err
	}
	v, err := c.Validator()
	if err != nil {
		return nil, err
	}

	base := []whatsapp.Option{
		whatsapp.WithRetryPolicy(c.RetryPolicy()),
		whatsapp.WithRetrySends(c.WhatsApp.RetrySends),
		whatsapp.WithValidator(v),
	}
	return whatsapp.New(cfg, append(base, opts...)...)
}

// WebhookConfig checks the webhook section and builds an endpoint configuration
func (c *Config) WebhookConfig(logger *logx.Logger) (webhook.Config, error) {
	if err := validateSection("webhook", c.Webhook); err != nil {
		return webhook.Config{}, err
	}
	v, err := c.Validator()
	if err != nil {
		return webhook.Config{}, err
	}
	return webhook.Config{
		VerifyToken:      c.Webhook.VerifyToken,
		AppSecret:        c.Webhook.AppSecret,
		SkipVerification: c.Webhook.SkipVerification,
		Validator:        v,
		MaxBodyBytes:     c.Webhook.MaxBodyBytes,
		Logger:           logger,
	}, nil
}
