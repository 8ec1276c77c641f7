package configx

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/retry"
	"github.com/Abraxas-365/wacloud/transport"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultEnvPrefix = "WACLOUD"

// Config is the full application configuration
type Config struct {
	WhatsApp   WhatsApp   `mapstructure:"whatsapp"`
	Retry      Retry      `mapstructure:"retry"`
	Webhook    Webhook    `mapstructure:"webhook"`
	Validation Validation `mapstructure:"validation"`
	Log        Log        `mapstructure:"log"`
}

// WhatsApp configures the Cloud API client
type WhatsApp struct {
	AccessToken       string        `mapstructure:"access_token" validate:"required"`
	PhoneNumberID     string        `mapstructure:"phone_number_id" validate:"required"`
	BusinessAccountID string        `mapstructure:"business_account_id"`
	APIVersion        string        `mapstructure:"api_version"`
	BaseURL           string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gte=0"`
	CacheTemplates    bool          `mapstructure:"cache_templates"`
	TemplateCacheTTL  time.Duration `mapstructure:"template_cache_ttl" validate:"gte=0"`
	RetrySends        bool          `mapstructure:"retry_sends"`
}

type Retry struct {
	MaxRetries        int           `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	InitialDelay      time.Duration `mapstructure:"initial_delay" validate:"gt=0"`
	MaxDelay          time.Duration `mapstructure:"max_delay" validate:"gtefield=InitialDelay"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier" validate:"gte=1"`
	RetryOnRateLimit  bool          `mapstructure:"retry_on_rate_limit"`
}

// Webhook configures the inbound endpoint and its HTTP server
type Webhook struct {
	Addr             string `mapstructure:"addr" validate:"required"`
	Path             string `mapstructure:"path" validate:"required,startswith=/"`
	VerifyToken      string `mapstructure:"verify_token" validate:"required"`
	AppSecret        string `mapstructure:"app_secret" validate:"required_unless=SkipVerification true"`
	SkipVerification bool   `mapstructure:"skip_verification"`
	MaxBodyBytes     int64  `mapstructure:"max_body_bytes" validate:"gte=0"`
}

type Validation struct {
	Mode string `mapstructure:"mode" validate:"oneof=off strict relaxed"`
}

type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error off"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// Option configures Load
type Option func(*loader)

type loader struct {
	file      string
	dotenv    []string
	envPrefix string
	defaults  map[string]any
}

// FromFile reads a YAML, JSON or TOML file. A missing file is an error.
func FromFile(path string) Option {
	return func(l *loader) { l.file = path }
}

// FromDotEnv loads KEY=VALUE files into the process environment before reading it.
// Missing files are skipped and existing variables are never overridden.
func FromDotEnv(paths ...string) Option {
	return func(l *loader) { l.dotenv = append(l.dotenv, paths...) }
}

// WithEnvPrefix changes the environment prefix (default WACLOUD)
func WithEnvPrefix(prefix string) Option {
	return func(l *loader) { l.envPrefix = prefix }
}

// WithDefaults overrides built-in defaults by dotted key ("retry.max_retries")
func WithDefaults(defaults map[string]any) Option {
	return func(l *loader) {
		for k, v := range defaults {
			l.defaults[k] = v
		}
	}
}

func builtinDefaults() map[string]any {
	r := retry.DefaultConfig()
	return map[string]any{
		"whatsapp.access_token":        "",
		"whatsapp.phone_number_id":     "",
		"whatsapp.business_account_id": "",
		"whatsapp.api_version":         transport.DefaultAPIVersion,
		"whatsapp.base_url":            transport.DefaultBaseURL,
		"whatsapp.timeout":             transport.DefaultTimeout,
		"whatsapp.cache_templates":     true,
		"whatsapp.template_cache_ttl":  time.Hour,
		"whatsapp.retry_sends":         false,

		"retry.max_retries":         r.MaxRetries,
		"retry.initial_delay":       r.InitialDelay,
		"retry.max_delay":           r.MaxDelay,
		"retry.backoff_multiplier":  r.BackoffMultiplier,
		"retry.retry_on_rate_limit": r.RetryOnRateLimit,

		"webhook.addr":              ":8080",
		"webhook.path":              "/webhook",
		"webhook.verify_token":      "",
		"webhook.app_secret":        "",
		"webhook.skip_verification": false,
		"webhook.max_body_bytes":    int64(1 << 20),

		"validation.mode": "strict",

		"log.level":  "info",
		"log.format": "console",
	}
}

// Load builds the configuration from defaults, an optional file and the environment.
// Later sources win: defaults < file < environment. Environment keys are the prefix plus
// the dotted key in upper case with dots replaced by underscores:
// WACLOUD_WHATSAPP_ACCESS_TOKEN, WACLOUD_RETRY_MAX_RETRIES.
//
// Only the retry, validation and log sections are validated here. The whatsapp and
// webhook sections are checked by the builders that need them.
func Load(opts ...Option) (*Config, error) {
	l := &loader{envPrefix: DefaultEnvPrefix, defaults: builtinDefaults()}
	for _, opt := range opts {
		opt(l)
	}

	for _, path := range l.dotenv {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errx.Validation("dotenv", fmt.Sprintf("cannot load %s", path), errx.WithCause(err))
		}
	}

	v := viper.New()
	for k, val := range l.defaults {
		v.SetDefault(k, val)
	}

	if l.file != "" {
		v.SetConfigFile(l.file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errx.Validation("config_file", fmt.Sprintf("cannot read %s", l.file), errx.WithCause(err))
		}
	}

	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errx.Validation("config", "cannot decode configuration", errx.WithCause(err))
	}

	cfg.Validation.Mode = strings.ToLower(cfg.Validation.Mode)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)

	for _, section := range []struct {
		name string
		data any
	}{
		{"retry", cfg.Retry},
		{"validation", cfg.Validation},
		{"log", cfg.Log},
	} {
		if err := validateSection(section.name, section.data); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

var (
	sectionValidator     *validator.Validate
	sectionValidatorOnce sync.Once
)

func sections() *validator.Validate {
	sectionValidatorOnce.Do(func() {
		sectionValidator = validator.New(validator.WithRequiredStructEnabled())
		sectionValidator.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return sectionValidator
}

// validateSection reports the first failing key as "section.key"
func validateSection(name string, data any) error {
	err := sections().Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errx.Validation(name, err.Error())
	}

	first := fieldErrs[0]
	msg := fmt.Sprintf("invalid value %v (rule '%s')", first.Value(), first.Tag())
	if first.Param() != "" {
		msg = fmt.Sprintf("invalid value %v (rule '%s=%s')", first.Value(), first.Tag(), first.Param())
	}
	return errx.Validation(name+"."+first.Field(), msg, errx.WithDetail("rule", first.Tag()))
}
