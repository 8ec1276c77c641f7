package configx_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Abraxas-365/wacloud/configx"
	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	v, ok := errx.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, field, v.Field)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := configx.Load(configx.WithEnvPrefix("WACLOUD_TEST_DEFAULTS"))
	require.NoError(t, err)

	assert.Equal(t, "v23.0", cfg.WhatsApp.APIVersion)
	assert.Equal(t, 30*time.Second, cfg.WhatsApp.Timeout)
	assert.True(t, cfg.WhatsApp.CacheTemplates)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, time.Second, cfg.Retry.InitialDelay)
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 2.0, cfg.Retry.BackoffMultiplier)
	assert.True(t, cfg.Retry.RetryOnRateLimit)
	assert.Equal(t, "/webhook", cfg.Webhook.Path)
	assert.Equal(t, "strict", cfg.Validation.Mode)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WACLOUD_WHATSAPP_ACCESS_TOKEN", "env-token")
	t.Setenv("WACLOUD_WHATSAPP_PHONE_NUMBER_ID", "PHONE")
	t.Setenv("WACLOUD_RETRY_MAX_RETRIES", "5")
	t.Setenv("WACLOUD_RETRY_INITIAL_DELAY", "250ms")
	t.Setenv("WACLOUD_VALIDATION_MODE", "OFF")

	cfg, err := configx.Load()
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.WhatsApp.AccessToken)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.InitialDelay)
	assert.Equal(t, "off", cfg.Validation.Mode)

	policy := cfg.RetryPolicy()
	assert.Equal(t, 5, policy.Config().MaxRetries)
	assert.Equal(t, 250*time.Millisecond, policy.Backoff(0))

	wa, err := cfg.WhatsAppConfig()
	require.NoError(t, err)
	assert.Equal(t, "PHONE", wa.PhoneNumberID)

	client, err := cfg.NewWhatsAppClient()
	require.NoError(t, err)
	assert.Equal(t, "env-token", client.Transport().Config().AccessToken)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "wacloud.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
whatsapp:
  access_token: file-token
  phone_number_id: "1234"
retry:
  max_retries: 1
log:
  format: json
`), 0o600))

	t.Setenv("WACLOUD_WHATSAPP_ACCESS_TOKEN", "env-wins")

	cfg, err := configx.Load(configx.FromFile(file))
	require.NoError(t, err)

	assert.Equal(t, "env-wins", cfg.WhatsApp.AccessToken)
	assert.Equal(t, "1234", cfg.WhatsApp.PhoneNumberID)
	assert.Equal(t, 1, cfg.Retry.MaxRetries)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := configx.Load(configx.FromFile(filepath.Join(t.TempDir(), "nope.yaml")))
	requireField(t, err, "config_file")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("WACLOUD_DOTENV_WEBHOOK_VERIFY_TOKEN=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("WACLOUD_DOTENV_WEBHOOK_VERIFY_TOKEN") })

	cfg, err := configx.Load(
		configx.WithEnvPrefix("WACLOUD_DOTENV"),
		configx.FromDotEnv(file, filepath.Join(dir, "missing.env")),
	)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Webhook.VerifyToken)
}

func TestLoad_InvalidSections(t *testing.T) {
	testCases := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"negative retries", map[string]string{"WACLOUD_RETRY_MAX_RETRIES": "-1"}, "retry.max_retries"},
		{"shrinking backoff", map[string]string{"WACLOUD_RETRY_BACKOFF_MULTIPLIER": "0.5"}, "retry.backoff_multiplier"},
		{"max below initial", map[string]string{"WACLOUD_RETRY_MAX_DELAY": "10ms"}, "retry.max_delay"},
		{"unknown mode", map[string]string{"WACLOUD_VALIDATION_MODE": "lenient"}, "validation.mode"},
		{"unknown log format", map[string]string{"WACLOUD_LOG_FORMAT": "xml"}, "log.format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := configx.Load()
			requireField(t, err, tc.field)
		})
	}
}

func TestBuilders_CheckTheirSection(t *testing.T) {
	cfg, err := configx.Load(configx.WithEnvPrefix("WACLOUD_TEST_BUILDERS"))
	require.NoError(t, err)

	_, err = cfg.WhatsAppConfig()
	requireField(t, err, "whatsapp.access_token")

	_, err = cfg.WebhookConfig(nil)
	requireField(t, err, "webhook.verify_token")

	cfg.Webhook.VerifyToken = "t"
	_, err = cfg.WebhookConfig(nil)
	requireField(t, err, "webhook.app_secret")

	cfg.Webhook.SkipVerification = true
	wh, err := cfg.WebhookConfig(nil)
	require.NoError(t, err)
	assert.True(t, wh.SkipVerification)
	assert.NotNil(t, wh.Validator)
}

func TestWithDefaults(t *testing.T) {
	cfg, err := configx.Load(
		configx.WithEnvPrefix("WACLOUD_TEST_WITH_DEFAULTS"),
		configx.WithDefaults(map[string]any{"webhook.addr": ":9090", "log.level": "debug"}),
	)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Webhook.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	require.NoError(t, cfg.ConfigureLogging())
	t.Cleanup(func() { _ = logx.Configure("info", "console") })
}
