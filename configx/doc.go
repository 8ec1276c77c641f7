/*
Package configx loads application configuration with viper.

Sources, lowest priority first: built-in defaults, WithDefaults overrides, one config file
(FromFile), then the environment. FromDotEnv files are loaded into the process environment
first and never override variables that are already set.

	cfg, err := configx.Load(
		configx.FromFile("wacloud.yaml"),
		configx.FromDotEnv(".env"),
	)
	client, err := cfg.NewWhatsAppClient()

Every key maps to an environment variable with the WACLOUD prefix:

	whatsapp.access_token   WACLOUD_WHATSAPP_ACCESS_TOKEN
	retry.initial_delay     WACLOUD_RETRY_INITIAL_DELAY   (Go duration, "500ms")
	webhook.app_secret      WACLOUD_WEBHOOK_APP_SECRET
	validation.mode         WACLOUD_VALIDATION_MODE       (off, strict, relaxed)
	log.format              WACLOUD_LOG_FORMAT            (console, json)
*/
package configx
