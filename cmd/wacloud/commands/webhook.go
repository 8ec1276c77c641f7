package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Abraxas-365/wacloud/logx"
	"github.com/Abraxas-365/wacloud/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newVerifySignatureCmd() *cobra.Command {
	var secret, signature, file string

	cmd := &cobra.Command{
		Use:   "verify-signature",
		Short: "Check an X-Hub-Signature-256 header against a raw body",
		Long:  "Reads the raw body from --file or stdin. Exits non-zero when the signature does not match.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("WACLOUD_WEBHOOK_APP_SECRET")
			}
			if secret == "" {
				return errors.New("--secret or WACLOUD_WEBHOOK_APP_SECRET is required")
			}

			var body []byte
			var err error
			if file != "" {
				body, err = os.ReadFile(file)
			} else {
				body, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			if !webhook.Verify(body, signature, secret) {
				return errors.New("signature mismatch")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signature OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "app secret (defaults to WACLOUD_WEBHOOK_APP_SECRET)")
	cmd.Flags().StringVar(&signature, "signature", "", "header value, sha256=<hex>")
	cmd.Flags().StringVarP(&file, "file", "f", "", "raw body file (stdin when empty)")
	_ = cmd.MarkFlagRequired("signature")
	return cmd
}

// logHandler logs every event it receives and counts it by kind
func logHandler(logger *logx.Logger, events *prometheus.CounterVec) webhook.HandlerFuncs {
	return webhook.HandlerFuncs{
		OnMessage: func(_ context.Context, e *webhook.MessageEvent) error {
			events.WithLabelValues(string(e.Kind())).Inc()
			for _, m := range e.Messages {
				logger.Info("message %s from %s type=%s", m.ID, m.From, m.Type)
			}
			return nil
		},
		OnStatus: func(_ context.Context, e *webhook.StatusEvent) error {
			events.WithLabelValues(string(e.Kind())).Inc()
			for _, s := range e.Statuses {
				logger.Info("status %s for %s: %s", s.ID, s.RecipientID, s.Status)
			}
			return nil
		},
		OnAccount: func(_ context.Context, e *webhook.AccountEvent) error {
			events.WithLabelValues(string(e.Kind())).Inc()
			logger.Info("account change %s: %s", e.Field(), string(e.Value))
			return nil
		},
	}
}

func newServeWebhookCmd(flags *globalFlags) *cobra.Command {
	var addr string
	var metrics bool

	cmd := &cobra.Command{
		Use:   "serve-webhook",
		Short: "Run a webhook endpoint that logs every delivered event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Webhook.Addr = addr
			}

			logger := logx.GetLogger().With("component", "webhook")
			whCfg, err := cfg.WebhookConfig(logger)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector())
			events := promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
				Namespace: "wacloud",
				Subsystem: "webhook",
				Name:      "events_total",
				Help:      "Webhook events received, by kind.",
			}, []string{"kind"})

			ep, err := webhook.NewEndpoint(whCfg, logHandler(logger, events))
			if err != nil {
				return err
			}

			srv := webhook.NewServer(cfg.Webhook.Addr)
			srv.Handle(cfg.Webhook.Path, ep)
			if metrics {
				srv.Router().Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logx.Info("shutting down webhook server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides webhook.addr)")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "expose Prometheus metrics on /metrics")
	return cmd
}
