package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/logx"
	"github.com/Abraxas-365/wacloud/validatex"
	"github.com/google/uuid"
)

// DefaultMaxBodyBytes bounds webhook bodies read by the endpoint
const DefaultMaxBodyBytes = 1 << 20

// Handler receives parsed events. Errors are logged by the endpoint; they never change
// the acknowledgement sent to the platform.
type Handler interface {
	HandleMessage(ctx context.Context, e *MessageEvent) error
	HandleStatus(ctx context.Context, e *StatusEvent) error
	HandleAccount(ctx context.Context, e *AccountEvent) error
}

// HandlerFuncs adapts plain functions to Handler; nil functions ignore their events
type HandlerFuncs struct {
	OnMessage func(ctx context.Context, e *MessageEvent) error
	OnStatus  func(ctx context.Context, e *StatusEvent) error
	OnAccount func(ctx context.Context, e *AccountEvent) error
}

func (h HandlerFuncs) HandleMessage(ctx context.Context, e *MessageEvent) error {
	if h.OnMessage == nil {
		return nil
	}
	return h.OnMessage(ctx, e)
}

func (h HandlerFuncs) HandleStatus(ctx context.Context, e *StatusEvent) error {
	if h.OnStatus == nil {
		return nil
	}
	return h.OnStatus(ctx, e)
}

func (h HandlerFuncs) HandleAccount(ctx context.Context, e *AccountEvent) error {
	if h.OnAccount == nil {
		return nil
	}
	return h.OnAccount(ctx, e)
}

// Dispatch hands every event to h in delivery order and joins the handler errors
func Dispatch(ctx context.Context, h Handler, n *Notification) error {
	var errs []error
	for _, ev := range n.Events {
		var err error
		switch e := ev.(type) {
		case *MessageEvent:
			err = h.HandleMessage(ctx, e)
		case *StatusEvent:
			err = h.HandleStatus(ctx, e)
		case *AccountEvent:
			err = h.HandleAccount(ctx, e)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s event (field %s): %w", ev.Kind(), ev.Field(), err))
		}
	}
	return errors.Join(errs...)
}

// Config configures an Endpoint
type Config struct {
	VerifyToken      string
	AppSecret        string
	SkipVerification bool // accept unsigned deliveries; local testing only
	Validator        validatex.Validator
	MaxBodyBytes     int64
	Logger           *logx.Logger
}

// Endpoint implements both halves of the webhook contract: the GET subscription
// challenge and the POST event delivery.
type Endpoint struct {
	cfg      Config
	verifier *Verifier
	handler  Handler
}

// NewEndpoint checks the configuration and builds an endpoint dispatching to h
func NewEndpoint(cfg Config, h Handler) (*Endpoint, error) {
	if cfg.VerifyToken == "" {
		return nil, errx.Validation("verify_token", "verify token is required")
	}
	if cfg.AppSecret == "" && !cfg.SkipVerification {
		return nil, errx.Validation("app_secret", "app secret is required unless signature verification is skipped")
	}
	if h == nil {
		return nil, errx.Validation("handler", "handler is required")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Validator == nil {
		cfg.Validator = validatex.Off()
	}
	if cfg.SkipVerification {
		logx.Warn("webhook: signature verification is disabled")
	}

	return &Endpoint{cfg: cfg, verifier: NewVerifier(cfg.AppSecret), handler: h}, nil
}

func (e *Endpoint) logger() *logx.Logger {
	if e.cfg.Logger != nil {
		return e.cfg.Logger
	}
	return logx.GetLogger()
}

// Challenge answers a subscription request: it returns the challenge to echo when mode is
// "subscribe" and the token matches.
func (e *Endpoint) Challenge(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || token != e.cfg.VerifyToken {
		return "", Registry.New(ErrVerifyToken,
			errx.WithField("hub.verify_token"),
			errx.WithDetail("mode", mode),
		)
	}
	return challenge, nil
}

// Receive processes one delivery and returns the status to acknowledge with: 401 when the
// signature fails, 200 otherwise.
func (e *Endpoint) Receive(ctx context.Context, body []byte, signature string) int {
	log := e.logger().With("delivery_id", uuid.NewString())

	if !e.cfg.SkipVerification && !Verify(body, signature, e.cfg.AppSecret) {
		log.Warn("webhook: rejected delivery with invalid signature (%d bytes)", len(body))
		return http.StatusUnauthorized
	}

	n, err := ParseBytes(body, e.cfg.Validator)
	if err != nil {
		log.Error("webhook: cannot parse delivery: %s", errx.Print(err))
		return http.StatusOK
	}

	if err := Dispatch(ctx, e.handler, n); err != nil {
		log.Error("webhook: handler failed: %v", err)
		return http.StatusOK
	}

	log.Debug("webhook: dispatched %d events", len(n.Events))
	return http.StatusOK
}

// ServeHTTP implements http.Handler
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		challenge, err := e.Challenge(q.Get("hub.mode"), q.Get("hub.verify_token"), q.Get("hub.challenge"))
		if err != nil {
			errx.ToHTTP(w, http.StatusForbidden, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, challenge)

	case http.MethodPost:
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, e.cfg.MaxBodyBytes))
		if err != nil {
			errx.ToHTTP(w, http.StatusRequestEntityTooLarge,
				errx.Validation("body", "webhook body cannot be read", errx.WithCause(err)))
			return
		}
		status := e.Receive(r.Context(), body, r.Header.Get(SignatureHeader))
		if status == http.StatusUnauthorized {
			errx.ToHTTP(w, status, Registry.New(ErrSignature, errx.WithField(SignatureHeader)))
			return
		}
		w.WriteHeader(status)

	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
