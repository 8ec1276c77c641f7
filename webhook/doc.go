/*
Package webhook authenticates, parses and dispatches WhatsApp Cloud API webhook deliveries.

Verify checks the X-Hub-Signature-256 header (HMAC-SHA256 of the raw body under the app
secret, compared in constant time). It only ever returns a bool.

Parse and ParseBytes reject structurally invalid payloads with an *errx.ValidationError whose
Field is "payload", "object" or "entry", run the injected validatex.Validator, and turn each
change into one Event:

	*MessageEvent  value carries "messages" or "contacts"
	*StatusEvent   value carries "statuses"
	*AccountEvent  anything else, value kept raw

Endpoint serves both halves of the contract and acknowledges every authenticated delivery
with 200, whatever the parser or the handler made of it:

	ep, err := webhook.NewEndpoint(webhook.Config{
		VerifyToken: cfg.VerifyToken,
		AppSecret:   cfg.AppSecret,
		Validator:   validatex.Strict(),
	}, webhook.HandlerFuncs{
		OnMessage: func(ctx context.Context, e *webhook.MessageEvent) error {
			for _, m := range e.Messages {
				if m.Text != nil {
					logx.Info("%s says %q", m.From, m.Text.Body)
				}
			}
			return nil
		},
	})

	srv := webhook.NewServer(":8080")
	srv.Handle("/webhook", ep)
	go srv.Start()

The same endpoint mounts on Fiber with FiberHandler and on API Gateway with LambdaHandler.
*/
package webhook
