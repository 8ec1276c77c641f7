/*
Package transport is the resilient request layer for the WhatsApp Cloud (Graph) API.

A Client issues exactly one HTTP request per call. Each call gets its own timeout, and every
failure is classified into one errx variant:

	400..599 except 429  -> *errx.APIError (from the {"error":{...}} envelope or the status line)
	429                  -> *errx.RateLimitError (Retry-After as seconds or HTTP-date)
	timer fired          -> *errx.NetworkError{Timeout: true}
	dial, reset, EOF     -> *errx.NetworkError
	2xx with bad JSON    -> *errx.NetworkError with code RESPONSE_DECODE_FAILED
	empty path, bad body -> *errx.ValidationError

Retries are not the transport's job; wrap calls in a retry.Policy:

	client, err := transport.New(transport.Config{
		AccessToken: token,
		Hooks:       transport.ChainHooks{transport.NewLogHooks(nil), metrics},
	})

	profile, err := retry.DoWithResult(ctx, policy, func(ctx context.Context) (Profile, error) {
		return transport.Get[Profile](ctx, client, phoneID+"/whatsapp_business_profile")
	})

Hooks observe every round trip. Each call carries a uuid in RequestInfo.ID for log
correlation.
*/
package transport
