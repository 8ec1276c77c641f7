/*
Package errx is the error taxonomy shared by every package of the SDK.

Every failure the SDK reports is exactly one of four variants:

	*errx.ValidationError  caller supplied structurally wrong data (never retried)
	*errx.NetworkError     timeout, DNS, connection reset, malformed response body
	*errx.APIError         the Graph API rejected the request with a structured error
	*errx.RateLimitError   HTTP 429, optionally carrying a retry-after hint

The set is closed: the Error interface has an unexported method, so a switch over the four
types is exhaustive.

	switch e := err.(type) {
	case *errx.ValidationError:
		log.Printf("bad field %s", e.Field)
	case *errx.RateLimitError:
		if d, ok := e.RetryAfterSeconds(); ok {
			log.Printf("retry in %ds", d)
		}
	case *errx.APIError:
		log.Printf("graph error %d/%d trace=%s", e.ProviderCode, e.ProviderSubcode, e.TraceID)
	case *errx.NetworkError:
		log.Printf("network: timeout=%t", e.Timeout)
	}

Errors may be wrapped with fmt.Errorf("...: %w", err); use KindOf, IsKind, IsCode or the
As* helpers to inspect a chain.

# Error Registry

Packages register prefixed codes bound to a kind:

	var (
		webhookErrors  = errx.NewRegistry("WEBHOOK")
		ErrBadEnvelope = webhookErrors.Register("BAD_ENVELOPE", errx.KindValidation, "Invalid webhook envelope")
	)

	err := webhookErrors.New(ErrBadEnvelope, errx.WithField("entry"))
*/
package errx
