package errx

import "fmt"

// Cases holds one branch per variant. Match panics on a nil branch for the variant it
// meets, so callers that leave a case out find out the first time it happens.
type Cases[R any] struct {
	Validation func(*ValidationError) R
	Network    func(*NetworkError) R
	API        func(*APIError) R
	RateLimit  func(*RateLimitError) R
}

// Match dispatches e to the branch of its variant
func Match[R any](e Error, c Cases[R]) R {
	switch v := e.(type) {
	case *ValidationError:
		return c.Validation(v)
	case *NetworkError:
		return c.Network(v)
	case *APIError:
		return c.API(v)
	case *RateLimitError:
		return c.RateLimit(v)
	default:
		panic(fmt.Sprintf("errx: unknown variant %T", e))
	}
}
