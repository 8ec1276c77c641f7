package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Abraxas-365/wacloud/errx"
)

type errorEnvelope struct {
	Error *errx.ProviderError `json:"error"`
}

// classifyResponse turns a non-2xx response into an API or rate limit error. Bodies that
// are not the Graph error envelope fall back to the status line.
func classifyResponse(status int, header http.Header, body []byte, now time.Time) errx.Error {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	opts := []errx.Option{errx.WithHTTPStatus(status)}
	message := fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))
	if env.Error != nil {
		opts = append(opts, errx.WithProvider(*env.Error))
		if env.Error.Message != "" {
			message = env.Error.Message
		}
		if env.Error.UserMessage != "" {
			opts = append(opts, errx.WithDetail("user_message", env.Error.UserMessage))
		}
		if env.Error.ErrorData != nil {
			opts = append(opts, errx.WithDetail("error_data", env.Error.ErrorData))
		}
	} else if len(body) > 0 {
		opts = append(opts, errx.WithDetail("body", snippet(body)))
	}

	if status == http.StatusTooManyRequests {
		if d, ok := parseRetryAfter(header.Get("Retry-After"), now); ok {
			opts = append(opts, errx.WithRetryAfter(d))
		}
		return errx.RateLimit(message, opts...)
	}

	return errx.API(message, opts...)
}

// parseRetryAfter accepts delta-seconds or an HTTP-date; dates in the past mean "now"
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}

	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}

	if t, err := http.ParseTime(v); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}

	return 0, false
}
