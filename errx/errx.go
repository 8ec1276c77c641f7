package errx

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Code is a machine-readable error code
type Code string

// Kind is the discriminant of the error taxonomy
type Kind string

const (
	KindValidation Kind = "VALIDATION" // Caller supplied structurally wrong data
	KindNetwork    Kind = "NETWORK"    // Timeout, DNS, connection reset, malformed response
	KindAPI        Kind = "API"        // Remote service rejected the request
	KindRateLimit  Kind = "RATE_LIMIT" // HTTP 429
)

const (
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeNetworkFailure   Code = "NETWORK_FAILURE"
	CodeTimeout          Code = "NETWORK_TIMEOUT"
	CodeDecodeFailed     Code = "RESPONSE_DECODE_FAILED"
	CodeAPIError         Code = "API_ERROR"
	CodeRateLimited      Code = "RATE_LIMITED"
)

// Error is implemented by exactly four types in this package: *ValidationError,
// *NetworkError, *APIError and *RateLimitError. The unexported method keeps the set closed,
// so a type switch over those four is exhaustive.
type Error interface {
	error
	Kind() Kind
	Code() Code
	Message() string
	Details() map[string]any
	Unwrap() error
	sealed()
}

// ProviderError mirrors the Graph API error object: {"error": {...}}
type ProviderError struct {
	Message      string         `json:"message"`
	Type         string         `json:"type,omitempty"`
	Code         int            `json:"code"`
	ErrorSubcode int            `json:"error_subcode,omitempty"`
	UserTitle    string         `json:"error_user_title,omitempty"`
	UserMessage  string         `json:"error_user_msg,omitempty"`
	ErrorData    map[string]any `json:"error_data,omitempty"`
	FbtraceID    string         `json:"fbtrace_id,omitempty"`
}

// base carries the fields shared by every variant. It is never mutated after construction.
type base struct {
	code    Code
	message string
	details map[string]any
	cause   error
}

func (b *base) Code() Code      { return b.code }
func (b *base) Message() string { return b.message }
func (b *base) Unwrap() error   { return b.cause }
func (b *base) sealed()         {}

// Details returns a copy of the error details
func (b *base) Details() map[string]any {
	if len(b.details) == 0 {
		return nil
	}
	return maps.Clone(b.details)
}

func (b *base) format(kind Kind, suffix string) string {
	s := fmt.Sprintf("[%s] %s: %s", kind, b.code, b.message)
	if suffix != "" {
		s += " (" + suffix + ")"
	}
	if b.cause != nil {
		s += ": " + b.cause.Error()
	}
	return s
}

// ========== Variants ==========

// ValidationError signals a caller bug; it is never retried
type ValidationError struct {
	base
	Field string
}

func (e *ValidationError) Kind() Kind { return KindValidation }

func (e *ValidationError) Error() string {
	return e.format(KindValidation, "field: "+e.Field)
}

// NetworkError is a transport-level failure
type NetworkError struct {
	base
	Timeout bool
}

func (e *NetworkError) Kind() Kind { return KindNetwork }

func (e *NetworkError) Error() string { return e.format(KindNetwork, "") }

// APIError is a structured rejection by the remote service
type APIError struct {
	base
	HTTPStatus      int
	ProviderCode    int
	ProviderSubcode int
	ProviderType    string
	TraceID         string
}

func (e *APIError) Kind() Kind { return KindAPI }

func (e *APIError) Error() string {
	suffix := fmt.Sprintf("status: %d", e.HTTPStatus)
	if e.ProviderCode != 0 {
		suffix += fmt.Sprintf(", provider_code: %d", e.ProviderCode)
	}
	if e.ProviderSubcode != 0 {
		suffix += fmt.Sprintf(", subcode: %d", e.ProviderSubcode)
	}
	if e.TraceID != "" {
		suffix += ", trace_id: " + e.TraceID
	}
	return e.format(KindAPI, suffix)
}

// RateLimitError is returned for HTTP 429 responses
type RateLimitError struct {
	base
	HTTPStatus    int
	ProviderCode  int
	RetryAfter    time.Duration
	HasRetryAfter bool
}

func (e *RateLimitError) Kind() Kind { return KindRateLimit }

func (e *RateLimitError) Error() string {
	if e.HasRetryAfter {
		return e.format(KindRateLimit, fmt.Sprintf("retry after: %s", e.RetryAfter))
	}
	return e.format(KindRateLimit, "")
}

// RetryAfterSeconds returns the server hint in whole seconds
func (e *RateLimitError) RetryAfterSeconds() (int, bool) {
	if !e.HasRetryAfter {
		return 0, false
	}
	return int(e.RetryAfter / time.Second), true
}

// ========== Constructors ==========

// Option customizes an error at construction time
type Option func(*options)

type options struct {
	code       Code
	field      string
	details    map[string]any
	cause      error
	status     int
	provider   *ProviderError
	retryAfter *time.Duration
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) base(def Code, message string) base {
	code := o.code
	if code == "" {
		code = def
	}
	return base{code: code, message: message, details: o.details, cause: o.cause}
}

// WithCode overrides the default code of the variant
func WithCode(code Code) Option {
	return func(o *options) { o.code = code }
}

// WithField sets the offending field of a validation error
func WithField(field string) Option {
	return func(o *options) { o.field = field }
}

// WithDetail attaches a single detail
func WithDetail(key string, value any) Option {
	return func(o *options) {
		if o.details == nil {
			o.details = make(map[string]any)
		}
		o.details[key] = value
	}
}

// WithCause wraps another error as the cause
func WithCause(cause error) Option {
	return func(o *options) { o.cause = cause }
}

// WithHTTPStatus records the HTTP status that produced the error
func WithHTTPStatus(status int) Option {
	return func(o *options) { o.status = status }
}

// WithProvider copies the provider error object into an API or rate limit error
func WithProvider(p ProviderError) Option {
	return func(o *options) { o.provider = &p }
}

// WithRetryAfter records the server's retry-after hint
func WithRetryAfter(d time.Duration) Option {
	return func(o *options) { o.retryAfter = &d }
}

// Validation creates a validation error naming the offending field
func Validation(field, message string, opts ...Option) *ValidationError {
	o := collect(append([]Option{WithField(field)}, opts...))
	return &ValidationError{base: o.base(CodeValidationFailed, message), Field: o.field}
}

// Network creates a transport-level error
func Network(message string, cause error, opts ...Option) *NetworkError {
	o := collect(append([]Option{WithCause(cause)}, opts...))
	return &NetworkError{base: o.base(CodeNetworkFailure, message)}
}

// Timeout creates a network error for a request that exceeded its deadline
func Timeout(after time.Duration, cause error, opts ...Option) *NetworkError {
	o := collect(append([]Option{WithCause(cause)}, opts...))
	msg := fmt.Sprintf("request timed out after %dms", after.Milliseconds())
	return &NetworkError{base: o.base(CodeTimeout, msg), Timeout: true}
}

// API creates an API error; provider fields come from WithProvider
func API(message string, opts ...Option) *APIError {
	o := collect(opts)
	e := &APIError{base: o.base(CodeAPIError, message), HTTPStatus: o.status}
	if o.provider != nil {
		e.ProviderCode = o.provider.Code
		e.ProviderSubcode = o.provider.ErrorSubcode
		e.ProviderType = o.provider.Type
		e.TraceID = o.provider.FbtraceID
	}
	return e
}

// RateLimit creates a rate limit error; the hint comes from WithRetryAfter
func RateLimit(message string, opts ...Option) *RateLimitError {
	o := collect(opts)
	e := &RateLimitError{base: o.base(CodeRateLimited, message), HTTPStatus: o.status}
	if e.HTTPStatus == 0 {
		e.HTTPStatus = http.StatusTooManyRequests
	}
	if o.retryAfter != nil {
		e.RetryAfter = *o.retryAfter
		e.HasRetryAfter = true
	}
	if o.provider != nil {
		e.ProviderCode = o.provider.Code
	}
	return e
}

// ========== Inspection ==========

// KindOf returns the kind of the first taxonomy error in the chain
func KindOf(err error) (Kind, bool) {
	var e Error
	if errors.As(err, &e) {
		return e.Kind(), true
	}
	return "", false
}

// IsKind checks if an error is a taxonomy error of the given kind
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsCode checks if an error is a taxonomy error with a specific code
func IsCode(err error, code Code) bool {
	var e Error
	if errors.As(err, &e) {
		return e.Code() == code
	}
	return false
}

func AsValidation(err error) (*ValidationError, bool) {
	var e *ValidationError
	ok := errors.As(err, &e)
	return e, ok
}

func AsNetwork(err error) (*NetworkError, bool) {
	var e *NetworkError
	ok := errors.As(err, &e)
	return e, ok
}

func AsAPI(err error) (*APIError, bool) {
	var e *APIError
	ok := errors.As(err, &e)
	return e, ok
}

func AsRateLimit(err error) (*RateLimitError, bool) {
	var e *RateLimitError
	ok := errors.As(err, &e)
	return e, ok
}

// Print renders an error with its details on one line, for logs
func Print(err error) string {
	if err == nil {
		return "nil"
	}

	var e Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("Error: %s", err.Error())
	}

	details := e.Details()
	if len(details) == 0 {
		return fmt.Sprintf("Error: %s", err.Error())
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %v", k, details[k]))
	}
	return fmt.Sprintf("Error: %s, Details: {%s}", err.Error(), strings.Join(parts, ", "))
}

// ToHTTP writes the error as JSON with the given status (for standard net/http)
func ToHTTP(w http.ResponseWriter, status int, err error) {
	body := map[string]any{"message": err.Error()}
	var e Error
	if errors.As(err, &e) {
		body = map[string]any{
			"code":    e.Code(),
			"kind":    e.Kind(),
			"message": e.Message(),
		}
		if d := e.Details(); d != nil {
			body["details"] = d
		}
		if v, ok := e.(*ValidationError); ok {
			body["field"] = v.Field
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
