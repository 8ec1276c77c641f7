package errx

import (
	"fmt"
	"sync"
)

// Registry helps manage error definitions across packages
type Registry struct {
	prefix string
	mu     sync.RWMutex
	defs   map[Code]definition
}

type definition struct {
	kind    Kind
	message string
}

// NewRegistry creates a new Registry with a prefix
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		defs:   make(map[Code]definition),
	}
}

// Register adds a new error definition to the registry and returns its full code
func (r *Registry) Register(code Code, kind Kind, message string) Code {
	fullCode := Code(fmt.Sprintf("%s_%s", r.prefix, code))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[fullCode] = definition{kind: kind, message: message}
	return fullCode
}

// New creates an instance of a registered error. The variant follows the registered kind;
// unknown codes fall back to a network failure so the result is always a taxonomy error.
func (r *Registry) New(code Code, opts ...Option) Error {
	r.mu.RLock()
	def, ok := r.defs[code]
	r.mu.RUnlock()

	if !ok {
		return Network("unregistered error code "+string(code), nil, opts...)
	}
	return r.build(code, def.kind, def.message, opts)
}

// NewWithMessage creates an instance of a registered error with a custom message
func (r *Registry) NewWithMessage(code Code, message string, opts ...Option) Error {
	r.mu.RLock()
	def, ok := r.defs[code]
	r.mu.RUnlock()

	if !ok {
		return Network(message, nil, opts...)
	}
	return r.build(code, def.kind, message, opts)
}

func (r *Registry) build(code Code, kind Kind, message string, opts []Option) Error {
	opts = append(opts, WithCode(code))
	switch kind {
	case KindValidation:
		o := collect(opts)
		return Validation(o.field, message, opts...)
	case KindAPI:
		return API(message, opts...)
	case KindRateLimit:
		return RateLimit(message, opts...)
	default:
		o := collect(opts)
		return Network(message, o.cause, opts...)
	}
}
