// Package validatex provides the validation strategy injected into the transport callers
// and the webhook parser. Callers pick a strategy once with ForMode and never branch on the
// mode afterwards.
package validatex

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// Mode names a validation strategy
type Mode string

const (
	ModeOff     Mode = "off"
	ModeRelaxed Mode = "relaxed"
	ModeStrict  Mode = "strict"
)

// Schema describes what data must look like. Document is an optional JSON schema; struct
// data is additionally checked against its `validate` tags.
type Schema struct {
	Name     string
	Document []byte
}

// Validator checks data against a schema and returns an *errx.ValidationError on failure
type Validator interface {
	Validate(schema Schema, data any) error
}

// ValidatorFunc adapts a function to the Validator interface
type ValidatorFunc func(schema Schema, data any) error

func (f ValidatorFunc) Validate(schema Schema, data any) error {
	return f(schema, data)
}

// Off returns a validator that accepts everything
func Off() Validator {
	return ValidatorFunc(func(Schema, any) error { return nil })
}

// Strict returns a validator that runs the JSON schema, when present, and struct tags
func Strict() Validator {
	return &schemaValidator{mode: ModeStrict}
}

// Relaxed returns a validator that currently checks exactly what Strict checks
func Relaxed() Validator {
	return &schemaValidator{mode: ModeRelaxed}
}

// ForMode returns the strategy for a mode name; unknown names are an error
func ForMode(mode string) (Validator, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(mode))) {
	case ModeOff, "":
		return Off(), nil
	case ModeRelaxed:
		return Relaxed(), nil
	case ModeStrict:
		return Strict(), nil
	default:
		return nil, errx.Validation("validation.mode", fmt.Sprintf("unknown validation mode %q", mode))
	}
}

type schemaValidator struct {
	mode Mode
}

func (s *schemaValidator) Validate(schema Schema, data any) error {
	if len(schema.Document) > 0 {
		if err := validateDocument(schema, data); err != nil {
			return err
		}
	}
	if isStruct(data) {
		return validateStruct(schema, data)
	}
	return nil
}

// ========== JSON schema ==========

var compiled sync.Map // schema name -> *gojsonschema.Schema

func compile(schema Schema) (*gojsonschema.Schema, error) {
	if schema.Name != "" {
		if s, ok := compiled.Load(schema.Name); ok {
			return s.(*gojsonschema.Schema), nil
		}
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schema.Document))
	if err != nil {
		return nil, err
	}
	if schema.Name != "" {
		compiled.Store(schema.Name, s)
	}
	return s, nil
}

func validateDocument(schema Schema, data any) error {
	s, err := compile(schema)
	if err != nil {
		return errx.Validation("schema", "invalid schema document",
			errx.WithCause(err), errx.WithDetail("schema", schema.Name))
	}

	var loader gojsonschema.JSONLoader
	switch d := data.(type) {
	case []byte:
		loader = gojsonschema.NewBytesLoader(d)
	case string:
		loader = gojsonschema.NewStringLoader(d)
	default:
		loader = gojsonschema.NewGoLoader(data)
	}

	result, err := s.Validate(loader)
	if err != nil {
		return errx.Validation("payload", "data cannot be read as JSON",
			errx.WithCause(err), errx.WithDetail("schema", schema.Name))
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	all := make([]string, 0, len(errs))
	for _, e := range errs {
		all = append(all, e.String())
	}
	first := errs[0]
	return errx.Validation(schemaField(first), first.Description(),
		errx.WithDetail("schema", schema.Name),
		errx.WithDetail("errors", all),
	)
}

const rootField = "(root)"

// schemaField turns a gojsonschema error location into a dotted field path
func schemaField(e gojsonschema.ResultError) string {
	field := strings.TrimPrefix(e.Field(), rootField+".")
	if e.Type() == "required" {
		if prop, ok := e.Details()["property"].(string); ok {
			switch {
			case field == rootField:
				return prop
			case field == prop || strings.HasSuffix(field, "."+prop):
				return field
			default:
				return field + "." + prop
			}
		}
	}
	if field == rootField {
		return "payload"
	}
	return field
}

// ========== Struct tags ==========

func isStruct(data any) bool {
	t := reflect.TypeOf(data)
	if t == nil {
		return false
	}
	if t.Kind() == reflect.Pointer {
		if reflect.ValueOf(data).IsNil() {
			return false
		}
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func validateStruct(schema Schema, data any) error {
	err := engine().Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errx.Validation("payload", err.Error(), errx.WithDetail("schema", schema.Name))
	}

	first := fieldErrs[0]
	msg := fmt.Sprintf("failed on the '%s' rule", first.Tag())
	if first.Param() != "" {
		msg = fmt.Sprintf("failed on the '%s=%s' rule", first.Tag(), first.Param())
	}

	opts := []errx.Option{errx.WithDetail("rule", first.Tag())}
	if schema.Name != "" {
		opts = append(opts, errx.WithDetail("schema", schema.Name))
	}
	if len(fieldErrs) > 1 {
		opts = append(opts, errx.WithDetail("violations", len(fieldErrs)))
	}
	return errx.Validation(structField(first), msg, opts...)
}

// structField drops the top-level type name from the namespace: "TextMessage.text.body" -> "text.body"
func structField(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
