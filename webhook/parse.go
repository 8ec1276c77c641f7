package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/validatex"
)

// EventKind discriminates the Event variants
type EventKind string

const (
	KindMessage EventKind = "message"
	KindStatus  EventKind = "status"
	KindAccount EventKind = "account"
)

// Event is implemented by *MessageEvent, *StatusEvent and *AccountEvent only
type Event interface {
	Kind() EventKind
	EntryID() string
	Field() string
	event()
}

type eventBase struct {
	entryID string
	field   string
}

func (b eventBase) EntryID() string { return b.entryID }
func (b eventBase) Field() string   { return b.field }
func (eventBase) event()            {}

// MessageEvent carries inbound messages and the contacts that sent them
type MessageEvent struct {
	eventBase
	Metadata Metadata
	Contacts []Contact
	Messages []Message
	Errors   []ErrorEntry
}

func (*MessageEvent) Kind() EventKind { return KindMessage }

// StatusEvent carries delivery reports for outbound messages
type StatusEvent struct {
	eventBase
	Metadata Metadata
	Statuses []Status
	Errors   []ErrorEntry
}

func (*StatusEvent) Kind() EventKind { return KindStatus }

// AccountEvent carries any other change (account_update, message_template_status_update,
// phone_number_quality_update, ...) with its value untouched
type AccountEvent struct {
	eventBase
	Value json.RawMessage
}

func (*AccountEvent) Kind() EventKind { return KindAccount }

// Decode unmarshals the raw value into out
func (e *AccountEvent) Decode(out any) error {
	if len(e.Value) == 0 {
		return errx.Validation("value", "account event has no value")
	}
	if err := json.Unmarshal(e.Value, out); err != nil {
		return errx.Validation("value", "account event value cannot be decoded", errx.WithCause(err))
	}
	return nil
}

// Notification is one parsed webhook delivery; it produces one Event per change
type Notification struct {
	Object  string
	Entries []Entry
	Events  []Event
}

// Parse validates and re-types an already decoded payload. payload may be any value that
// encodes to JSON (a map[string]any from encoding/json, nested Go maps and slices), a
// Payload, a *Payload, or raw JSON bytes.
// A nil validator skips schema validation.
func Parse(payload any, v validatex.Validator) (*Notification, error) {
	switch p := payload.(type) {
	case nil:
		return nil, invalidPayload("payload is null")
	case []byte:
		return ParseBytes(p, v)
	case json.RawMessage:
		return ParseBytes(p, v)
	case Payload:
		return parseTyped(&p, v)
	case *Payload:
		if p == nil {
			return nil, invalidPayload("payload is null")
		}
		return parseTyped(p, v)
	}

	// Normalize Go-built values ([]map[string]any, map[string]string, structs) to their JSON
	// shape so the envelope checks see objects and arrays whatever their Go type.
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, invalidPayload("payload cannot be encoded as JSON", errx.WithCause(err))
	}
	return ParseBytes(raw, v)
}

// ParseBytes parses a raw webhook body
func ParseBytes(body []byte, v validatex.Validator) (*Notification, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, invalidPayload("payload is not valid JSON", errx.WithCause(err))
	}
	if err := checkEnvelope(doc); err != nil {
		return nil, err
	}
	if err := runValidator(v, doc); err != nil {
		return nil, err
	}
	return decodePayload(body)
}

func invalidPayload(msg string, opts ...errx.Option) error {
	return Registry.NewWithMessage(ErrInvalidPayload, msg, append(opts, errx.WithField("payload"))...)
}

// checkEnvelope runs the three structural checks in order: object, object type, entry array
func checkEnvelope(doc any) error {
	m, ok := doc.(map[string]any)
	if !ok || m == nil {
		return invalidPayload(fmt.Sprintf("payload must be an object, got %s", jsonType(doc)))
	}

	if obj, _ := m["object"].(string); obj != ObjectWhatsApp {
		return Registry.New(ErrUnexpectedObject,
			errx.WithField("object"),
			errx.WithDetail("object", m["object"]),
		)
	}

	if _, ok := m["entry"].([]any); !ok {
		return Registry.New(ErrInvalidEntry,
			errx.WithField("entry"),
			errx.WithDetail("type", jsonType(m["entry"])),
		)
	}
	return nil
}

func parseTyped(p *Payload, v validatex.Validator) (*Notification, error) {
	if p.Object != ObjectWhatsApp {
		return nil, Registry.New(ErrUnexpectedObject, errx.WithField("object"), errx.WithDetail("object", p.Object))
	}
	if p.Entry == nil {
		return nil, Registry.New(ErrInvalidEntry, errx.WithField("entry"), errx.WithDetail("type", "null"))
	}
	if err := runValidator(v, p); err != nil {
		return nil, err
	}
	return build(p)
}

func runValidator(v validatex.Validator, data any) error {
	if v == nil {
		return nil
	}
	return v.Validate(PayloadSchema, data)
}

func decodePayload(raw []byte) (*Notification, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, Registry.NewWithMessage(ErrInvalidEntry, "entry does not match the webhook format",
			errx.WithField("entry"), errx.WithCause(err))
	}
	return build(&p)
}

func build(p *Payload) (*Notification, error) {
	n := &Notification{Object: p.Object, Entries: p.Entry}

	for i, entry := range p.Entry {
		for j, change := range entry.Changes {
			ev, err := classify(entry.ID, change)
			if err != nil {
				return nil, Registry.NewWithMessage(ErrInvalidChange, err.Error(),
					errx.WithField(fmt.Sprintf("entry[%d].changes[%d].value", i, j)),
					errx.WithCause(err),
				)
			}
			n.Events = append(n.Events, ev)
		}
	}
	return n, nil
}

// classify picks the variant from the keys present in the change value
func classify(entryID string, change Change) (Event, error) {
	base := eventBase{entryID: entryID, field: change.Field}

	var keys map[string]json.RawMessage
	trimmed := bytes.TrimSpace(change.Value)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &keys) != nil {
		return &AccountEvent{eventBase: base, Value: change.Value}, nil
	}

	_, hasMessages := keys["messages"]
	_, hasContacts := keys["contacts"]
	_, hasStatuses := keys["statuses"]

	if !hasMessages && !hasContacts && !hasStatuses {
		return &AccountEvent{eventBase: base, Value: change.Value}, nil
	}

	var value Value
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return nil, fmt.Errorf("decoding %s value: %w", change.Field, err)
	}

	if hasMessages || hasContacts {
		return &MessageEvent{
			eventBase: base,
			Metadata:  value.Metadata,
			Contacts:  value.Contacts,
			Messages:  value.Messages,
			Errors:    value.Errors,
		}, nil
	}
	return &StatusEvent{
		eventBase: base,
		Metadata:  value.Metadata,
		Statuses:  value.Statuses,
		Errors:    value.Errors,
	}, nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, int, int64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}
