package webhook_test

import (
	"encoding/json"
	"testing"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/validatex"
	"github.com/Abraxas-365/wacloud/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textMessageBody = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "WABA_ID",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "metadata": {"display_phone_number": "15550001111", "phone_number_id": "PHONE_ID"},
        "contacts": [{"profile": {"name": "Ana"}, "wa_id": "5215512345678"}],
        "messages": [{
          "from": "5215512345678",
          "id": "wamid.abc",
          "timestamp": "1700000000",
          "type": "text",
          "text": {"body": "hi  éè <b>&amp;</b>\n"}
        }]
      }
    }]
  }]
}`

const mixedBody = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "WABA_ID",
    "time": 1700000000,
    "changes": [
      {"field": "messages", "value": {"metadata": {"phone_number_id": "PHONE_ID"},
        "statuses": [{"id": "wamid.out", "status": "delivered", "timestamp": "1700000001", "recipient_id": "5215512345678",
          "pricing": {"billable": true, "pricing_model": "CBP", "category": "utility"}}]}},
      {"field": "message_template_status_update", "value": {"event": "APPROVED", "message_template_name": "order_ready"}},
      {"field": "account_alerts", "value": "free-form"}
    ]
  }]
}`

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	v, ok := errx.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, field, v.Field)
}

func TestParse_RejectsNonObjects(t *testing.T) {
	for _, payload := range []any{nil, "not-an-object", 42, []any{}, (*webhook.Payload)(nil)} {
		_, err := webhook.Parse(payload, nil)
		requireField(t, err, "payload")
	}

	_, err := webhook.ParseBytes([]byte(`null`), nil)
	requireField(t, err, "payload")

	_, err = webhook.ParseBytes([]byte(`{broken`), nil)
	requireField(t, err, "payload")
}

func TestParse_RejectsOtherObject(t *testing.T) {
	_, err := webhook.Parse(map[string]any{"object": "other_type", "entry": []any{}}, nil)
	requireField(t, err, "object")
	assert.True(t, errx.IsCode(err, webhook.ErrUnexpectedObject))

	_, err = webhook.Parse(webhook.Payload{Object: "page", Entry: []webhook.Entry{}}, nil)
	requireField(t, err, "object")
}

func TestParse_RejectsNonArrayEntry(t *testing.T) {
	for _, entry := range []any{nil, "x", map[string]any{}} {
		_, err := webhook.Parse(map[string]any{"object": webhook.ObjectWhatsApp, "entry": entry}, nil)
		requireField(t, err, "entry")
	}

	_, err := webhook.Parse(&webhook.Payload{Object: webhook.ObjectWhatsApp}, nil)
	requireField(t, err, "entry")
}

func TestParse_TextMessagePreservedVerbatim(t *testing.T) {
	n, err := webhook.ParseBytes([]byte(textMessageBody), validatex.Strict())
	require.NoError(t, err)

	require.Len(t, n.Events, 1)
	ev, ok := n.Events[0].(*webhook.MessageEvent)
	require.True(t, ok)

	assert.Equal(t, webhook.KindMessage, ev.Kind())
	assert.Equal(t, "WABA_ID", ev.EntryID())
	assert.Equal(t, "messages", ev.Field())
	assert.Equal(t, "PHONE_ID", ev.Metadata.PhoneNumberID)
	require.Len(t, ev.Contacts, 1)
	assert.Equal(t, "Ana", ev.Contacts[0].Profile.Name)

	require.Len(t, ev.Messages, 1)
	msg := ev.Messages[0]
	assert.Equal(t, "text", msg.Type)
	require.NotNil(t, msg.Text)
	assert.Equal(t, "hi  éè <b>&amp;</b>\n", msg.Text.Body)
}

func TestParse_DecodedMap(t *testing.T) {
	var doc any
	require.NoError(t, json.Unmarshal([]byte(textMessageBody), &doc))

	n, err := webhook.Parse(doc, validatex.Relaxed())
	require.NoError(t, err)

	ev := n.Events[0].(*webhook.MessageEvent)
	assert.Equal(t, "wamid.abc", ev.Messages[0].ID)
}

func TestParse_GoBuiltPayload(t *testing.T) {
	payload := map[string]any{
		"object": webhook.ObjectWhatsApp,
		"entry": []map[string]any{{
			"id": "WABA_ID",
			"changes": []map[string]any{{
				"field": "messages",
				"value": map[string]any{
					"messaging_product": "whatsapp",
					"metadata":          map[string]string{"display_phone_number": "15550001111", "phone_number_id": "PHONE_ID"},
					"messages": []map[string]any{{
						"from":      "5215512345678",
						"id":        "wamid.go",
						"timestamp": "1700000000",
						"type":      "text",
						"text":      map[string]string{"body": "hi <b>&</b>"},
					}},
				},
			}},
		}},
	}

	n, err := webhook.Parse(payload, validatex.Strict())
	require.NoError(t, err)

	require.Len(t, n.Events, 1)
	ev, ok := n.Events[0].(*webhook.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, "wamid.go", ev.Messages[0].ID)
	assert.Equal(t, "hi <b>&</b>", ev.Messages[0].Text.Body)

	_, err = webhook.Parse(map[string]string{"object": "other_type"}, nil)
	requireField(t, err, "object")
}

func TestParse_Minimal(t *testing.T) {
	body := `{"object":"whatsapp_business_account","entry":[{"changes":[{"field":"messages","value":{"messages":[{"type":"text","text":{"body":"hi"}}]}}]}]}`

	n, err := webhook.ParseBytes([]byte(body), nil)
	require.NoError(t, err)

	ev, ok := n.Events[0].(*webhook.MessageEvent)
	require.True(t, ok)
	assert.Equal(t, "hi", ev.Messages[0].Text.Body)
}

func TestParse_EventVariants(t *testing.T) {
	n, err := webhook.ParseBytes([]byte(mixedBody), validatex.Strict())
	require.NoError(t, err)
	require.Len(t, n.Events, 3)

	status, ok := n.Events[0].(*webhook.StatusEvent)
	require.True(t, ok)
	assert.Equal(t, "delivered", status.Statuses[0].Status)
	assert.True(t, status.Statuses[0].Pricing.Billable)

	tmpl, ok := n.Events[1].(*webhook.AccountEvent)
	require.True(t, ok)
	assert.Equal(t, "message_template_status_update", tmpl.Field())
	var update struct {
		Event string `json:"event"`
		Name  string `json:"message_template_name"`
	}
	require.NoError(t, tmpl.Decode(&update))
	assert.Equal(t, "APPROVED", update.Event)
	assert.Equal(t, "order_ready", update.Name)

	alert, ok := n.Events[2].(*webhook.AccountEvent)
	require.True(t, ok)
	assert.JSONEq(t, `"free-form"`, string(alert.Value))
}

func TestParse_ValidatorRejectsDeepShape(t *testing.T) {
	body := `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"value":{}}]}]}`

	_, err := webhook.ParseBytes([]byte(body), validatex.Strict())
	assert.True(t, errx.IsKind(err, errx.KindValidation))

	// Without a validator the same payload is accepted as an account event
	n, err := webhook.ParseBytes([]byte(body), validatex.Off())
	require.NoError(t, err)
	assert.Equal(t, webhook.KindAccount, n.Events[0].Kind())
}

func TestParse_BadMessageValue(t *testing.T) {
	body := `{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{"messages":"nope"}}]}]}`

	_, err := webhook.ParseBytes([]byte(body), nil)
	requireField(t, err, "entry[0].changes[0].value")
}
