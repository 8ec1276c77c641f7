package validatex_test

import (
	"testing"

	"github.com/Abraxas-365/wacloud/errx"
	"github.com/Abraxas-365/wacloud/validatex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type textMessage struct {
	To   string `json:"to" validate:"required,wa_phone"`
	Text struct {
		Body string `json:"body" validate:"required,max=4096"`
	} `json:"text"`
}

var envelopeSchema = validatex.Schema{
	Name: "test.envelope",
	Document: []byte(`{
		"type": "object",
		"required": ["object", "entry"],
		"properties": {
			"object": {"type": "string"},
			"entry": {"type": "array"}
		}
	}`),
}

func TestForMode(t *testing.T) {
	for _, mode := range []string{"off", "", "relaxed", "STRICT", " strict "} {
		v, err := validatex.ForMode(mode)
		require.NoError(t, err, mode)
		assert.NotNil(t, v)
	}

	_, err := validatex.ForMode("paranoid")
	v, ok := errx.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "validation.mode", v.Field)
}

func TestOff_AcceptsAnything(t *testing.T) {
	assert.NoError(t, validatex.Off().Validate(envelopeSchema, map[string]any{"nope": 1}))
	assert.NoError(t, validatex.Off().Validate(validatex.Schema{}, &textMessage{}))
}

func TestStrict_StructTags(t *testing.T) {
	msg := &textMessage{To: "not-a-phone"}
	msg.Text.Body = "hi"

	err := validatex.Strict().Validate(validatex.Schema{Name: "text"}, msg)

	v, ok := errx.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "to", v.Field)
	assert.Equal(t, "wa_phone", v.Details()["rule"])
}

func TestStrict_NestedField(t *testing.T) {
	msg := textMessage{To: "+5215512345678"}

	err := validatex.Strict().Validate(validatex.Schema{}, msg)

	v, ok := errx.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "text.body", v.Field)
}

func TestStrict_ValidStruct(t *testing.T) {
	msg := textMessage{To: "5215512345678"}
	msg.Text.Body = "hello"

	assert.NoError(t, validatex.Strict().Validate(validatex.Schema{}, msg))
}

func TestStrict_JSONSchema(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		err := validatex.Strict().Validate(envelopeSchema, []byte(`{"object":"whatsapp_business_account","entry":[]}`))
		assert.NoError(t, err)
	})

	t.Run("missing property", func(t *testing.T) {
		err := validatex.Strict().Validate(envelopeSchema, map[string]any{"object": "x"})

		v, ok := errx.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "entry", v.Field)
		assert.Equal(t, "test.envelope", v.Details()["schema"])
	})

	t.Run("wrong type", func(t *testing.T) {
		err := validatex.Strict().Validate(envelopeSchema, `{"object":"x","entry":{}}`)

		v, ok := errx.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "entry", v.Field)
	})

	t.Run("broken schema", func(t *testing.T) {
		err := validatex.Strict().Validate(validatex.Schema{Document: []byte(`{`)}, map[string]any{})

		v, ok := errx.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "schema", v.Field)
	})
}

func TestRelaxed_MatchesStrict(t *testing.T) {
	inputs := []any{
		map[string]any{"object": "x"},
		[]byte(`{"object":"x","entry":[]}`),
		&textMessage{To: "123"},
	}

	for _, in := range inputs {
		strictErr := validatex.Strict().Validate(envelopeSchema, in)
		relaxedErr := validatex.Relaxed().Validate(envelopeSchema, in)
		assert.Equal(t, strictErr == nil, relaxedErr == nil)
		if strictErr != nil {
			assert.Equal(t, strictErr.Error(), relaxedErr.Error())
		}
	}
}

func TestRegisterValidationFunc(t *testing.T) {
	require.NoError(t, validatex.RegisterValidationFunc("wa_lang", func(value any, _ string) bool {
		s, ok := value.(string)
		return ok && len(s) >= 2
	}))

	type template struct {
		Language string `json:"language" validate:"wa_lang"`
	}

	assert.NoError(t, validatex.ValidateStruct(template{Language: "en_US"}))

	v, ok := errx.AsValidation(validatex.ValidateStruct(template{Language: "e"}))
	require.True(t, ok)
	assert.Equal(t, "language", v.Field)
}
