package webhook

import "github.com/Abraxas-365/wacloud/validatex"

// PayloadSchema is the JSON schema run by the injected validator after the structural
// checks. It pins down entry and change shapes; change values stay open.
var PayloadSchema = validatex.Schema{
	Name: "webhook.payload",
	Document: []byte(`{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["object", "entry"],
  "properties": {
    "object": {"const": "whatsapp_business_account"},
    "entry": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "changes"],
        "properties": {
          "id": {"type": "string"},
          "time": {"type": "integer"},
          "changes": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["field", "value"],
              "properties": {
                "field": {"type": "string", "minLength": 1},
                "value": {}
              }
            }
          }
        }
      }
    }
  }
}`),
}
