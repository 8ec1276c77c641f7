package whatsapp

import "github.com/Abraxas-365/wacloud/errx"

var Registry = errx.NewRegistry("WHATSAPP")

var (
	ErrInvalidRecipient = Registry.Register("INVALID_RECIPIENT", errx.KindValidation, "Recipient is not a valid E.164 phone number")
	ErrMissingContent   = Registry.Register("MISSING_CONTENT", errx.KindValidation, "Message content is missing")
	ErrMissingAccount   = Registry.Register("MISSING_BUSINESS_ACCOUNT", errx.KindValidation, "Business account ID is required for this operation")
	ErrTemplateNotFound = Registry.Register("TEMPLATE_NOT_FOUND", errx.KindAPI, "Template not found")
	ErrEmptyResponse    = Registry.Register("EMPTY_RESPONSE", errx.KindNetwork, "Response did not contain the expected data")
)
