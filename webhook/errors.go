package webhook

import "github.com/Abraxas-365/wacloud/errx"

var Registry = errx.NewRegistry("WEBHOOK")

var (
	ErrInvalidPayload   = Registry.Register("INVALID_PAYLOAD", errx.KindValidation, "Webhook payload must be a JSON object")
	ErrUnexpectedObject = Registry.Register("UNEXPECTED_OBJECT", errx.KindValidation, "Webhook object is not a WhatsApp Business Account")
	ErrInvalidEntry     = Registry.Register("INVALID_ENTRY", errx.KindValidation, "Webhook entry must be an array")
	ErrInvalidChange    = Registry.Register("INVALID_CHANGE", errx.KindValidation, "Webhook change value cannot be decoded")
	ErrVerifyToken      = Registry.Register("VERIFY_TOKEN_MISMATCH", errx.KindValidation, "Webhook verification failed")
	ErrSignature        = Registry.Register("INVALID_SIGNATURE", errx.KindValidation, "Webhook signature is missing or invalid")
)
