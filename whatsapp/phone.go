package whatsapp

import (
	"regexp"
	"strings"

	"github.com/Abraxas-365/wacloud/errx"
)

var e164Regex = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

// CleanPhoneNumber strips formatting characters, keeping a leading '+'
func CleanPhoneNumber(phoneNumber string) string {
	var b strings.Builder
	for _, char := range strings.TrimSpace(phoneNumber) {
		switch {
		case char >= '0' && char <= '9':
			b.WriteRune(char)
		case char == '+' && b.Len() == 0:
			b.WriteRune(char)
		}
	}
	return b.String()
}

// IsValidPhone reports whether a cleaned number looks like E.164
func IsValidPhone(phoneNumber string) bool {
	return e164Regex.MatchString(phoneNumber)
}

// recipient cleans and checks a recipient; the Cloud API wants digits only
func recipient(to string) (string, error) {
	cleaned := CleanPhoneNumber(to)
	if !IsValidPhone(cleaned) {
		return "", Registry.New(ErrInvalidRecipient,
			errx.WithField("to"),
			errx.WithDetail("phone_number", to),
			errx.WithDetail("cleaned", cleaned),
		)
	}
	return strings.TrimPrefix(cleaned, "+"), nil
}
