package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
)

const (
	// SignatureHeader carries "sha256=<hex hmac of the raw body>"
	SignatureHeader = "X-Hub-Signature-256"
	signaturePrefix = "sha256="
)

// Verify reports whether signatureHeader is the HMAC-SHA256 of rawBody under appSecret.
// Missing or malformed headers and an empty secret yield false.
func Verify(rawBody []byte, signatureHeader, appSecret string) bool {
	if appSecret == "" || !strings.HasPrefix(signatureHeader, signaturePrefix) {
		return false
	}

	received, err := hex.DecodeString(strings.TrimPrefix(signatureHeader, signaturePrefix))
	if err != nil || len(received) != sha256.Size {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(rawBody)
	return hmac.Equal(received, mac.Sum(nil))
}

// Sign returns the header value the platform would send for rawBody
func Sign(rawBody []byte, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(rawBody)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verifier checks inbound requests against one app secret
type Verifier struct {
	secret string
}

func NewVerifier(appSecret string) *Verifier {
	return &Verifier{secret: appSecret}
}

// VerifyRequest reads the body, restores it for later readers, and checks the signature
func (v *Verifier) VerifyRequest(r *http.Request) ([]byte, bool) {
	if r.Body == nil {
		return nil, false
	}

	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		return nil, false
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, Verify(body, r.Header.Get(SignatureHeader), v.secret)
}
