package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignatureHeader carries the gateway's HMAC over the raw webhook body.
const SignatureHeader = "X-Paystack-Signature"

// EventChargeSuccess is the webhook event type for a completed charge.
const EventChargeSuccess = "charge.success"

// Event is an asynchronous webhook notification from the gateway.
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

// EventData is the transaction payload inside a webhook event.
type EventData struct {
	Reference   string   `json:"reference"`
	Status      string   `json:"status"`
	AmountCents int64    `json:"amount"`
	Metadata    Metadata `json:"metadata"`
}

// ValidSignature recomputes the HMAC-SHA512 hex digest of body under secret
// and compares it to the provided signature header. The comparison is
// constant-time; this is the webhook endpoint's only authentication.
func ValidSignature(secret string, body []byte, signature string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
