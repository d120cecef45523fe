package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrSignatureMismatch reports that a reported payment completion or webhook
// delivery was not signed by the gateway's secret. Callers log the identifiers
// involved; the payload is never trusted.
var ErrSignatureMismatch = errors.New("gateway signature mismatch")

// VerifyCompletionSignature checks the signature the browser reports after
// hosted checkout. The gateway signs "<intentID>|<paymentID>" with the shared
// secret; comparison is constant time.
func VerifyCompletionSignature(intentID, paymentID, signature, secret string) error {
	expected := signHex([]byte(intentID+"|"+paymentID), secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

// VerifyWebhookSignature checks the gateway's server-to-server delivery
// signature over the raw request body. This runs before any payload parsing
// or dedup work.
func VerifyWebhookSignature(body []byte, signature, secret string) error {
	expected := signHex(body, secret)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

func signHex(msg []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil))
}
