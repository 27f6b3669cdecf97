package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyPaymentSignature checks a Razorpay-style payment confirmation: the
// gateway signs orderID|paymentID with the shared key secret using
// HMAC-SHA256 and sends the hex digest alongside the callback. The
// comparison is constant time so the check cannot be used as a timing
// oracle. Pure function, no side effects.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
