package services_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"marketplace-ledger/internal/services"

	"github.com/stretchr/testify/assert"
)

// gatewaySign mirrors what the payment gateway does on its side: sign
// orderID|paymentID with the shared secret.
func gatewaySign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyPaymentSignature_Valid(t *testing.T) {
	sig := gatewaySign("order_abc123", "pay_def456", "shhh")

	assert.True(t, services.VerifyPaymentSignature("order_abc123", "pay_def456", sig, "shhh"))
}

func TestVerifyPaymentSignature_AnyMutationFails(t *testing.T) {
	sig := gatewaySign("order_abc123", "pay_def456", "shhh")

	// Flipping any single hex digit must flip the result.
	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		assert.False(t, services.VerifyPaymentSignature("order_abc123", "pay_def456", string(mutated), "shhh"),
			"mutated signature at position %d should not verify", i)
	}
}

func TestVerifyPaymentSignature_WrongSecret(t *testing.T) {
	sig := gatewaySign("order_abc123", "pay_def456", "shhh")

	assert.False(t, services.VerifyPaymentSignature("order_abc123", "pay_def456", sig, "other"))
}

func TestVerifyPaymentSignature_WrongOrder(t *testing.T) {
	sig := gatewaySign("order_abc123", "pay_def456", "shhh")

	assert.False(t, services.VerifyPaymentSignature("order_xyz789", "pay_def456", sig, "shhh"))
	assert.False(t, services.VerifyPaymentSignature("order_abc123", "pay_zzz999", sig, "shhh"))
}

func TestVerifyPaymentSignature_EmptySignature(t *testing.T) {
	assert.False(t, services.VerifyPaymentSignature("order_abc123", "pay_def456", "", "shhh"))
}
