package services_test

import (
	"testing"

	"marketplace-ledger/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func standardPolicy() *services.CommissionPolicy {
	return services.NewCommissionPolicy(
		decimal.RequireFromString("0.20"),
		decimal.RequireFromString("0.18"),
	)
}

func TestSplit_ReferenceAmounts(t *testing.T) {
	policy := standardPolicy()

	// All amounts in paise.
	tests := []struct {
		name       string
		amount     int64
		commission int64
		tax        int64
		earning    int64
	}{
		{"rs 299 sale", 29900, 5980, 5382, 18538},
		{"rs 500 sale", 50000, 10000, 9000, 31000},
		{"one paisa", 1, 0, 0, 1},
		{"rs 0.99", 99, 20, 18, 61},
		{"half rounds up", 25, 5, 5, 15}, // 25 * 0.18 = 4.5 -> 5
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commission, tax, earning := policy.Split(tt.amount)
			assert.Equal(t, tt.commission, commission, "commission")
			assert.Equal(t, tt.tax, tax, "tax")
			assert.Equal(t, tt.earning, earning, "earning")
			assert.Equal(t, tt.amount, commission+tax+earning, "parts must sum to the sale amount")
		})
	}
}

func TestSplit_NeverDriftsAcrossAmounts(t *testing.T) {
	policy := standardPolicy()

	// Awkward amounts where naive rounding schemes leak paise.
	for amount := int64(1); amount <= 10000; amount += 7 {
		commission, tax, earning := policy.Split(amount)
		assert.Equal(t, amount, commission+tax+earning, "amount %d", amount)
		assert.GreaterOrEqual(t, earning, int64(0), "amount %d", amount)
	}
}

func TestSplit_ZeroRates(t *testing.T) {
	policy := services.NewCommissionPolicy(decimal.Zero, decimal.Zero)

	commission, tax, earning := policy.Split(29900)
	assert.Zero(t, commission)
	assert.Zero(t, tax)
	assert.Equal(t, int64(29900), earning)
}
