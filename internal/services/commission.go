package services

import (
	"github.com/shopspring/decimal"
)

// CommissionPolicy splits a sale amount into the platform commission, the
// withheld tax and the author's earning. Rates are configured externally;
// amounts are in paise.
type CommissionPolicy struct {
	CommissionRate decimal.Decimal
	TaxRate        decimal.Decimal
}

// NewCommissionPolicy creates a policy with the given rates, e.g. 0.20
// commission and 0.18 tax.
func NewCommissionPolicy(commissionRate, taxRate decimal.Decimal) *CommissionPolicy {
	return &CommissionPolicy{
		CommissionRate: commissionRate,
		TaxRate:        taxRate,
	}
}

// Split computes (platformCommission, tax, authorEarning) for a sale.
// Commission and tax are rounded half-up to whole paise and the earning is
// the remainder, so the three parts always sum exactly to amount. Any other
// rounding scheme drifts paise across transactions.
func (p *CommissionPolicy) Split(amount int64) (commission, tax, earning int64) {
	value := decimal.NewFromInt(amount)
	commission = value.Mul(p.CommissionRate).Round(0).IntPart()
	tax = value.Mul(p.TaxRate).Round(0).IntPart()
	earning = amount - commission - tax
	return commission, tax, earning
}
