package models

import (
	"time"
)

// Withdrawal statuses. pending -> approved -> paid, or pending -> rejected.
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
	WithdrawalStatusPaid     = "paid"
)

// Payout methods.
const (
	PayoutMethodBank = "bank"
	PayoutMethodUPI  = "upi"
)

// PayoutDetails is the destination for a withdrawal, serialized to JSON on
// the request row. Exactly one of the bank field set or the UPI id is
// populated, matching the payment method.
type PayoutDetails struct {
	AccountName   string `json:"account_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	IFSC          string `json:"ifsc,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	UPIID         string `json:"upi_id,omitempty"`
}

// WithdrawalRequest is one author-initiated attempt to convert wallet
// balance into an external payout. The partial unique index on author_id
// enforces at most one pending request per author at the storage layer.
// Amount is in paise.
type WithdrawalRequest struct {
	BaseModel

	AuthorID      string     `json:"author_id" gorm:"not null;size:64;index;uniqueIndex:uniq_pending_withdrawal,where:status = 'pending'"`
	Amount        int64      `json:"amount" gorm:"not null"`
	Status        string     `json:"status" gorm:"not null;size:20;index"`
	PaymentMethod string     `json:"payment_method" gorm:"not null;size:20"`
	PayoutJSON    string     `json:"payout_details" gorm:"type:text"`
	DecidedAt     *time.Time `json:"decided_at"`
}

// TableName overrides the table name
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
