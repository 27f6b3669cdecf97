package models

import (
	"time"
)

// AuthorWallet holds one author's running balance of un-withdrawn earnings,
// in paise. Balance == TotalEarnings - TotalWithdrawn at all times and is
// never negative; both totals are monotonically non-decreasing. Rows are
// created lazily on the first credit and mutated only through the wallet
// service's credit and debit operations.
type AuthorWallet struct {
	AuthorID       string    `json:"author_id" gorm:"primaryKey;size:64"`
	Balance        int64     `json:"balance" gorm:"not null;default:0"`
	TotalEarnings  int64     `json:"total_earnings" gorm:"not null;default:0"`
	TotalWithdrawn int64     `json:"total_withdrawn" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName overrides the table name
func (AuthorWallet) TableName() string {
	return "author_wallets"
}
