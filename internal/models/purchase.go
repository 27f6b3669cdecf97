package models

// Item types a purchase can reference.
const (
	ItemTypeBook      = "book"
	ItemTypeAudioBook = "audiobook"
)

// Purchase status. Rows are only written for completed sales; a failed
// verification returns before anything reaches the table.
const PurchaseStatusCompleted = "completed"

// Purchase is the immutable record of one completed content sale.
// The (buyer_id, item_type, item_id) composite unique index is what makes
// purchase recording exactly-once: a second completed sale of the same item
// to the same buyer cannot be inserted, no matter how the race interleaves.
// All amounts are in paise.
type Purchase struct {
	BaseModel

	BuyerID  string `json:"buyer_id" gorm:"not null;size:64;uniqueIndex:uniq_buyer_item"`
	ItemType string `json:"item_type" gorm:"not null;size:20;uniqueIndex:uniq_buyer_item"`
	ItemID   string `json:"item_id" gorm:"not null;size:64;uniqueIndex:uniq_buyer_item;index"`

	// Author who owns the purchased item, credited with AuthorEarning.
	AuthorID string `json:"author_id" gorm:"not null;size:64;index"`

	Amount int64 `json:"amount" gorm:"not null"`

	// Revenue split persisted at purchase time so the audit trail is
	// self-contained. PlatformCommission + Tax + AuthorEarning == Amount.
	PlatformCommission int64 `json:"platform_commission" gorm:"not null"`
	Tax                int64 `json:"tax" gorm:"not null"`
	AuthorEarning      int64 `json:"author_earning" gorm:"not null"`

	PaymentMethod string `json:"payment_method" gorm:"size:20"`

	// Gateway-issued payment identifier, unique per successful charge.
	// Doubles as the idempotency key for client retries.
	TransactionID string `json:"transaction_id" gorm:"not null;size:100;uniqueIndex"`

	Status string `json:"status" gorm:"not null;size:20;index"`
}

// TableName overrides the table name
func (Purchase) TableName() string {
	return "purchases"
}
