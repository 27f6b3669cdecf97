package models

// PaymentOrder mirrors an order created at the payment gateway. It is not
// persisted to the database; created orders are cached in Redis with a TTL
// so the verification step can cross-check the charged amount against what
// was actually ordered.
type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	BuyerID  string `json:"buyer_id"`
	ItemType string `json:"item_type"`
	ItemID   string `json:"item_id"`
}
