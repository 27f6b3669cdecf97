package api

import (
	"errors"
	"net/http"

	"marketplace-ledger/internal/database"
	"marketplace-ledger/internal/response"
	"marketplace-ledger/internal/services"
	"marketplace-ledger/pkg/logging"

	"github.com/gin-gonic/gin"
)

// VerifyAndRecordPurchaseRequest represents a gateway-verified purchase.
// Amount is in paise; the gateway payment id becomes the ledger's
// transaction id, so client retries carry the same idempotency key.
type VerifyAndRecordPurchaseRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	BuyerID   string `json:"buyer_id" binding:"required"`
	ItemType  string `json:"item_type" binding:"required,oneof=book audiobook"`
	ItemID    string `json:"item_id" binding:"required"`
	AuthorID  string `json:"author_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
}

// VerifyAndRecordPurchase verifies the gateway signature and records the
// purchase exactly once.
// POST /api/payments/verify
func VerifyAndRecordPurchase(c *gin.Context) {
	var req VerifyAndRecordPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	// Cross-check against the cached order when it is still available.
	if err := orderCache.CheckAmount(c.Request.Context(), req.OrderID, req.Amount); err != nil {
		purchasesRejectedTotal.WithLabelValues("amount_mismatch").Inc()
		response.ErrorJSON(c, http.StatusBadRequest, "Payment amount does not match order")
		return
	}

	purchase, err := newPurchaseLedger().RecordPurchase(services.RecordPurchaseInput{
		BuyerID:       req.BuyerID,
		ItemType:      req.ItemType,
		ItemID:        req.ItemID,
		AuthorID:      req.AuthorID,
		Amount:        req.Amount,
		PaymentMethod: "razorpay",
		TransactionID: req.PaymentID,
		Proof: &services.GatewayProof{
			OrderID:   req.OrderID,
			PaymentID: req.PaymentID,
			Signature: req.Signature,
		},
	})
	if err != nil {
		if replayRecordedPurchase(c, err, req.PaymentID) {
			return
		}
		respondPurchaseError(c, err)
		return
	}

	purchasesRecordedTotal.Inc()
	response.CreatedJSON(c, purchase)
}

// RecordDirectPurchaseRequest represents a purchase the gateway confirmed
// out-of-band, recorded without a signature check. Amount is in paise.
type RecordDirectPurchaseRequest struct {
	BuyerID       string `json:"buyer_id" binding:"required"`
	ItemType      string `json:"item_type" binding:"required,oneof=book audiobook"`
	ItemID        string `json:"item_id" binding:"required"`
	AuthorID      string `json:"author_id" binding:"required"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	TransactionID string `json:"transaction_id" binding:"required"`
}

// RecordDirectPurchase records a purchase without a gateway proof.
// POST /api/purchases
func RecordDirectPurchase(c *gin.Context) {
	var req RecordDirectPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	purchase, err := newPurchaseLedger().RecordPurchase(services.RecordPurchaseInput{
		BuyerID:       req.BuyerID,
		ItemType:      req.ItemType,
		ItemID:        req.ItemID,
		AuthorID:      req.AuthorID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		if replayRecordedPurchase(c, err, req.TransactionID) {
			return
		}
		respondPurchaseError(c, err)
		return
	}

	purchasesRecordedTotal.Inc()
	response.CreatedJSON(c, purchase)
}

// ListBuyerPurchases returns the buyer's completed purchases, newest
// first. A duplicate attempt never produces a second entry here.
// GET /api/purchases/buyer/:buyer_id
func ListBuyerPurchases(c *gin.Context) {
	buyerID := c.Param("buyer_id")

	purchases, err := database.GetBuyerPurchases(buyerID)
	if err != nil {
		logging.Errorf("Purchase list failed for %s: %v", buyerID, err)
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to list purchases")
		return
	}

	response.SuccessJSON(c, purchases)
}

// replayRecordedPurchase handles a retry that reuses an already recorded
// gateway transaction id: the original record is returned as a success so
// the caller sees the same outcome as the first attempt.
func replayRecordedPurchase(c *gin.Context, err error, transactionID string) bool {
	if !errors.Is(err, services.ErrAlreadyPurchased) {
		return false
	}

	purchase, lookupErr := database.GetPurchaseByTransactionID(transactionID)
	if lookupErr != nil {
		return false
	}

	purchasesRejectedTotal.WithLabelValues("replay").Inc()
	response.SuccessJSON(c, purchase)
	return true
}

// respondPurchaseError maps ledger errors to HTTP responses. Every business
// rule gets its own distinguishable outcome; only persistence failures fall
// through to a 500.
func respondPurchaseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAlreadyPurchased):
		purchasesRejectedTotal.WithLabelValues("already_purchased").Inc()
		response.ErrorJSON(c, http.StatusConflict, "Item already owned")
	case errors.Is(err, services.ErrSignatureMismatch):
		purchasesRejectedTotal.WithLabelValues("signature_mismatch").Inc()
		response.ErrorJSON(c, http.StatusBadRequest, "Payment signature verification failed")
	case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrInvalidItemType),
		errors.Is(err, services.ErrMissingReference):
		purchasesRejectedTotal.WithLabelValues("validation").Inc()
		response.ErrorJSON(c, http.StatusBadRequest, err.Error())
	default:
		logging.Errorf("Purchase recording failed: %v", err)
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to record purchase")
	}
}
