package api

import (
	"fmt"
	"net/http"

	"marketplace-ledger/internal/models"
	"marketplace-ledger/internal/response"
	"marketplace-ledger/pkg/logging"

	"github.com/gin-gonic/gin"
)

// CreatePaymentOrderRequest represents a create payment order request.
// Amount is in paise.
type CreatePaymentOrderRequest struct {
	Amount   int64  `json:"amount" binding:"required,gt=0"`
	Currency string `json:"currency"`
	BuyerID  string `json:"buyer_id" binding:"required"`
	ItemType string `json:"item_type" binding:"required,oneof=book audiobook"`
	ItemID   string `json:"item_id" binding:"required"`
}

// CreatePaymentOrder creates an order at the payment gateway and caches it
// for the verification step. No ledger state is written here.
// POST /api/payments/orders
func CreatePaymentOrder(c *gin.Context) {
	var req CreatePaymentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	if req.Currency == "" {
		req.Currency = "INR"
	}

	receipt := fmt.Sprintf("%s:%s:%s", req.BuyerID, req.ItemType, req.ItemID)
	orderID, err := gateway.CreateOrder(c.Request.Context(), req.Amount, req.Currency, receipt)
	if err != nil {
		logging.Errorf("Payment order creation failed: %v", err)
		response.ErrorJSON(c, http.StatusBadGateway, "Failed to create payment order")
		return
	}

	order := &models.PaymentOrder{
		OrderID:  orderID,
		Amount:   req.Amount,
		Currency: req.Currency,
		BuyerID:  req.BuyerID,
		ItemType: req.ItemType,
		ItemID:   req.ItemID,
	}
	if err := orderCache.Store(c.Request.Context(), order); err != nil {
		// The order exists at the gateway; losing the cache entry only
		// skips the later amount cross-check.
		logging.Errorf("Payment order cache store failed for %s: %v", orderID, err)
	}

	response.CreatedJSON(c, gin.H{
		"order_id": orderID,
		"amount":   req.Amount,
		"currency": req.Currency,
	})
}
