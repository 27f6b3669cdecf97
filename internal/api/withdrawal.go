package api

import (
	"errors"
	"net/http"
	"strconv"

	"marketplace-ledger/internal/models"
	"marketplace-ledger/internal/response"
	"marketplace-ledger/internal/services"
	"marketplace-ledger/pkg/logging"

	"github.com/gin-gonic/gin"
)

// PayoutDetailsRequest carries the payout destination fields. Which fields
// are required depends on the payment method.
type PayoutDetailsRequest struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	IFSC          string `json:"ifsc"`
	BankName      string `json:"bank_name"`
	UPIID         string `json:"upi_id"`
}

// RequestWithdrawalRequest represents a withdrawal request. Amount is in
// paise.
type RequestWithdrawalRequest struct {
	AuthorID      string               `json:"author_id" binding:"required"`
	Amount        int64                `json:"amount" binding:"required,gt=0"`
	PaymentMethod string               `json:"payment_method" binding:"required,oneof=bank upi"`
	PayoutDetails PayoutDetailsRequest `json:"payout_details" binding:"required"`
}

// RequestWithdrawal opens a pending withdrawal request.
// POST /api/withdrawals
func RequestWithdrawal(c *gin.Context) {
	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	request, err := newWithdrawalService().Request(services.RequestWithdrawalInput{
		AuthorID:      req.AuthorID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		PayoutDetails: models.PayoutDetails{
			AccountName:   req.PayoutDetails.AccountName,
			AccountNumber: req.PayoutDetails.AccountNumber,
			IFSC:          req.PayoutDetails.IFSC,
			BankName:      req.PayoutDetails.BankName,
			UPIID:         req.PayoutDetails.UPIID,
		},
	})
	if err != nil {
		respondWithdrawalError(c, err)
		return
	}

	response.CreatedJSON(c, request)
}

// ListWithdrawals returns the author's withdrawal requests, newest first.
// GET /api/withdrawals/:author_id
func ListWithdrawals(c *gin.Context) {
	authorID := c.Param("author_id")

	requests, err := newWithdrawalService().ListByAuthor(authorID)
	if err != nil {
		logging.Errorf("Withdrawal list failed for %s: %v", authorID, err)
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to list withdrawals")
		return
	}

	response.SuccessJSON(c, requests)
}

// GetWithdrawal returns a single withdrawal request, for admin review
// before deciding it.
// GET /api/admin/withdrawals/:id
func GetWithdrawal(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid withdrawal request id")
		return
	}

	request, err := newWithdrawalService().Get(uint(requestID))
	if err != nil {
		respondWithdrawalError(c, err)
		return
	}

	response.SuccessJSON(c, request)
}

// DecideWithdrawalRequest represents an admin decision.
type DecideWithdrawalRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// DecideWithdrawal approves or rejects a pending withdrawal request.
// POST /api/admin/withdrawals/:id/decide
func DecideWithdrawal(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid withdrawal request id")
		return
	}

	var req DecideWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	request, err := newWithdrawalService().Decide(uint(requestID), *req.Approve)
	if err != nil {
		respondWithdrawalError(c, err)
		return
	}

	withdrawalDecisionsTotal.WithLabelValues(request.Status).Inc()
	response.SuccessJSON(c, request)
}

// MarkWithdrawalPaid marks an approved request paid after the external
// payout settles.
// POST /api/admin/withdrawals/:id/paid
func MarkWithdrawalPaid(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.ErrorJSON(c, http.StatusBadRequest, "Invalid withdrawal request id")
		return
	}

	request, err := newWithdrawalService().MarkPaid(uint(requestID))
	if err != nil {
		respondWithdrawalError(c, err)
		return
	}

	withdrawalDecisionsTotal.WithLabelValues(request.Status).Inc()
	response.SuccessJSON(c, request)
}

// respondWithdrawalError maps withdrawal errors to HTTP responses.
func respondWithdrawalError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPendingWithdrawalExists):
		response.ErrorJSON(c, http.StatusConflict, "A pending withdrawal request already exists")
	case errors.Is(err, services.ErrInsufficientBalance):
		response.ErrorJSON(c, http.StatusUnprocessableEntity, "Insufficient wallet balance")
	case errors.Is(err, services.ErrInvalidPayoutDetails), errors.Is(err, services.ErrInvalidAmount):
		response.ErrorJSON(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrWithdrawalNotFound):
		response.ErrorJSON(c, http.StatusNotFound, "Withdrawal request not found")
	case errors.Is(err, services.ErrWithdrawalNotPending), errors.Is(err, services.ErrWithdrawalNotApproved):
		response.ErrorJSON(c, http.StatusConflict, err.Error())
	default:
		logging.Errorf("Withdrawal operation failed: %v", err)
		response.ErrorJSON(c, http.StatusInternalServerError, "Withdrawal operation failed")
	}
}
