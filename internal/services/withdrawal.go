package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace-ledger/internal/database"
	"marketplace-ledger/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrPendingWithdrawalExists means the author already has a pending
	// request; only one may be open at a time.
	ErrPendingWithdrawalExists = errors.New("a pending withdrawal request already exists")
	// ErrInvalidPayoutDetails means the payout details do not match the
	// payment method.
	ErrInvalidPayoutDetails = errors.New("payout details do not match payment method")
	// ErrWithdrawalNotFound means no request exists with the given id.
	ErrWithdrawalNotFound = errors.New("withdrawal request not found")
	// ErrWithdrawalNotPending means the request was already decided.
	ErrWithdrawalNotPending = errors.New("withdrawal request is not pending")
	// ErrWithdrawalNotApproved means the request cannot be marked paid.
	ErrWithdrawalNotApproved = errors.New("withdrawal request is not approved")
)

// RequestWithdrawalInput is the validated input for opening a withdrawal
// request. Amount is in paise.
type RequestWithdrawalInput struct {
	AuthorID      string
	Amount        int64
	PaymentMethod string
	PayoutDetails models.PayoutDetails
}

// WithdrawalService owns the withdrawal request state machine:
// pending -> approved -> paid, or pending -> rejected. The wallet debit
// happens exactly once, at approval.
type WithdrawalService struct {
	wallets  *WalletService
	notifier *Notifier
}

// NewWithdrawalService wires the processor. notifier may be nil.
func NewWithdrawalService(wallets *WalletService, notifier *Notifier) *WithdrawalService {
	return &WithdrawalService{wallets: wallets, notifier: notifier}
}

// Request opens a pending withdrawal. The pending-exists check, the balance
// check and the insert run in one transaction; the partial unique index on
// (author_id) where status = 'pending' closes the race two concurrent
// requests would otherwise win together.
func (s *WithdrawalService) Request(input RequestWithdrawalInput) (*models.WithdrawalRequest, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := validatePayoutDetails(input.PaymentMethod, input.PayoutDetails); err != nil {
		return nil, err
	}

	payoutJSON, err := json.Marshal(input.PayoutDetails)
	if err != nil {
		return nil, fmt.Errorf("payout details marshal failed: %w", err)
	}

	request := &models.WithdrawalRequest{
		AuthorID:      input.AuthorID,
		Amount:        input.Amount,
		Status:        models.WithdrawalStatusPending,
		PaymentMethod: input.PaymentMethod,
		PayoutJSON:    string(payoutJSON),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var pending int64
		err := tx.Model(&models.WithdrawalRequest{}).
			Where("author_id = ? AND status = ?", input.AuthorID, models.WithdrawalStatusPending).
			Count(&pending).Error
		if err != nil {
			return fmt.Errorf("pending lookup failed: %w", err)
		}
		if pending > 0 {
			return ErrPendingWithdrawalExists
		}

		var wallet models.AuthorWallet
		err = tx.Where("author_id = ?", input.AuthorID).First(&wallet).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("wallet lookup failed: %w", err)
		}
		if input.Amount > wallet.Balance {
			return ErrInsufficientBalance
		}

		if err := tx.Create(request).Error; err != nil {
			if database.IsDuplicateKeyError(err) {
				return ErrPendingWithdrawalExists
			}
			return fmt.Errorf("withdrawal insert failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return request, nil
}

// Decide applies an admin decision to a pending request. Approval debits
// the wallet and the request becomes approved; if the balance moved since
// the request was created the debit fails, the transaction rolls back and
// the request stays pending for manual resolution. Rejection changes no
// wallet state. The status change is a conditional update on
// status = 'pending', so two concurrent decisions cannot both apply.
func (s *WithdrawalService) Decide(requestID uint, approve bool) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return fmt.Errorf("withdrawal lookup failed: %w", err)
		}

		newStatus := models.WithdrawalStatusRejected
		if approve {
			newStatus = models.WithdrawalStatusApproved
		}

		now := time.Now()
		result := tx.Model(&models.WithdrawalRequest{}).
			Where("id = ? AND status = ?", requestID, models.WithdrawalStatusPending).
			Updates(map[string]interface{}{
				"status":     newStatus,
				"decided_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("withdrawal update failed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrWithdrawalNotPending
		}

		if approve {
			if err := s.wallets.DebitOnApproval(tx, request.AuthorID, request.Amount); err != nil {
				// Rolls back the status change; the request stays pending.
				return err
			}
		}

		request.Status = newStatus
		request.DecidedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.WithdrawalDecided(&request)
	}

	return &request, nil
}

// MarkPaid transitions an approved request to paid once the external payout
// settles. The wallet was already debited at approval.
func (s *WithdrawalService) MarkPaid(requestID uint) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return fmt.Errorf("withdrawal lookup failed: %w", err)
		}

		result := tx.Model(&models.WithdrawalRequest{}).
			Where("id = ? AND status = ?", requestID, models.WithdrawalStatusApproved).
			Update("status", models.WithdrawalStatusPaid)
		if result.Error != nil {
			return fmt.Errorf("withdrawal update failed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrWithdrawalNotApproved
		}

		request.Status = models.WithdrawalStatusPaid
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &request, nil
}

// Get fetches a single withdrawal request by id.
func (s *WithdrawalService) Get(requestID uint) (*models.WithdrawalRequest, error) {
	request, err := database.GetWithdrawal(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("withdrawal lookup failed: %w", err)
	}
	return request, nil
}

// ListByAuthor returns the author's withdrawal requests, newest first.
func (s *WithdrawalService) ListByAuthor(authorID string) ([]models.WithdrawalRequest, error) {
	return database.GetAuthorWithdrawals(authorID)
}

// validatePayoutDetails checks that exactly the fields for the chosen
// payment method are populated: all four bank fields for bank transfers,
// the UPI id for UPI.
func validatePayoutDetails(method string, details models.PayoutDetails) error {
	switch method {
	case models.PayoutMethodBank:
		if details.AccountName == "" || details.AccountNumber == "" || details.IFSC == "" || details.BankName == "" {
			return ErrInvalidPayoutDetails
		}
		if details.UPIID != "" {
			return ErrInvalidPayoutDetails
		}
	case models.PayoutMethodUPI:
		if details.UPIID == "" {
			return ErrInvalidPayoutDetails
		}
		if details.AccountName != "" || details.AccountNumber != "" || details.IFSC != "" || details.BankName != "" {
			return ErrInvalidPayoutDetails
		}
	default:
		return ErrInvalidPayoutDetails
	}
	return nil
}
