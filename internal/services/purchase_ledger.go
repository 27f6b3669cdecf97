package services

import (
	"errors"
	"fmt"

	"marketplace-ledger/internal/database"
	"marketplace-ledger/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrAlreadyPurchased means a completed purchase already exists for
	// this buyer and item, or this transaction id was already recorded.
	ErrAlreadyPurchased = errors.New("item already purchased")
	// ErrSignatureMismatch means the gateway proof failed verification.
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	// ErrInvalidItemType means the item reference is not a known type.
	ErrInvalidItemType = errors.New("invalid item type")
	// ErrMissingReference means a required buyer, item, author or
	// transaction identifier is empty.
	ErrMissingReference = errors.New("buyer, item, author and transaction ids are required")
)

// GatewayProof carries the fields of a gateway payment confirmation that
// must be verified before the purchase touches the ledger.
type GatewayProof struct {
	OrderID   string
	PaymentID string
	Signature string
}

// RecordPurchaseInput is the validated input for recording one sale.
// Amount is in paise.
type RecordPurchaseInput struct {
	BuyerID       string
	ItemType      string
	ItemID        string
	AuthorID      string
	Amount        int64
	PaymentMethod string
	TransactionID string

	// Proof is nil for purchases the gateway confirmed out-of-band.
	Proof *GatewayProof
}

// PurchaseLedger records completed purchases exactly once per (buyer, item)
// and credits the item owner's wallet in the same transaction. Purchase rows
// are never mutated or deleted; they are the audit trail.
type PurchaseLedger struct {
	policy        *CommissionPolicy
	wallets       *WalletService
	notifier      *Notifier
	gatewaySecret string
}

// NewPurchaseLedger wires the ledger with its collaborators. notifier may
// be nil when no notification channel is configured.
func NewPurchaseLedger(policy *CommissionPolicy, wallets *WalletService, notifier *Notifier, gatewaySecret string) *PurchaseLedger {
	return &PurchaseLedger{
		policy:        policy,
		wallets:       wallets,
		notifier:      notifier,
		gatewaySecret: gatewaySecret,
	}
}

// RecordPurchase verifies the gateway proof when present, then inserts the
// purchase and credits the author wallet in one transaction. Either both
// happen or neither does. Duplicate attempts, concurrent or sequential,
// return ErrAlreadyPurchased; the losing writer of a race is caught by the
// unique indexes, not by the read check.
func (l *PurchaseLedger) RecordPurchase(input RecordPurchaseInput) (*models.Purchase, error) {
	if input.BuyerID == "" || input.ItemID == "" || input.AuthorID == "" || input.TransactionID == "" {
		return nil, ErrMissingReference
	}
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if input.ItemType != models.ItemTypeBook && input.ItemType != models.ItemTypeAudioBook {
		return nil, ErrInvalidItemType
	}

	// Verify before any state is touched. A failed signature writes nothing.
	if input.Proof != nil {
		if !VerifyPaymentSignature(input.Proof.OrderID, input.Proof.PaymentID, input.Proof.Signature, l.gatewaySecret) {
			return nil, ErrSignatureMismatch
		}
	}

	commission, tax, earning := l.policy.Split(input.Amount)

	purchase := &models.Purchase{
		BuyerID:            input.BuyerID,
		ItemType:           input.ItemType,
		ItemID:             input.ItemID,
		AuthorID:           input.AuthorID,
		Amount:             input.Amount,
		PlatformCommission: commission,
		Tax:                tax,
		AuthorEarning:      earning,
		PaymentMethod:      input.PaymentMethod,
		TransactionID:      input.TransactionID,
		Status:             models.PurchaseStatusCompleted,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Purchase{}).
			Where("buyer_id = ? AND item_type = ? AND item_id = ? AND status = ?",
				input.BuyerID, input.ItemType, input.ItemID, models.PurchaseStatusCompleted).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("purchase lookup failed: %w", err)
		}
		if count > 0 {
			return ErrAlreadyPurchased
		}

		if err := tx.Create(purchase).Error; err != nil {
			if database.IsDuplicateKeyError(err) {
				return ErrAlreadyPurchased
			}
			return fmt.Errorf("purchase insert failed: %w", err)
		}

		return l.wallets.Credit(tx, input.AuthorID, earning)
	})
	if err != nil {
		return nil, err
	}

	// Best effort, after commit. A notification failure never unwinds the
	// ledger write.
	if l.notifier != nil {
		l.notifier.PurchaseRecorded(purchase)
	}

	return purchase, nil
}
