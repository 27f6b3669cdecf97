package services

import (
	"errors"
	"fmt"

	"marketplace-ledger/internal/database"
	"marketplace-ledger/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrInsufficientBalance means a debit would take the balance negative.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrInvalidAmount means a zero or negative amount was supplied.
	ErrInvalidAmount = errors.New("amount must be positive")
)

// WalletService owns every mutation of author wallet balances. Nothing else
// in the codebase writes to author_wallets; credits come from recorded
// purchases and debits from approved withdrawals, both as single SQL
// arithmetic updates so concurrent operations never lose increments.
type WalletService struct{}

// NewWalletService creates a wallet service instance
func NewWalletService() *WalletService {
	return &WalletService{}
}

// Credit adds amount to the author's balance and total earnings inside the
// caller's transaction, creating the wallet row on first earning.
func (s *WalletService) Credit(tx *gorm.DB, authorID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	// Two first-time credits can race the lazy creation; the loser of the
	// insert still finds the row and proceeds to the arithmetic update.
	wallet := models.AuthorWallet{AuthorID: authorID}
	if err := tx.Where(models.AuthorWallet{AuthorID: authorID}).FirstOrCreate(&wallet).Error; err != nil {
		if !database.IsDuplicateKeyError(err) {
			return fmt.Errorf("wallet lookup failed: %w", err)
		}
	}

	result := tx.Model(&models.AuthorWallet{}).
		Where("author_id = ?", authorID).
		Updates(map[string]interface{}{
			"balance":        gorm.Expr("balance + ?", amount),
			"total_earnings": gorm.Expr("total_earnings + ?", amount),
		})
	if result.Error != nil {
		return fmt.Errorf("wallet credit failed: %w", result.Error)
	}

	return nil
}

// DebitOnApproval moves amount from balance to total withdrawn inside the
// caller's transaction. The balance guard is part of the UPDATE itself, so
// the check and the debit are one atomic statement: if the balance moved
// since the withdrawal was requested, zero rows match and the debit fails
// with ErrInsufficientBalance instead of overdrawing.
func (s *WalletService) DebitOnApproval(tx *gorm.DB, authorID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	result := tx.Model(&models.AuthorWallet{}).
		Where("author_id = ? AND balance >= ?", authorID, amount).
		Updates(map[string]interface{}{
			"balance":         gorm.Expr("balance - ?", amount),
			"total_withdrawn": gorm.Expr("total_withdrawn + ?", amount),
		})
	if result.Error != nil {
		return fmt.Errorf("wallet debit failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientBalance
	}

	return nil
}

// GetBalance returns a read-only snapshot of the author's wallet. Authors
// without earnings get a zero-valued wallet.
func (s *WalletService) GetBalance(authorID string) (*models.AuthorWallet, error) {
	return database.GetWallet(authorID)
}
