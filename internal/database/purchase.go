package database

import (
	"errors"

	"marketplace-ledger/internal/models"

	"gorm.io/gorm"
)

// GetPurchaseByTransactionID fetches a purchase by its gateway transaction id.
func GetPurchaseByTransactionID(transactionID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := DB.Where("transaction_id = ?", transactionID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// GetBuyerPurchases lists a buyer's completed purchases, newest first.
func GetBuyerPurchases(buyerID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := DB.Where("buyer_id = ? AND status = ?", buyerID, models.PurchaseStatusCompleted).
		Order("created_at DESC").
		Find(&purchases).Error
	return purchases, err
}

// GetAuthorEarnings lists the credit events for an author, newest first,
// with offset pagination. Returns the page and the total row count.
func GetAuthorEarnings(authorID string, page, limit int) ([]models.Purchase, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := DB.Model(&models.Purchase{}).
		Where("author_id = ? AND status = ?", authorID, models.PurchaseStatusCompleted)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []models.Purchase
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

// IsDuplicateKeyError reports whether err is a uniqueness violation.
func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
