package database

import (
	"marketplace-ledger/internal/models"
)

// GetWithdrawal fetches a withdrawal request by id.
func GetWithdrawal(id uint) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	err := DB.First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetAuthorWithdrawals lists an author's withdrawal requests, newest first.
func GetAuthorWithdrawals(authorID string) ([]models.WithdrawalRequest, error) {
	var requests []models.WithdrawalRequest
	err := DB.Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}
