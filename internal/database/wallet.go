package database

import (
	"errors"

	"marketplace-ledger/internal/models"

	"gorm.io/gorm"
)

// GetWallet returns the wallet for an author. Authors that have never
// earned have no row yet; a zero-valued wallet is returned for them so
// reads never create state.
func GetWallet(authorID string) (*models.AuthorWallet, error) {
	var wallet models.AuthorWallet
	err := DB.Where("author_id = ?", authorID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.AuthorWallet{AuthorID: authorID}, nil
		}
		return nil, err
	}
	return &wallet, nil
}
