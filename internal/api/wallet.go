package api

import (
	"net/http"
	"strconv"
	"time"

	"marketplace-ledger/internal/database"
	"marketplace-ledger/internal/response"
	"marketplace-ledger/internal/services"
	"marketplace-ledger/pkg/logging"

	"github.com/gin-gonic/gin"
)

// GetWallet returns the author's wallet snapshot. Authors without earnings
// get a zero-valued wallet.
// GET /api/wallet/:author_id
func GetWallet(c *gin.Context) {
	authorID := c.Param("author_id")

	wallet, err := services.NewWalletService().GetBalance(authorID)
	if err != nil {
		logging.Errorf("Wallet lookup failed for %s: %v", authorID, err)
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to get wallet")
		return
	}

	response.SuccessJSON(c, wallet)
}

// EarningItem is one credit event in the author's payment history.
type EarningItem struct {
	ID            uint      `json:"id"`
	BuyerID       string    `json:"buyer_id"`
	ItemType      string    `json:"item_type"`
	ItemID        string    `json:"item_id"`
	Amount        int64     `json:"amount"`
	AuthorEarning int64     `json:"author_earning"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// GetPaymentHistory returns the author's credit events, paginated.
// GET /api/wallet/:author_id/history?page=1&limit=20
func GetPaymentHistory(c *gin.Context) {
	authorID := c.Param("author_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	purchases, total, err := database.GetAuthorEarnings(authorID, page, limit)
	if err != nil {
		logging.Errorf("Payment history lookup failed for %s: %v", authorID, err)
		response.ErrorJSON(c, http.StatusInternalServerError, "Failed to get payment history")
		return
	}

	items := make([]EarningItem, len(purchases))
	for i, p := range purchases {
		items[i] = EarningItem{
			ID:            p.ID,
			BuyerID:       p.BuyerID,
			ItemType:      p.ItemType,
			ItemID:        p.ItemID,
			Amount:        p.Amount,
			AuthorEarning: p.AuthorEarning,
			TransactionID: p.TransactionID,
			CreatedAt:     p.CreatedAt,
		}
	}

	response.SuccessJSON(c, gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
