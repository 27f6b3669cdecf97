package api_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace-ledger/internal/api"
	"marketplace-ledger/internal/config"
	"marketplace-ledger/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret   = "test-gateway-secret"
	testAdminKey = "test-admin-key"
)

type fakeGateway struct {
	orders int
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	g.orders++
	return fmt.Sprintf("order_%d", g.orders), nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	config.AppConfig = &config.Config{
		Mode:              gin.TestMode,
		RazorpayKeySecret: testSecret,
		CommissionRate:    decimal.RequireFromString("0.20"),
		TaxRate:           decimal.RequireFromString("0.18"),
		AdminAPIKey:       testAdminKey,
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db
	database.RedisClient = nil
	t.Cleanup(func() { sqlDB.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.InitServices()
	api.SetGateway(&fakeGateway{})
	api.SetupRoutes(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func directPurchaseBody(txID string) gin.H {
	return gin.H{
		"buyer_id":       "buyer-1",
		"item_type":      "book",
		"item_id":        "book-42",
		"author_id":      "author-1",
		"amount":         50000,
		"payment_method": "razorpay",
		"transaction_id": txID,
	}
}

func TestCreatePaymentOrder(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/payments/orders", gin.H{
		"amount":    29900,
		"buyer_id":  "buyer-1",
		"item_type": "book",
		"item_id":   "book-42",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "order_1")
	assert.Contains(t, w.Body.String(), `"currency":"INR"`)
}

func TestCreatePaymentOrder_RejectsBadInput(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/payments/orders", gin.H{
		"amount":   -5,
		"buyer_id": "buyer-1",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyAndRecordPurchase(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/payments/verify", gin.H{
		"order_id":   "order_1",
		"payment_id": "pay_001",
		"signature":  sign("order_1", "pay_001"),
		"buyer_id":   "buyer-1",
		"item_type":  "book",
		"item_id":    "book-42",
		"author_id":  "author-1",
		"amount":     50000,
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"author_earning":31000`)
}

func TestVerifyAndRecordPurchase_BadSignature(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/payments/verify", gin.H{
		"order_id":   "order_1",
		"payment_id": "pay_001",
		"signature":  "forged",
		"buyer_id":   "buyer-1",
		"item_type":  "book",
		"item_id":    "book-42",
		"author_id":  "author-1",
		"amount":     50000,
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was recorded.
	w = doJSON(t, r, "GET", "/api/wallet/author-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":0`)
}

func TestRecordDirectPurchase_DuplicateIsConflict(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/purchases", directPurchaseBody("txn-1"), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// A re-purchase with a fresh transaction id is already owned.
	w = doJSON(t, r, "POST", "/api/purchases", directPurchaseBody("txn-2"), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "already owned")
}

func TestRecordDirectPurchase_RetryReplaysOriginal(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/purchases", directPurchaseBody("txn-1"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// A retry with the same transaction id gets the original record back.
	w = doJSON(t, r, "POST", "/api/purchases", directPurchaseBody("txn-1"), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transaction_id":"txn-1"`)

	// Order history shows a single entry.
	w = doJSON(t, r, "GET", "/api/purchases/buyer/buyer-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
}

func TestWalletAndHistory(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/purchases", directPurchaseBody("txn-1"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "GET", "/api/wallet/author-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":31000`)
	assert.Contains(t, w.Body.String(), `"total_earnings":31000`)

	w = doJSON(t, r, "GET", "/api/wallet/author-1/history?page=1&limit=10", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
	assert.Contains(t, w.Body.String(), `"author_earning":31000`)
}

func TestWithdrawalFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/purchases", directPurchaseBody("txn-1"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/api/withdrawals", gin.H{
		"author_id":      "author-1",
		"amount":         31000,
		"payment_method": "upi",
		"payout_details": gin.H{"upi_id": "author@upi"},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// A second pending request conflicts.
	w = doJSON(t, r, "POST", "/api/withdrawals", gin.H{
		"author_id":      "author-1",
		"amount":         100,
		"payment_method": "upi",
		"payout_details": gin.H{"upi_id": "author@upi"},
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Admin routes require the key.
	decidePath := fmt.Sprintf("/api/admin/withdrawals/%d/decide", created.Data.ID)
	w = doJSON(t, r, "POST", decidePath, gin.H{"approve": true}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	adminHeaders := map[string]string{"X-API-Key": testAdminKey}
	w = doJSON(t, r, "POST", decidePath, gin.H{"approve": true}, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"approved"`)

	w = doJSON(t, r, "GET", "/api/wallet/author-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":0`)
	assert.Contains(t, w.Body.String(), `"total_withdrawn":31000`)

	paidPath := fmt.Sprintf("/api/admin/withdrawals/%d/paid", created.Data.ID)
	w = doJSON(t, r, "POST", paidPath, nil, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"paid"`)
}

func TestAdminGetWithdrawal(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/purchases", directPurchaseBody("txn-1"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, "POST", "/api/withdrawals", gin.H{
		"author_id":      "author-1",
		"amount":         31000,
		"payment_method": "upi",
		"payout_details": gin.H{"upi_id": "author@upi"},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	adminHeaders := map[string]string{"X-API-Key": testAdminKey}

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/admin/withdrawals/%d", created.Data.ID), nil, adminHeaders)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"pending"`)
	assert.Contains(t, w.Body.String(), `"author_id":"author-1"`)

	w = doJSON(t, r, "GET", "/api/admin/withdrawals/9999", nil, adminHeaders)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWithdrawal_InsufficientBalanceOverHTTP(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, "POST", "/api/withdrawals", gin.H{
		"author_id":      "author-1",
		"amount":         100,
		"payment_method": "upi",
		"payout_details": gin.H{"upi_id": "author@upi"},
	}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
