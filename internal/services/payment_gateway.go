package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"marketplace-ledger/internal/database"
	"marketplace-ledger/internal/models"
	"marketplace-ledger/pkg/logging"

	"github.com/redis/go-redis/v9"
)

// ErrAmountMismatch means the verified payment's amount does not match the
// order that was created for it.
var ErrAmountMismatch = errors.New("payment amount does not match order")

// PaymentGateway creates charge orders at the external payment provider.
// It is an interface so handlers and tests can run against a fake without
// network access.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
}

// RazorpayGateway implements PaymentGateway against the Razorpay Orders
// API. Amounts are in paise, which is also Razorpay's wire unit.
type RazorpayGateway struct {
	keyID      string
	keySecret  string
	baseURL    string
	httpClient *http.Client
}

// NewRazorpayGateway creates a gateway client with the given credentials.
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   "https://api.razorpay.com/v1",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type razorpayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type razorpayOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder creates an order and returns the gateway order id.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/orders", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway error: status %d", resp.StatusCode)
	}

	var order razorpayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return "", fmt.Errorf("failed to decode order response: %w", err)
	}

	return order.ID, nil
}

// PaymentOrderCache keeps created orders in Redis for the verification step.
// Lookups are best effort: an expired or missing entry does not fail a
// verification, it only skips the amount cross-check.
type PaymentOrderCache struct {
	ttl time.Duration
}

// NewPaymentOrderCache creates a cache with the given entry lifetime.
func NewPaymentOrderCache(ttl time.Duration) *PaymentOrderCache {
	return &PaymentOrderCache{ttl: ttl}
}

func orderCacheKey(orderID string) string {
	return "payment_order:" + orderID
}

// Store caches a created order under its gateway order id.
func (c *PaymentOrderCache) Store(ctx context.Context, order *models.PaymentOrder) error {
	if database.RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}
	return database.SetCache(ctx, orderCacheKey(order.OrderID), data, c.ttl)
}

// Lookup returns the cached order, or nil when the entry is gone.
func (c *PaymentOrderCache) Lookup(ctx context.Context, orderID string) (*models.PaymentOrder, error) {
	if database.RedisClient == nil {
		return nil, nil
	}

	data, err := database.GetCache(ctx, orderCacheKey(orderID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var order models.PaymentOrder
	if err := json.Unmarshal([]byte(data), &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached order: %w", err)
	}
	return &order, nil
}

// CheckAmount cross-checks a payment against its cached order. Cache misses
// pass; a present entry with a different amount fails.
func (c *PaymentOrderCache) CheckAmount(ctx context.Context, orderID string, amount int64) error {
	order, err := c.Lookup(ctx, orderID)
	if err != nil {
		logging.Errorf("Payment order cache lookup failed for %s: %v", orderID, err)
		return nil
	}
	if order == nil {
		return nil
	}
	if order.Amount != amount {
		return ErrAmountMismatch
	}
	return nil
}
