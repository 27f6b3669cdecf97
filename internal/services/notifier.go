package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"marketplace-ledger/internal/models"
	"marketplace-ledger/pkg/logging"
)

// Notifier delivers ledger events to the app backend and to the payout
// operations mailbox. Every delivery runs in its own goroutine and is fire
// and forget: failures are logged and never reach the caller, so a dead
// notification channel cannot fail or roll back a ledger write.
type Notifier struct {
	httpClient *http.Client

	webhookURL    string
	webhookSecret string

	brevoAPIKey    string
	brevoFromEmail string
	brevoFromName  string
	payoutAlertTo  string
}

// NotifierConfig carries the delivery endpoints. Empty fields disable the
// corresponding channel.
type NotifierConfig struct {
	WebhookURL     string
	WebhookSecret  string
	BrevoAPIKey    string
	BrevoFromEmail string
	BrevoFromName  string
	PayoutAlertTo  string
}

// NewNotifier creates a notifier
func NewNotifier(cfg NotifierConfig) *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		webhookURL:     cfg.WebhookURL,
		webhookSecret:  cfg.WebhookSecret,
		brevoAPIKey:    cfg.BrevoAPIKey,
		brevoFromEmail: cfg.BrevoFromEmail,
		brevoFromName:  cfg.BrevoFromName,
		payoutAlertTo:  cfg.PayoutAlertTo,
	}
}

// WebhookPayload is the event sent to the app backend.
type WebhookPayload struct {
	Event         string `json:"event"`
	BuyerID       string `json:"buyer_id,omitempty"`
	AuthorID      string `json:"author_id"`
	ItemType      string `json:"item_type,omitempty"`
	ItemID        string `json:"item_id,omitempty"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
}

// PurchaseRecorded announces a recorded purchase to the app backend.
func (n *Notifier) PurchaseRecorded(purchase *models.Purchase) {
	payload := WebhookPayload{
		Event:         "purchase.recorded",
		BuyerID:       purchase.BuyerID,
		AuthorID:      purchase.AuthorID,
		ItemType:      purchase.ItemType,
		ItemID:        purchase.ItemID,
		Amount:        purchase.Amount,
		TransactionID: purchase.TransactionID,
		Status:        purchase.Status,
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	go n.sendWebhookWithRetry(payload)
}

// WithdrawalDecided announces a withdrawal decision to the app backend and
// alerts the payout operations mailbox.
func (n *Notifier) WithdrawalDecided(request *models.WithdrawalRequest) {
	payload := WebhookPayload{
		Event:     "withdrawal.decided",
		AuthorID:  request.AuthorID,
		Amount:    request.Amount,
		Status:    request.Status,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	go n.sendWebhookWithRetry(payload)
	go n.sendPayoutAlert(request)
}

// sendWebhookWithRetry retries on a 1s, 5s, 30s schedule before giving up.
func (n *Notifier) sendWebhookWithRetry(payload WebhookPayload) {
	if n.webhookURL == "" {
		return
	}

	retryDelays := []time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}

	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		err := n.sendWebhook(payload)
		if err == nil {
			logging.Infof("Webhook delivered - event: %s, attempt: %d", payload.Event, attempt+1)
			return
		}

		logging.Errorf("Webhook delivery failed - event: %s, attempt: %d, error: %v",
			payload.Event, attempt+1, err)

		if attempt < len(retryDelays) {
			time.Sleep(retryDelays[attempt])
		}
	}

	logging.Errorf("Webhook delivery abandoned - event: %s, url: %s", payload.Event, n.webhookURL)
}

func (n *Notifier) sendWebhook(payload WebhookPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest("POST", n.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "MarketplaceLedger-Webhook/1.0")

	if n.webhookSecret != "" {
		req.Header.Set("X-Ledger-Signature", n.signPayload(jsonData))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// signPayload generates the HMAC-SHA256 signature the receiver verifies.
func (n *Notifier) signPayload(payload []byte) string {
	h := hmac.New(sha256.New, []byte(n.webhookSecret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Brevo transactional email types.
type emailRequest struct {
	Sender      emailAddress   `json:"sender"`
	To          []emailAddress `json:"to"`
	Subject     string         `json:"subject"`
	TextContent string         `json:"textContent"`
}

type emailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// sendPayoutAlert emails the payout operations mailbox about a decided
// withdrawal so the external payout can be executed or the author informed.
func (n *Notifier) sendPayoutAlert(request *models.WithdrawalRequest) {
	if n.brevoAPIKey == "" || n.payoutAlertTo == "" {
		return
	}

	subject := fmt.Sprintf("Withdrawal #%d %s", request.ID, request.Status)
	text := fmt.Sprintf(
		"Withdrawal request #%d for author %s was %s.\n\nAmount: %d paise\nMethod: %s\nDecided at: %s\n",
		request.ID, request.AuthorID, request.Status, request.Amount,
		request.PaymentMethod, time.Now().Format(time.RFC3339))

	if err := n.sendEmail(n.payoutAlertTo, subject, text); err != nil {
		logging.Errorf("Payout alert email failed - request: %d, error: %v", request.ID, err)
		return
	}
	logging.Infof("Payout alert email sent - request: %d, status: %s", request.ID, request.Status)
}

// sendEmail sends a transactional email via the Brevo API.
func (n *Notifier) sendEmail(to, subject, text string) error {
	jsonData, err := json.Marshal(emailRequest{
		Sender: emailAddress{
			Name:  n.brevoFromName,
			Email: n.brevoFromEmail,
		},
		To:          []emailAddress{{Email: to}},
		Subject:     subject,
		TextContent: text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.brevo.com/v3/smtp/email", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", n.brevoAPIKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
	}

	return nil
}
