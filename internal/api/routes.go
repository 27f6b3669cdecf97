package api

import (
	"time"

	"marketplace-ledger/internal/config"
	"marketplace-ledger/internal/middleware"
	"marketplace-ledger/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shared collaborators. The gateway is an interface so tests can swap in a
// fake; everything else is built once from config.
var (
	gateway    services.PaymentGateway
	orderCache *services.PaymentOrderCache
	notifier   *services.Notifier
)

// InitServices builds the handler collaborators from the loaded config.
func InitServices() {
	cfg := config.AppConfig

	gateway = services.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	orderCache = services.NewPaymentOrderCache(time.Duration(cfg.OrderExpireMinutes) * time.Minute)
	notifier = services.NewNotifier(services.NotifierConfig{
		WebhookURL:     cfg.WebhookCallbackURL,
		WebhookSecret:  cfg.WebhookSecret,
		BrevoAPIKey:    cfg.BrevoAPIKey,
		BrevoFromEmail: cfg.BrevoFromEmail,
		BrevoFromName:  cfg.BrevoFromName,
		PayoutAlertTo:  cfg.PayoutAlertEmail,
	})
}

// SetGateway replaces the payment gateway, for tests.
func SetGateway(g services.PaymentGateway) {
	gateway = g
}

func newPurchaseLedger() *services.PurchaseLedger {
	cfg := config.AppConfig
	policy := services.NewCommissionPolicy(cfg.CommissionRate, cfg.TaxRate)
	return services.NewPurchaseLedger(policy, services.NewWalletService(), notifier, cfg.RazorpayKeySecret)
}

func newWithdrawalService() *services.WithdrawalService {
	return services.NewWithdrawalService(services.NewWalletService(), notifier)
}

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// Payment gateway flow: create an order, then verify the charge
		// and record the purchase.
		payments := api.Group("/payments")
		{
			payments.POST("/orders", CreatePaymentOrder)
			payments.POST("/verify", VerifyAndRecordPurchase)
		}

		// Direct purchase recording, for charges the gateway already
		// confirmed out-of-band.
		api.POST("/purchases", RecordDirectPurchase)
		api.GET("/purchases/buyer/:buyer_id", ListBuyerPurchases)

		// Author wallet reads.
		wallet := api.Group("/wallet")
		{
			wallet.GET("/:author_id", GetWallet)
			wallet.GET("/:author_id/history", GetPaymentHistory)
		}

		// Withdrawal requests.
		api.POST("/withdrawals", RequestWithdrawal)
		api.GET("/withdrawals/:author_id", ListWithdrawals)

		// Admin decisions (requires the admin API key).
		admin := api.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			admin.GET("/withdrawals/:id", GetWithdrawal)
			admin.POST("/withdrawals/:id/decide", DecideWithdrawal)
			admin.POST("/withdrawals/:id/paid", MarkWithdrawalPaid)
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "marketplace-ledger",
		})
	})
}
