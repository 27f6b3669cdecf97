package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	purchasesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_purchases_recorded_total",
		Help: "Purchases recorded in the ledger",
	})

	purchasesRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_purchases_rejected_total",
		Help: "Purchase attempts rejected, labeled by reason",
	}, []string{"reason"})

	withdrawalDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_withdrawal_decisions_total",
		Help: "Withdrawal decisions applied, labeled by outcome",
	}, []string{"outcome"})
)
