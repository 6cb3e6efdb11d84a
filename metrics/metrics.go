// Package metrics provides Prometheus metrics for phrasevault.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UnlockAttemptsTotal counts unlock attempts by outcome.
	UnlockAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phrasevault",
			Name:      "unlock_attempts_total",
			Help:      "Total number of unlock attempts",
		},
		[]string{"result"}, // "success", "invalid_pin", "locked_out", "storage_error"
	)

	// LockoutsTotal counts how many times the failed-attempt threshold armed
	// a lockout window.
	LockoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "phrasevault",
			Name:      "lockouts_total",
			Help:      "Total number of lockout windows armed",
		},
	)

	// WalletsCreatedTotal counts wallets added to the vault by origin.
	WalletsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phrasevault",
			Name:      "wallets_created_total",
			Help:      "Total number of wallets created",
		},
		[]string{"source"}, // "generated" or "imported"
	)

	// WalletsDeletedTotal counts wallets removed from the vault.
	WalletsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "phrasevault",
			Name:      "wallets_deleted_total",
			Help:      "Total number of wallets deleted",
		},
	)

	// PinChangesTotal counts successful PIN rotations.
	PinChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "phrasevault",
			Name:      "pin_changes_total",
			Help:      "Total number of successful PIN changes",
		},
	)

	// WalletsTotal tracks the number of registered wallets.
	WalletsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "phrasevault",
			Name:      "wallets_total",
			Help:      "Total number of registered wallets",
		},
	)

	// CryptoOperationsTotal counts mnemonic encryption operations.
	CryptoOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phrasevault",
			Name:      "crypto_operations_total",
			Help:      "Total number of encryption/decryption operations",
		},
		[]string{"operation"}, // "encrypt" or "decrypt"
	)
)
