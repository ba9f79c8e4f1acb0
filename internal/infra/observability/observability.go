// Package observability exposes the daemon's Prometheus metrics.
// Collectors are package-level promauto vars, registered once at init
// and served by the API's /metrics route.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// BalanceGauge tracks the current RBX balance.
var BalanceGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "rbxsim",
	Subsystem: "ledger",
	Name:      "balance",
	Help:      "Current RBX balance.",
})

// LedgerMutations counts ledger mutations by kind.
var LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rbxsim",
	Subsystem: "ledger",
	Name:      "mutations_total",
	Help:      "Total ledger mutations by entry kind.",
}, []string{"kind"})

// DebitClamps counts debits that clamped the balance at zero.
var DebitClamps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "rbxsim",
	Subsystem: "ledger",
	Name:      "debit_clamps_total",
	Help:      "Total debits clamped at zero instead of going negative.",
})

// ─── Reward Metrics ─────────────────────────────────────────────────────────

// RewardsGranted counts granted rewards by source.
var RewardsGranted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rbxsim",
	Subsystem: "rewards",
	Name:      "granted_total",
	Help:      "Total rewards granted by source.",
}, []string{"source"})

// RewardAmount accumulates granted RBX by source.
var RewardAmount = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rbxsim",
	Subsystem: "rewards",
	Name:      "amount_total",
	Help:      "Total RBX granted by source.",
}, []string{"source"})

// ─── Gate Metrics ───────────────────────────────────────────────────────────

// GateConsumptions counts successful allowance consumptions by activity.
var GateConsumptions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rbxsim",
	Subsystem: "gate",
	Name:      "consumptions_total",
	Help:      "Total daily-gate slots consumed by activity.",
}, []string{"activity"})

// GateDenials counts consumptions refused on an exhausted gate.
var GateDenials = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rbxsim",
	Subsystem: "gate",
	Name:      "denials_total",
	Help:      "Total consumptions refused because the daily gate was exhausted.",
}, []string{"activity"})

// GateResets counts day-boundary resets by activity.
var GateResets = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rbxsim",
	Subsystem: "gate",
	Name:      "resets_total",
	Help:      "Total day-boundary gate resets by activity.",
}, []string{"activity"})

// ─── Persistence Metrics ────────────────────────────────────────────────────

// PersistenceFailures counts failed record saves by key.
// A failure never rolls back the in-memory mutation; it only risks losing
// the mutation on the next cold start.
var PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rbxsim",
	Subsystem: "storage",
	Name:      "persistence_failures_total",
	Help:      "Total failed record persistence attempts by record key.",
}, []string{"key"})

// ─── Validation Metrics ─────────────────────────────────────────────────────

// ValidationRejections counts manual-transaction validation failures.
var ValidationRejections = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "rbxsim",
	Subsystem: "wallet",
	Name:      "validation_rejections_total",
	Help:      "Total manual transactions rejected by boundary validation.",
})
