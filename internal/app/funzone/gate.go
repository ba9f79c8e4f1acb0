// Package funzone implements the daily-limited mini-activities: the activity
// gates with lazy day-boundary resets, the randomized reward generators, the
// scratch-card lifecycle, and quiz sessions.
package funzone

import (
	"time"

	"github.com/rbxsim/rbxsim/internal/domain"
	"github.com/rbxsim/rbxsim/internal/infra/observability"
)

// ─── Daily Activity Gate ────────────────────────────────────────────────────
// Two states per activity: available (remaining > 0) and exhausted
// (remaining == 0), with a silent day-boundary transition back to the
// configured maximum. The gate never runs on a timer — it recomputes lazily,
// so CheckAndResetIfNewDay must run before any read of Remaining.

// Gate is the allowance counter for one activity kind.
type Gate struct {
	activity  domain.ActivityKind
	max       int
	remaining int
	lastDate  time.Time
}

// NewGate creates a gate with a full allowance and no recorded activity.
func NewGate(activity domain.ActivityKind, max int) *Gate {
	return &Gate{activity: activity, max: max, remaining: max}
}

// CheckAndResetIfNewDay restores remaining = max when the stored activity
// date is not the same local calendar day as now. Idempotent: calling it
// twice on the same day is a no-op the second time.
func (g *Gate) CheckAndResetIfNewDay(now time.Time) bool {
	if g.lastDate.IsZero() || domain.SameDay(g.lastDate, now) {
		return false
	}
	g.remaining = g.max
	g.lastDate = time.Time{}
	observability.GateResets.WithLabelValues(string(g.activity)).Inc()
	return true
}

// Consume takes one allowance slot, stamping the activity date. An exhausted
// gate refuses with ok=false; remaining never goes below zero.
func (g *Gate) Consume(now time.Time) domain.ConsumeResult {
	g.CheckAndResetIfNewDay(now)
	if g.remaining <= 0 {
		observability.GateDenials.WithLabelValues(string(g.activity)).Inc()
		return domain.ConsumeResult{OK: false, Remaining: 0}
	}
	g.remaining--
	g.lastDate = now
	observability.GateConsumptions.WithLabelValues(string(g.activity)).Inc()
	return domain.ConsumeResult{OK: true, Remaining: g.remaining}
}

// Remaining returns the allowance left after a lazy day-boundary check.
func (g *Gate) Remaining(now time.Time) int {
	g.CheckAndResetIfNewDay(now)
	return g.remaining
}

// Record returns the persistable gate state.
func (g *Gate) Record() domain.GateRecord {
	return domain.GateRecord{Remaining: g.remaining, LastDate: g.lastDate}
}

// Restore replaces the gate state with a persisted record, clamping
// remaining into [0, max].
func (g *Gate) Restore(rec domain.GateRecord) {
	r := rec.Remaining
	if r < 0 {
		r = 0
	}
	if r > g.max {
		r = g.max
	}
	g.remaining = r
	g.lastDate = rec.LastDate
}
