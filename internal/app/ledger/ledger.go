// Package ledger implements the RBX balance bookkeeping: the ledger itself,
// the bounded transaction log, and the coordinator that ties a reward event
// to a balance mutation, a log entry, and a persistence request.
package ledger

import (
	"time"

	"github.com/rbxsim/rbxsim/internal/domain"
	"github.com/rbxsim/rbxsim/internal/infra/observability"
)

// ─── Ledger ─────────────────────────────────────────────────────────────────

// Ledger owns the balance record. It is not safe for concurrent use on its
// own; the Coordinator serializes access.
type Ledger struct {
	rec domain.BalanceRecord
	now func() time.Time
}

// NewLedger creates an empty ledger. now is the clock used to stamp
// mutations; pass time.Now in production.
func NewLedger(now func() time.Time) *Ledger {
	return &Ledger{now: now}
}

// Record returns a copy of the current balance record.
func (l *Ledger) Record() domain.BalanceRecord { return l.rec }

// Restore replaces the ledger state with a persisted record, clamping a
// corrupt negative balance back to zero.
func (l *Ledger) Restore(rec domain.BalanceRecord) {
	if rec.Balance < 0 {
		rec.Balance = 0
	}
	if rec.PreviousBalance < 0 {
		rec.PreviousBalance = 0
	}
	l.rec = rec
	observability.BalanceGauge.Set(float64(rec.Balance))
}

// Credit adds amount to the balance. The sign is normalized (absolute value
// taken) so a caller cannot accidentally debit via credit. Never fails.
func (l *Ledger) Credit(amount int64) domain.BalanceRecord {
	a := abs64(amount)
	l.rec.PreviousBalance = l.rec.Balance
	l.rec.Balance += a
	l.finishMutation(domain.EntryCredit)
	return l.rec
}

// Debit subtracts amount from the balance, clamping at zero. A debit that
// would go negative silently clamps rather than erroring — documented
// edge-case policy, not a caller-visible failure.
func (l *Ledger) Debit(amount int64) domain.BalanceRecord {
	a := abs64(amount)
	l.rec.PreviousBalance = l.rec.Balance
	next := l.rec.Balance - a
	if next < 0 {
		next = 0
		observability.DebitClamps.Inc()
	}
	l.rec.Balance = next
	l.finishMutation(domain.EntryDebit)
	return l.rec
}

// SetBalance overwrites the balance directly, clamped to >= 0, still
// recomputing previousBalance and dailyChange.
func (l *Ledger) SetBalance(amount int64) domain.BalanceRecord {
	if amount < 0 {
		amount = 0
	}
	l.rec.PreviousBalance = l.rec.Balance
	l.rec.Balance = amount
	kind := domain.EntryCredit
	if amount < l.rec.PreviousBalance {
		kind = domain.EntryDebit
	}
	l.finishMutation(kind)
	return l.rec
}

// ResetDailyDelta performs day-boundary housekeeping: previousBalance is
// snapped to the current balance and dailyChange zeroed. Independent of the
// activity gates' own day-boundary logic.
func (l *Ledger) ResetDailyDelta() {
	l.rec.PreviousBalance = l.rec.Balance
	l.rec.DailyChange = 0
}

// Reset zeroes the whole record.
func (l *Ledger) Reset() {
	l.rec = domain.BalanceRecord{}
	observability.BalanceGauge.Set(0)
}

// finishMutation recomputes the daily change and stamps the mutation.
// dailyChange is last-mutation-relative, not session-cumulative.
func (l *Ledger) finishMutation(kind domain.EntryKind) {
	l.rec.DailyChange = l.rec.Balance - l.rec.PreviousBalance
	l.rec.LastUpdated = l.now()
	observability.BalanceGauge.Set(float64(l.rec.Balance))
	observability.LedgerMutations.WithLabelValues(string(kind)).Inc()
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
