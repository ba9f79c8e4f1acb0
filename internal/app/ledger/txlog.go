package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/rbxsim/rbxsim/internal/domain"
)

// MaxEntries is the hard cap on the transaction log. Appending beyond the
// cap drops the oldest entries from the tail.
const MaxEntries = 100

// Default descriptions when the caller supplies none.
const (
	defaultCreditDescription = "RBX received"
	defaultDebitDescription  = "RBX spent"
)

// ─── Transaction Log ────────────────────────────────────────────────────────

// TransactionLog is the append-only, bounded, newest-first record of ledger
// mutations. Entries are immutable once written. Not safe for concurrent use
// on its own; the Coordinator serializes access.
type TransactionLog struct {
	entries []domain.TransactionEntry
	now     func() time.Time
	newID   func() string
}

// NewTransactionLog creates an empty log.
func NewTransactionLog(now func() time.Time) *TransactionLog {
	return &TransactionLog{
		now:   now,
		newID: uuid.NewString,
	}
}

// Append generates an id and timestamp, inserts the entry at index 0, and
// truncates to MaxEntries. The caller chooses kind consistently with the
// ledger operation actually performed — the log does not re-derive it.
func (tl *TransactionLog) Append(kind domain.EntryKind, amount int64, description string, balanceAfter int64, source domain.RewardSource) domain.TransactionEntry {
	if description == "" {
		if kind == domain.EntryDebit {
			description = defaultDebitDescription
		} else {
			description = defaultCreditDescription
		}
	}

	entry := domain.TransactionEntry{
		ID:           tl.newID(),
		Kind:         kind,
		Amount:       abs64(amount),
		Description:  description,
		Timestamp:    tl.now(),
		BalanceAfter: balanceAfter,
		Source:       source,
	}

	tl.entries = append([]domain.TransactionEntry{entry}, tl.entries...)
	if len(tl.entries) > MaxEntries {
		tl.entries = tl.entries[:MaxEntries]
	}
	return entry
}

// Remove filters out the entry with the given id.
// Returns false when no such entry exists.
func (tl *TransactionLog) Remove(id string) bool {
	for i, e := range tl.entries {
		if e.ID == id {
			tl.entries = append(tl.entries[:i], tl.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the log.
func (tl *TransactionLog) Clear() {
	tl.entries = nil
}

// Entries returns a copy of the newest-first entry list, capped at limit
// (limit <= 0 means all).
func (tl *TransactionLog) Entries(limit int) []domain.TransactionEntry {
	n := len(tl.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.TransactionEntry, n)
	copy(out, tl.entries[:n])
	return out
}

// Len returns the number of entries.
func (tl *TransactionLog) Len() int { return len(tl.entries) }

// Restore replaces the log with persisted entries, enforcing the cap.
func (tl *TransactionLog) Restore(entries []domain.TransactionEntry) {
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	tl.entries = make([]domain.TransactionEntry, len(entries))
	copy(tl.entries, entries)
}
