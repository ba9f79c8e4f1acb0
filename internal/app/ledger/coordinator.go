package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rbxsim/rbxsim/internal/domain"
	"github.com/rbxsim/rbxsim/internal/infra/observability"
)

// ─── Reward Transaction Coordinator ─────────────────────────────────────────
// The single entry point tying a reward amount to a ledger mutation, a log
// entry, and a persistence request. Steps 1–3 (mutate, snapshot, append) run
// under the mutex and are atomic with respect to any other in-process caller;
// persistence is fire-and-forget and its failure never rolls them back — the
// in-memory state is the source of truth for the current session.

// Coordinator serializes all ledger and log mutations.
type Coordinator struct {
	mu     sync.Mutex
	ledger *Ledger
	log    *TransactionLog
	store  domain.StoragePort
	logger *zap.Logger

	// ManualCeiling is the maximum amount accepted for manual transactions.
	ManualCeiling int64

	wg sync.WaitGroup
}

// NewCoordinator wires the ledger, log, and storage port together.
func NewCoordinator(store domain.StoragePort, logger *zap.Logger, now func() time.Time, manualCeiling int64) *Coordinator {
	return &Coordinator{
		ledger:        NewLedger(now),
		log:           NewTransactionLog(now),
		store:         store,
		logger:        logger,
		ManualCeiling: manualCeiling,
	}
}

// GrantOutcome is the result of a successful reward grant.
type GrantOutcome struct {
	NewBalance domain.BalanceRecord    `json:"new_balance"`
	Entry      domain.TransactionEntry `json:"entry"`
}

// GrantReward applies a ledger credit, appends a credit entry snapshotting
// the resulting balance, and requests persistence of both records.
func (c *Coordinator) GrantReward(ctx context.Context, amount int64, source domain.RewardSource, description string) (GrantOutcome, error) {
	if amount <= 0 {
		return GrantOutcome{}, fmt.Errorf("grant %s: %w", source, domain.ErrNonPositiveAmount)
	}

	c.mu.Lock()
	rec := c.ledger.Credit(amount)
	entry := c.log.Append(domain.EntryCredit, amount, description, rec.Balance, source)
	coin, entries := c.snapshotLocked()
	c.mu.Unlock()

	observability.RewardsGranted.WithLabelValues(string(source)).Inc()
	observability.RewardAmount.WithLabelValues(string(source)).Add(float64(amount))

	c.persistAsync(ctx, coin, entries)
	return GrantOutcome{NewBalance: rec, Entry: entry}, nil
}

// ─── Manual Transactions ────────────────────────────────────────────────────

// ManualCredit validates and applies a user-entered credit. A failed
// validation is a value, not an error, and leaves the ledger untouched.
func (c *Coordinator) ManualCredit(ctx context.Context, amount int64, description string) (domain.ValidationResult, GrantOutcome) {
	if v := c.validateManualAmount(amount); !v.Valid {
		return v, GrantOutcome{}
	}

	c.mu.Lock()
	rec := c.ledger.Credit(amount)
	entry := c.log.Append(domain.EntryCredit, amount, description, rec.Balance, domain.SourceManual)
	coin, entries := c.snapshotLocked()
	c.mu.Unlock()

	c.persistAsync(ctx, coin, entries)
	return domain.OK(), GrantOutcome{NewBalance: rec, Entry: entry}
}

// ManualDebit validates and applies a user-entered debit. Debiting more than
// the current balance is a validation failure at this boundary, even though
// the ledger itself would clamp.
func (c *Coordinator) ManualDebit(ctx context.Context, amount int64, description string) (domain.ValidationResult, GrantOutcome) {
	if v := c.validateManualAmount(amount); !v.Valid {
		return v, GrantOutcome{}
	}

	c.mu.Lock()
	if amount > c.ledger.Record().Balance {
		c.mu.Unlock()
		observability.ValidationRejections.Inc()
		return domain.Invalid("amount exceeds current balance"), GrantOutcome{}
	}
	rec := c.ledger.Debit(amount)
	entry := c.log.Append(domain.EntryDebit, amount, description, rec.Balance, domain.SourceManual)
	coin, entries := c.snapshotLocked()
	c.mu.Unlock()

	c.persistAsync(ctx, coin, entries)
	return domain.OK(), GrantOutcome{NewBalance: rec, Entry: entry}
}

// Debit applies an unvalidated debit with the ledger's clamp-at-zero policy.
// Used by internal flows where a silent clamp is the documented behavior.
func (c *Coordinator) Debit(ctx context.Context, amount int64, description string) (GrantOutcome, error) {
	if amount <= 0 {
		return GrantOutcome{}, domain.ErrNonPositiveAmount
	}

	c.mu.Lock()
	rec := c.ledger.Debit(amount)
	entry := c.log.Append(domain.EntryDebit, amount, description, rec.Balance, domain.SourceManual)
	coin, entries := c.snapshotLocked()
	c.mu.Unlock()

	c.persistAsync(ctx, coin, entries)
	return GrantOutcome{NewBalance: rec, Entry: entry}, nil
}

func (c *Coordinator) validateManualAmount(amount int64) domain.ValidationResult {
	switch {
	case amount < 0:
		observability.ValidationRejections.Inc()
		return domain.Invalid("amount must not be negative")
	case amount == 0:
		observability.ValidationRejections.Inc()
		return domain.Invalid("amount must be greater than zero")
	case c.ManualCeiling > 0 && amount > c.ManualCeiling:
		observability.ValidationRejections.Inc()
		return domain.Invalid(fmt.Sprintf("amount exceeds the %d RBX ceiling", c.ManualCeiling))
	}
	return domain.OK()
}

// ─── Reads & Housekeeping ───────────────────────────────────────────────────

// Balance returns the current balance record.
func (c *Coordinator) Balance() domain.BalanceRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Record()
}

// Transactions returns up to limit newest-first entries (limit <= 0 = all).
func (c *Coordinator) Transactions(limit int) []domain.TransactionEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.Entries(limit)
}

// RemoveTransaction deletes one entry by id and persists the log.
func (c *Coordinator) RemoveTransaction(ctx context.Context, id string) bool {
	c.mu.Lock()
	ok := c.log.Remove(id)
	coin, entries := c.snapshotLocked()
	c.mu.Unlock()

	if ok {
		c.persistAsync(ctx, coin, entries)
	}
	return ok
}

// ResetDailyDelta snaps previousBalance to balance at the day boundary.
func (c *Coordinator) ResetDailyDelta(ctx context.Context) {
	c.mu.Lock()
	c.ledger.ResetDailyDelta()
	coin, entries := c.snapshotLocked()
	c.mu.Unlock()

	c.persistAsync(ctx, coin, entries)
}

// Reset zeroes the ledger and empties the log without persisting; callers
// re-initialize storage separately (clear-all removes the keys outright).
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ledger.Reset()
	c.log.Clear()
}

// ─── Persistence ────────────────────────────────────────────────────────────

// Restore loads the coin and transaction records from the storage port.
// Missing keys mean a cold first launch and yield defaults; corrupt blobs
// are logged and replaced with defaults.
func (c *Coordinator) Restore(ctx context.Context) error {
	coinRaw, err := c.store.Get(ctx, domain.KeyCoin)
	if err != nil {
		return fmt.Errorf("load coin record: %w", err)
	}
	if coinRaw != nil {
		var rec domain.BalanceRecord
		if err := json.Unmarshal(coinRaw, &rec); err != nil {
			c.logger.Warn("corrupt coin record, using defaults", zap.Error(err))
		} else {
			c.mu.Lock()
			c.ledger.Restore(rec)
			c.mu.Unlock()
		}
	}

	txRaw, err := c.store.Get(ctx, domain.KeyTransactions)
	if err != nil {
		return fmt.Errorf("load transaction record: %w", err)
	}
	if txRaw != nil {
		var entries []domain.TransactionEntry
		if err := json.Unmarshal(txRaw, &entries); err != nil {
			c.logger.Warn("corrupt transaction record, using defaults", zap.Error(err))
		} else {
			c.mu.Lock()
			c.log.Restore(entries)
			c.mu.Unlock()
		}
	}
	return nil
}

// Save persists both records synchronously. Used at shutdown.
func (c *Coordinator) Save(ctx context.Context) error {
	c.mu.Lock()
	coin, entries := c.snapshotLocked()
	c.mu.Unlock()
	return c.persist(ctx, coin, entries)
}

// Wait blocks until all in-flight persistence requests have finished.
func (c *Coordinator) Wait() { c.wg.Wait() }

// snapshotLocked copies the records for persistence. Caller holds mu.
func (c *Coordinator) snapshotLocked() (domain.BalanceRecord, []domain.TransactionEntry) {
	return c.ledger.Record(), c.log.Entries(0)
}

// persistAsync saves both records off the caller's critical path. The two
// key writes race at the storage layer; last successful write per key wins.
func (c *Coordinator) persistAsync(ctx context.Context, coin domain.BalanceRecord, entries []domain.TransactionEntry) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := c.persist(context.WithoutCancel(ctx), coin, entries); err != nil {
			c.logger.Warn("ledger persistence failed; in-memory state unaffected", zap.Error(err))
		}
	}()
}

func (c *Coordinator) persist(ctx context.Context, coin domain.BalanceRecord, entries []domain.TransactionEntry) error {
	coinRaw, err := json.Marshal(coin)
	if err != nil {
		return fmt.Errorf("encode coin record: %w", err)
	}
	txRaw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode transaction record: %w", err)
	}

	var firstErr error
	if err := c.store.Set(ctx, domain.KeyCoin, coinRaw); err != nil {
		observability.PersistenceFailures.WithLabelValues(domain.KeyCoin).Inc()
		firstErr = fmt.Errorf("save coin record: %w", err)
	}
	if err := c.store.Set(ctx, domain.KeyTransactions, txRaw); err != nil {
		observability.PersistenceFailures.WithLabelValues(domain.KeyTransactions).Inc()
		if firstErr == nil {
			firstErr = fmt.Errorf("save transaction record: %w", err)
		}
	}
	return firstErr
}
