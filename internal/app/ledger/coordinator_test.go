package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/rbxsim/rbxsim/internal/domain"
)

// fakeStore is an in-memory StoragePort for coordinator tests.
type fakeStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	failOn map[string]bool
	sets   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte), failOn: make(map[string]bool)}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[key], nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[key] {
		return errors.New("disk full")
	}
	f.sets++
	f.data[key] = append([]byte(nil), value...)
	return nil
}

func (f *fakeStore) RemoveAll(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func newTestCoordinator(store domain.StoragePort) *Coordinator {
	return NewCoordinator(store, zap.NewNop(), fixedClock(), 100000)
}

// ─── Coordinator Tests ──────────────────────────────────────────────────────

func TestCoordinator_GrantReward(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(store)
	ctx := context.Background()

	// Spec scenario: balance=0 → grant 150 from spin.
	out, err := c.GrantReward(ctx, 150, domain.SourceSpin, "Spin Wheel: +150 RBX")
	if err != nil {
		t.Fatalf("GrantReward: %v", err)
	}
	if out.NewBalance.Balance != 150 {
		t.Errorf("Balance = %d, want 150", out.NewBalance.Balance)
	}
	if out.Entry.Amount != 150 || out.Entry.BalanceAfter != 150 {
		t.Errorf("entry = %+v, want amount=150 balanceAfter=150", out.Entry)
	}
	if out.Entry.Source != domain.SourceSpin {
		t.Errorf("Source = %q, want spin", out.Entry.Source)
	}
	if out.Entry.Kind != domain.EntryCredit {
		t.Errorf("Kind = %q, want credit", out.Entry.Kind)
	}
	if got := len(c.Transactions(0)); got != 1 {
		t.Errorf("log len = %d, want 1", got)
	}

	// Both records must reach the storage port.
	c.Wait()
	if store.data[domain.KeyCoin] == nil {
		t.Error("coin record not persisted")
	}
	if store.data[domain.KeyTransactions] == nil {
		t.Error("transaction record not persisted")
	}
}

func TestCoordinator_GrantReward_RejectsNonPositive(t *testing.T) {
	c := newTestCoordinator(newFakeStore())

	for _, amount := range []int64{0, -5} {
		if _, err := c.GrantReward(context.Background(), amount, domain.SourceSpin, ""); !errors.Is(err, domain.ErrNonPositiveAmount) {
			t.Errorf("GrantReward(%d) err = %v, want ErrNonPositiveAmount", amount, err)
		}
	}
	if got := c.Balance().Balance; got != 0 {
		t.Errorf("Balance = %d, want 0 after rejected grants", got)
	}
}

func TestCoordinator_PersistenceFailureDoesNotRollBack(t *testing.T) {
	store := newFakeStore()
	store.failOn[domain.KeyCoin] = true
	store.failOn[domain.KeyTransactions] = true
	c := newTestCoordinator(store)

	out, err := c.GrantReward(context.Background(), 100, domain.SourceShare, "")
	if err != nil {
		t.Fatalf("GrantReward: %v", err)
	}
	c.Wait()

	// The in-memory state is the source of truth for the current session.
	if out.NewBalance.Balance != 100 || c.Balance().Balance != 100 {
		t.Error("persistence failure must not roll back the in-memory mutation")
	}
	if got := len(c.Transactions(0)); got != 1 {
		t.Errorf("log len = %d, want 1", got)
	}
}

func TestCoordinator_ManualCredit_Validation(t *testing.T) {
	c := newTestCoordinator(newFakeStore())
	c.ManualCeiling = 1000
	ctx := context.Background()

	tests := []struct {
		name   string
		amount int64
		valid  bool
	}{
		{"negative", -10, false},
		{"zero", 0, false},
		{"above ceiling", 1001, false},
		{"at ceiling", 1000, true},
		{"normal", 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := c.ManualCredit(ctx, tt.amount, "manual")
			if v.Valid != tt.valid {
				t.Errorf("Valid = %v (%q), want %v", v.Valid, v.Reason, tt.valid)
			}
			if !tt.valid && v.Reason == "" {
				t.Error("invalid result must carry a reason")
			}
		})
	}
}

func TestCoordinator_ManualDebit_ExceedsBalance(t *testing.T) {
	c := newTestCoordinator(newFakeStore())
	ctx := context.Background()
	c.ManualCredit(ctx, 50, "seed")

	v, _ := c.ManualDebit(ctx, 100, "too much")
	if v.Valid {
		t.Fatal("debit above balance must fail validation at the boundary")
	}
	if got := c.Balance().Balance; got != 50 {
		t.Errorf("Balance = %d, want untouched 50", got)
	}
	if got := len(c.Transactions(0)); got != 1 {
		t.Errorf("log len = %d, want 1 (no debit entry)", got)
	}
}

func TestCoordinator_Debit_Clamps(t *testing.T) {
	c := newTestCoordinator(newFakeStore())
	ctx := context.Background()
	c.ManualCredit(ctx, 50, "seed")

	// The unvalidated internal debit keeps the ledger's clamp policy.
	out, err := c.Debit(ctx, 100, "clamped spend")
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if out.NewBalance.Balance != 0 {
		t.Errorf("Balance = %d, want 0 (clamped)", out.NewBalance.Balance)
	}
	if out.NewBalance.DailyChange != -50 {
		t.Errorf("DailyChange = %d, want -50", out.NewBalance.DailyChange)
	}
}

func TestCoordinator_RestoreRoundTrip(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()

	first := newTestCoordinator(store)
	first.GrantReward(ctx, 300, domain.SourceScratch, "Scratch Card: +300 RBX")
	first.ManualDebit(ctx, 120, "bought a hat")
	first.Wait()

	// Cold start: a fresh coordinator restores the persisted state.
	second := newTestCoordinator(store)
	if err := second.Restore(ctx); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := second.Balance().Balance; got != 180 {
		t.Errorf("Balance = %d, want 180", got)
	}
	entries := second.Transactions(0)
	if len(entries) != 2 {
		t.Fatalf("log len = %d, want 2", len(entries))
	}
	if entries[0].Kind != domain.EntryDebit || entries[1].Kind != domain.EntryCredit {
		t.Errorf("restored order wrong: %q then %q", entries[0].Kind, entries[1].Kind)
	}
}

func TestCoordinator_Restore_CorruptBlobFallsBackToDefaults(t *testing.T) {
	store := newFakeStore()
	store.data[domain.KeyCoin] = []byte("{not json")
	store.data[domain.KeyTransactions] = []byte("][")

	c := newTestCoordinator(store)
	if err := c.Restore(context.Background()); err != nil {
		t.Fatalf("Restore should tolerate corrupt blobs, got %v", err)
	}
	if got := c.Balance().Balance; got != 0 {
		t.Errorf("Balance = %d, want default 0", got)
	}
}

func TestCoordinator_RemoveTransaction(t *testing.T) {
	c := newTestCoordinator(newFakeStore())
	ctx := context.Background()

	_, out := c.ManualCredit(ctx, 10, "keep")
	_, gone := c.ManualCredit(ctx, 20, "remove")

	if !c.RemoveTransaction(ctx, gone.Entry.ID) {
		t.Fatal("RemoveTransaction(existing) should return true")
	}
	if c.RemoveTransaction(ctx, "missing") {
		t.Error("RemoveTransaction(missing) should return false")
	}
	entries := c.Transactions(0)
	if len(entries) != 1 || entries[0].ID != out.Entry.ID {
		t.Errorf("expected only the kept entry, got %+v", entries)
	}
}

func TestCoordinator_ResetDailyDelta(t *testing.T) {
	c := newTestCoordinator(newFakeStore())
	ctx := context.Background()
	c.ManualCredit(ctx, 75, "seed")

	c.ResetDailyDelta(ctx)
	rec := c.Balance()
	if rec.DailyChange != 0 || rec.PreviousBalance != 75 || rec.Balance != 75 {
		t.Errorf("after reset: %+v", rec)
	}
}
