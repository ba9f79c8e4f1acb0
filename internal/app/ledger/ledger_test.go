package ledger

import (
	"testing"
	"time"

	"github.com/rbxsim/rbxsim/internal/domain"
)

func fixedClock() func() time.Time {
	t := time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local)
	return func() time.Time { return t }
}

// ─── Ledger Tests ───────────────────────────────────────────────────────────

func TestLedger_Credit(t *testing.T) {
	l := NewLedger(fixedClock())

	rec := l.Credit(150)
	if rec.Balance != 150 {
		t.Errorf("Balance = %d, want 150", rec.Balance)
	}
	if rec.PreviousBalance != 0 {
		t.Errorf("PreviousBalance = %d, want 0", rec.PreviousBalance)
	}
	if rec.DailyChange != 150 {
		t.Errorf("DailyChange = %d, want 150", rec.DailyChange)
	}
	if rec.LastUpdated.IsZero() {
		t.Error("LastUpdated should be stamped")
	}
}

func TestLedger_Credit_NormalizesSign(t *testing.T) {
	l := NewLedger(fixedClock())

	// A negative amount must not turn a credit into a debit.
	rec := l.Credit(-75)
	if rec.Balance != 75 {
		t.Errorf("Balance = %d, want 75", rec.Balance)
	}
}

func TestLedger_Debit_ClampsAtZero(t *testing.T) {
	l := NewLedger(fixedClock())
	l.Credit(50)

	// Spec scenario: balance=50, debit 100 → clamps to 0, dailyChange=-50.
	rec := l.Debit(100)
	if rec.Balance != 0 {
		t.Errorf("Balance = %d, want 0 (clamped, not negative)", rec.Balance)
	}
	if rec.DailyChange != -50 {
		t.Errorf("DailyChange = %d, want -50", rec.DailyChange)
	}
	if rec.PreviousBalance != 50 {
		t.Errorf("PreviousBalance = %d, want 50", rec.PreviousBalance)
	}
}

func TestLedger_NeverNegative(t *testing.T) {
	l := NewLedger(fixedClock())

	// Arbitrary credit/debit sequence; balance must never go negative.
	ops := []struct {
		credit bool
		amount int64
	}{
		{false, 10}, {true, 5}, {false, 100}, {true, 30},
		{false, 30}, {false, 1}, {true, 2}, {false, 99},
	}
	for _, op := range ops {
		var rec = l.Record()
		if op.credit {
			rec = l.Credit(op.amount)
		} else {
			rec = l.Debit(op.amount)
		}
		if rec.Balance < 0 {
			t.Fatalf("balance went negative: %d", rec.Balance)
		}
	}
}

func TestLedger_CreditDebitRoundTrip(t *testing.T) {
	l := NewLedger(fixedClock())
	l.Credit(200)

	before := l.Record().Balance
	l.Credit(40)
	rec := l.Debit(40)

	if rec.Balance != before {
		t.Errorf("Balance = %d, want round-trip back to %d", rec.Balance, before)
	}
	// dailyChange reflects only the last mutation, not a net-zero cumulative.
	if rec.DailyChange != -40 {
		t.Errorf("DailyChange = %d, want -40 (last-mutation-relative)", rec.DailyChange)
	}
}

func TestLedger_SetBalance(t *testing.T) {
	l := NewLedger(fixedClock())
	l.Credit(100)

	rec := l.SetBalance(250)
	if rec.Balance != 250 {
		t.Errorf("Balance = %d, want 250", rec.Balance)
	}
	if rec.PreviousBalance != 100 {
		t.Errorf("PreviousBalance = %d, want 100", rec.PreviousBalance)
	}
	if rec.DailyChange != 150 {
		t.Errorf("DailyChange = %d, want 150", rec.DailyChange)
	}

	rec = l.SetBalance(-10)
	if rec.Balance != 0 {
		t.Errorf("Balance = %d, want 0 (clamped)", rec.Balance)
	}
}

func TestLedger_ResetDailyDelta(t *testing.T) {
	l := NewLedger(fixedClock())
	l.Credit(300)
	l.Debit(100)

	l.ResetDailyDelta()
	rec := l.Record()
	if rec.DailyChange != 0 {
		t.Errorf("DailyChange = %d, want 0", rec.DailyChange)
	}
	if rec.PreviousBalance != rec.Balance {
		t.Errorf("PreviousBalance = %d, want %d", rec.PreviousBalance, rec.Balance)
	}
	if rec.Balance != 200 {
		t.Errorf("Balance = %d, want 200 (reset must not touch balance)", rec.Balance)
	}
}

func TestLedger_Reset(t *testing.T) {
	l := NewLedger(fixedClock())
	l.Credit(500)

	l.Reset()
	rec := l.Record()
	if rec.Balance != 0 || rec.PreviousBalance != 0 || rec.DailyChange != 0 {
		t.Errorf("Reset left state behind: %+v", rec)
	}
}

func TestLedger_Restore_ClampsCorruptNegatives(t *testing.T) {
	l := NewLedger(fixedClock())
	l.Restore(domain.BalanceRecord{Balance: -42, PreviousBalance: -7})

	rec := l.Record()
	if rec.Balance != 0 || rec.PreviousBalance != 0 {
		t.Errorf("Restore should clamp negatives, got %+v", rec)
	}
}
