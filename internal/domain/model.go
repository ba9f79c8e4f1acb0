// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the application — it depends on nothing.
package domain

import "time"

// ─── Ledger Types ───────────────────────────────────────────────────────────

// EntryKind represents the direction of a ledger mutation.
type EntryKind string

const (
	EntryCredit EntryKind = "credit"
	EntryDebit  EntryKind = "debit"
)

// RewardSource identifies which activity produced a transaction entry.
type RewardSource string

const (
	SourceSpin       RewardSource = "spin"
	SourceScratch    RewardSource = "scratch"
	SourceDailyLogin RewardSource = "daily_login"
	SourceWatchVideo RewardSource = "watch_video"
	SourceShare      RewardSource = "share"
	SourceManual     RewardSource = "manual"
)

// BalanceRecord is the persisted coin state. Balance never goes negative;
// mutations that would drive it below zero clamp to zero instead.
type BalanceRecord struct {
	Balance         int64     `json:"balance"`
	PreviousBalance int64     `json:"previous_balance"`
	DailyChange     int64     `json:"daily_change"`
	LastUpdated     time.Time `json:"last_updated,omitempty"`
}

// TransactionEntry is one immutable ledger-mutation record.
// Entries are stored newest-first and are never modified after creation.
type TransactionEntry struct {
	ID           string       `json:"id"`
	Kind         EntryKind    `json:"kind"`
	Amount       int64        `json:"amount"`
	Description  string       `json:"description"`
	Timestamp    time.Time    `json:"timestamp"`
	BalanceAfter int64        `json:"balance_after"`
	Source       RewardSource `json:"source,omitempty"`
}

// ─── Fun-Zone Types ─────────────────────────────────────────────────────────

// ActivityKind identifies a daily-limited activity.
type ActivityKind string

const (
	ActivitySpin    ActivityKind = "spin"
	ActivityScratch ActivityKind = "scratch"
	ActivityVideo   ActivityKind = "video"
	ActivityLogin   ActivityKind = "login"
	ActivityShare   ActivityKind = "share"
)

// GateRecord is the persisted state of one daily activity gate.
type GateRecord struct {
	Remaining int       `json:"remaining"`
	LastDate  time.Time `json:"last_date,omitempty"`
}

// ScratchCard is the transient card state — at most one live instance.
// It is created unrevealed, flips to revealed exactly once, and is
// discarded on the next daily reset.
type ScratchCard struct {
	Value     int64     `json:"value"`
	Revealed  bool      `json:"revealed"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizStats tracks quiz performance. HighScore is monotonically
// non-decreasing; only a completed game can raise it.
type QuizStats struct {
	HighScore      int       `json:"high_score"`
	GamesPlayed    int       `json:"games_played"`
	LastPlayedDate time.Time `json:"last_played_date,omitempty"`
}

// SpinRecord is one historical wheel result.
type SpinRecord struct {
	Value     int64     `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// FunZoneRecord is the persisted fun-zone state, one opaque blob.
type FunZoneRecord struct {
	SpinHistory             []SpinRecord `json:"spin_history"`
	LastSpinDate            time.Time    `json:"last_spin_date,omitempty"`
	DailySpinsRemaining     int          `json:"daily_spins_remaining"`
	ScratchCard             *ScratchCard `json:"scratch_card,omitempty"`
	LastScratchDate         time.Time    `json:"last_scratch_date,omitempty"`
	DailyScratchesRemaining int          `json:"daily_scratches_remaining"`
	Quiz                    QuizStats    `json:"quiz"`
	DailyLoginRemaining     int          `json:"daily_login_remaining"`
	LastLoginDate           time.Time    `json:"last_login_date,omitempty"`
	DailyVideosRemaining    int          `json:"daily_videos_remaining"`
	LastVideoDate           time.Time    `json:"last_video_date,omitempty"`
	DailyShareRemaining     int          `json:"daily_share_remaining"`
	LastShareDate           time.Time    `json:"last_share_date,omitempty"`
}

// ─── Settings & User Types ──────────────────────────────────────────────────

// SettingsRecord holds presentation preferences and conversion rates.
// Not part of the hard core; persisted for completeness of the state surface.
type SettingsRecord struct {
	Theme              string             `json:"theme"`
	SoundEnabled       bool               `json:"sound_enabled"`
	HapticsEnabled     bool               `json:"haptics_enabled"`
	DisclaimerAccepted bool               `json:"disclaimer_accepted"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
}

// DefaultSettings returns the out-of-box settings record.
func DefaultSettings() SettingsRecord {
	return SettingsRecord{
		Theme:          "system",
		SoundEnabled:   true,
		HapticsEnabled: true,
		ConversionRates: map[string]float64{
			"usd": 0.0035,
		},
	}
}

// UserRecord is the local profile.
type UserRecord struct {
	Username    string    `json:"username"`
	AvatarIndex int       `json:"avatar_index"`
	CreatedAt   time.Time `json:"created_at"`
}

// ─── Export Types ───────────────────────────────────────────────────────────

// ExportBundle is the read-only aggregation of all persisted records,
// returned for user-initiated data portability. No write side effects.
type ExportBundle struct {
	Coin         BalanceRecord      `json:"coin"`
	Transactions []TransactionEntry `json:"transactions"`
	FunZone      FunZoneRecord      `json:"fun_zone"`
	Settings     SettingsRecord     `json:"settings"`
	User         UserRecord         `json:"user"`
	ExportedAt   time.Time          `json:"exported_at"`
	AppVersion   string             `json:"app_version"`
}

// ─── Result Types ───────────────────────────────────────────────────────────

// ValidationResult is the caller-facing outcome of manual-amount checks.
// Validation failures are values, never errors.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// OK returns a passing validation result.
func OK() ValidationResult { return ValidationResult{Valid: true} }

// Invalid returns a failing validation result with a reason.
func Invalid(reason string) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason}
}

// ConsumeResult is the outcome of consuming one gate allowance slot.
// An exhausted gate is a normal outcome, not an error.
type ConsumeResult struct {
	OK        bool `json:"ok"`
	Remaining int  `json:"remaining"`
}

// ─── Storage Keys ───────────────────────────────────────────────────────────

// Persisted record keys. The storage port never interprets record contents,
// only moves opaque blobs keyed by domain name.
const (
	KeyCoin         = "coin"
	KeyTransactions = "transactions"
	KeyFunZone      = "funzone"
	KeySettings     = "settings"
	KeyUser         = "user"
)

// AllKeys returns every persisted record key, for clear-all and export.
func AllKeys() []string {
	return []string{KeyCoin, KeyTransactions, KeyFunZone, KeySettings, KeyUser}
}
