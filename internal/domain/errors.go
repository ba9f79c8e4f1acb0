package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.
// Gate exhaustion and manual-amount validation are NOT errors; they are
// ConsumeResult / ValidationResult values resolved at the boundary.

var (
	// Ledger errors
	ErrNonPositiveAmount = errors.New("amount must be a positive integer")

	// Scratch card errors
	ErrNoScratchCard   = errors.New("no live scratch card")
	ErrAlreadyRevealed = errors.New("scratch card already revealed")

	// Quiz errors
	ErrNoQuizSession    = errors.New("no quiz session in progress")
	ErrQuizFinished     = errors.New("quiz session already finished")
	ErrAnswerOutOfRange = errors.New("answer index out of range")

	// Storage errors
	ErrStoreClosed = errors.New("storage port is closed")
)
