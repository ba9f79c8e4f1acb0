package domain

import "time"

// ─── Day Boundary ───────────────────────────────────────────────────────────
// Every daily gate and the ledger's daily-delta housekeeping share this one
// definition of "same calendar day" so reset timing cannot drift between
// activities. Day boundary is local midnight.

// SameDay reports whether a and b fall on the same local calendar day.
// A zero time is never the same day as a non-zero time.
func SameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
