package domain

import (
	"math/rand"
	"time"
)

// ─── Randomness Source ──────────────────────────────────────────────────────

// mathRand adapts math/rand to the Rand interface.
type mathRand struct {
	r *rand.Rand
}

func (m mathRand) Float64() float64 { return m.r.Float64() }
func (m mathRand) IntN(n int) int   { return m.r.Intn(n) }

// NewRand returns a Rand seeded with the given value.
// Identical seeds yield identical draw sequences.
func NewRand(seed int64) Rand {
	return mathRand{r: rand.New(rand.NewSource(seed))}
}

// NewSystemRand returns a Rand seeded from the wall clock.
func NewSystemRand() Rand {
	return NewRand(time.Now().UnixNano())
}
