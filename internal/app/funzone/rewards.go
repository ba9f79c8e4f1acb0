package funzone

import "github.com/rbxsim/rbxsim/internal/domain"

// ─── Reward Generators ──────────────────────────────────────────────────────
// Pure functions: configuration + randomness in, reward amount out.
// No generator touches the ledger or the gates.

// WheelSegment is one slice of the spin wheel.
type WheelSegment struct {
	Value  int64   `toml:"value" json:"value"`
	Weight float64 `toml:"weight" json:"weight"`
}

// WheelPick draws a segment value proportionally to segment weight.
// If floating-point drift leaves the walk without a hit, the last segment's
// value is the defined fallback, not an error.
func WheelPick(segments []WheelSegment, rng domain.Rand) int64 {
	if len(segments) == 0 {
		return 0
	}

	var total float64
	for _, s := range segments {
		total += s.Weight
	}

	r := rng.Float64() * total
	for _, s := range segments {
		r -= s.Weight
		if r <= 0 {
			return s.Value
		}
	}
	return segments[len(segments)-1].Value
}

// ScratchTiers configures the scratch-card value distribution.
// All bounds are inclusive.
type ScratchTiers struct {
	Min       int64   `toml:"min" json:"min"`
	CommonMax int64   `toml:"common_max" json:"common_max"`
	Max       int64   `toml:"max" json:"max"`
	RareProb  float64 `toml:"rare_prob" json:"rare_prob"`
}

// ScratchValue draws a scratch-card value: with probability RareProb a
// uniform integer in [CommonMax, Max], otherwise in [Min, CommonMax].
func ScratchValue(tiers ScratchTiers, rng domain.Rand) int64 {
	if rng.Float64() < tiers.RareProb {
		return RangeReward(tiers.CommonMax, tiers.Max, rng)
	}
	return RangeReward(tiers.Min, tiers.CommonMax, rng)
}

// RangeReward draws a uniform integer in [min, max] inclusive.
// Used directly for the fixed-range rewards (watch-video, share).
func RangeReward(min, max int64, rng domain.Rand) int64 {
	if max <= min {
		return min
	}
	return min + int64(rng.IntN(int(max-min+1)))
}

// ShuffleQuestions returns a Fisher–Yates shuffled copy of the pool.
// The input slice is never mutated.
func ShuffleQuestions(pool []Question, rng domain.Rand) []Question {
	out := make([]Question, len(pool))
	copy(out, pool)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
