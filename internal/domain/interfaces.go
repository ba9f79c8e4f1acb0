package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// StoragePort abstracts the key/value persistence capability.
// One logical record per domain key; contents are opaque to the port.
// No transactions and no atomic multi-key writes are assumed — the only
// ordering guarantee is "last successful write for a given key wins".
type StoragePort interface {
	// Get returns the stored blob, or nil with no error when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the blob stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// RemoveAll deletes every given key. Missing keys are not an error.
	RemoveAll(ctx context.Context, keys []string) error
}

// Rand is the uniform randomness source consumed by all reward generators.
// Substitutable so identical sequences are reproducible in tests.
type Rand interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64

	// IntN returns a uniform integer in [0, n). Panics if n <= 0.
	IntN(n int) int
}
