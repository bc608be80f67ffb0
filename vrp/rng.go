package vrp

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey uniquely identifies a reproducible run: two runs with the
// same SimulationKey, the same Problem, and single-threaded execution must
// produce bit-identical sequences of best fitnesses.
type SimulationKey int64

// PartitionedRNG derives one *rand.Rand per worker index from a single
// master seed, so parallel workers never contend on or interleave a shared
// source. Each InsertionContext carries its own worker-indexed RNG.
type PartitionedRNG struct {
	key     SimulationKey
	workers map[int]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a master seed.
func NewPartitionedRNG(seed int64) *PartitionedRNG {
	return &PartitionedRNG{key: SimulationKey(seed), workers: make(map[int]*rand.Rand)}
}

// ForWorker returns a deterministically-seeded RNG for the given worker
// index, caching it so repeated calls for the same index return the same
// instance. Derivation: masterSeed XOR fnv1a64("worker-<n>"), except worker
// 0 which uses the master seed directly (so a single-worker run is
// reproducible from --seed alone without knowing the derivation scheme).
func (p *PartitionedRNG) ForWorker(index int) *rand.Rand {
	if rng, ok := p.workers[index]; ok {
		return rng
	}
	seed := int64(p.key)
	if index != 0 {
		seed ^= fnv1a64(fmt.Sprintf("worker-%d", index))
	}
	rng := rand.New(rand.NewSource(seed))
	p.workers[index] = rng
	return rng
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64())
}
