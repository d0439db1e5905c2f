// Package sampling provides bounded uniform sampling over unbounded streams.
package sampling

import (
	"errors"
	"math/rand"
	"sort"
)

// ErrInvalidCapacity indicates a non-positive reservoir capacity.
var ErrInvalidCapacity = errors.New("reservoir capacity must be positive")

// Rand is the source of uniform random integers used by the reservoir.
// *math/rand.Rand satisfies it; tests inject a seeded instance to make
// reservoir contents reproducible.
type Rand interface {
	// Intn returns a uniformly random int in [0, n).
	Intn(n int) int
}

// Reservoir maintains a uniform random sample of fixed maximum size over a
// stream of unknown length (Vitter's Algorithm R). Exported state fields
// exist for serialization; mutate only through Offer.
type Reservoir struct {
	Capacity int       `json:"capacity"`
	Seen     uint64    `json:"seen"`
	Items    []float64 `json:"items"`

	rng Rand
}

// NewReservoir creates a reservoir of the given capacity backed by rng.
func NewReservoir(capacity int, rng Rand) (*Reservoir, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	return &Reservoir{
		Capacity: capacity,
		Items:    make([]float64, 0, capacity),
		rng:      rng,
	}, nil
}

// NewSeededReservoir creates a reservoir with a math/rand source seeded from
// seed, for deterministic sampling.
func NewSeededReservoir(capacity int, seed int64) (*Reservoir, error) {
	return NewReservoir(capacity, rand.New(rand.NewSource(seed))) //nolint:gosec // sampling, not crypto
}

// Attach sets the random source, used after deserializing reservoir state.
func (r *Reservoir) Attach(rng Rand) {
	r.rng = rng
}

// Offer considers one value for inclusion in the sample. After n offers the
// items held are a uniform random subset of size min(capacity, n) of
// everything offered so far.
func (r *Reservoir) Offer(value float64) {
	r.Seen++

	if len(r.Items) < r.Capacity {
		r.Items = append(r.Items, value)

		return
	}

	j := r.rng.Intn(int(r.Seen))
	if j < r.Capacity {
		r.Items[j] = value
	}
}

// Reseed rebuilds the random source from seed and replays the draws consumed
// by previous offers. A reservoir restored from a checkpoint ends up with the
// exact generator state it had when persisted, so a resumed run samples
// identically to an uninterrupted one.
func (r *Reservoir) Reseed(seed int64) {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // sampling, not crypto

	// Offers past capacity each consumed one draw of Intn(offer index).
	for n := r.Capacity + 1; uint64(n) <= r.Seen; n++ {
		rng.Intn(n)
	}

	r.rng = rng
}

// Merge folds another reservoir into this one. Result items are drawn from
// the two samples in proportion to the sizes of the streams they summarize,
// which keeps the merged sample uniform over the combined stream. Merging
// consumes draws from this reservoir's random source.
func (r *Reservoir) Merge(other *Reservoir) {
	if other.Seen == 0 {
		return
	}

	if r.Seen == 0 {
		r.Seen = other.Seen
		r.Items = append(r.Items[:0], other.Items...)

		return
	}

	ours := append([]float64(nil), r.Items...)
	theirs := append([]float64(nil), other.Items...)

	remainA := int(r.Seen)
	remainB := int(other.Seen)

	merged := make([]float64, 0, r.Capacity)

	for len(merged) < r.Capacity && (len(ours) > 0 || len(theirs) > 0) {
		fromA := len(theirs) == 0
		if !fromA && len(ours) > 0 {
			fromA = r.rng.Intn(remainA+remainB) < remainA
		}

		if fromA {
			merged = append(merged, ours[len(ours)-1])
			ours = ours[:len(ours)-1]
			remainA--
		} else {
			merged = append(merged, theirs[len(theirs)-1])
			theirs = theirs[:len(theirs)-1]
			remainB--
		}
	}

	r.Items = merged
	r.Seen += other.Seen
}

// Len returns the number of items currently held.
func (r *Reservoir) Len() int {
	return len(r.Items)
}

// Median estimates the stream median from the sample by sorting a copy and
// taking the lower-middle element. It is an approximation of the true
// median, not an exact value. Returns ok=false on an empty reservoir.
func (r *Reservoir) Median() (float64, bool) {
	if len(r.Items) == 0 {
		return 0, false
	}

	sorted := make([]float64, len(r.Items))
	copy(sorted, r.Items)
	sort.Float64s(sorted)

	return sorted[(len(sorted)-1)/2], true
}
