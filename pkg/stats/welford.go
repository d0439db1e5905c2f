// Package stats provides online summary statistics with O(1) memory per metric.
package stats

import "math"

// Running accumulates count, mean, and variance of a numeric stream using
// Welford's algorithm. The zero value is ready to use. The exported fields
// exist for serialization; mutate only through Update and Merge.
type Running struct {
	Count uint64  `json:"count"`
	Mean  float64 `json:"mean"`
	M2    float64 `json:"m2"`
}

// Update folds one observation into the accumulator.
func (r *Running) Update(value float64) {
	r.Count++

	delta := value - r.Mean
	r.Mean += delta / float64(r.Count)
	delta2 := value - r.Mean
	r.M2 += delta * delta2
}

// Merge combines another accumulator into this one using the parallel
// variance combination rule (Chan et al.). The merge is commutative and
// associative, so per-file partials can be folded in any order.
func (r *Running) Merge(other Running) {
	if other.Count == 0 {
		return
	}

	if r.Count == 0 {
		*r = other

		return
	}

	total := r.Count + other.Count
	delta := other.Mean - r.Mean

	r.Mean += delta * float64(other.Count) / float64(total)
	r.M2 += other.M2 + delta*delta*float64(r.Count)*float64(other.Count)/float64(total)
	r.Count = total
}

// Defined reports whether the accumulator has seen at least one observation.
// MeanValue, Variance, and StdDev are meaningless when Defined is false.
func (r *Running) Defined() bool {
	return r.Count > 0
}

// MeanValue returns the running mean and whether it is defined.
func (r *Running) MeanValue() (float64, bool) {
	if r.Count == 0 {
		return 0, false
	}

	return r.Mean, true
}

// Variance returns the population variance (M2/count) and whether it is defined.
func (r *Running) Variance() (float64, bool) {
	if r.Count == 0 {
		return 0, false
	}

	return r.M2 / float64(r.Count), true
}

// StdDev returns the population standard deviation and whether it is defined.
func (r *Running) StdDev() (float64, bool) {
	variance, ok := r.Variance()
	if !ok {
		return 0, false
	}

	return math.Sqrt(variance), true
}
