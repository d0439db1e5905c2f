package stats

import "time"

// DateRange tracks the earliest and latest timestamps seen in a stream.
// The zero value is an empty range. Exported fields exist for serialization.
type DateRange struct {
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
	Set   bool      `json:"set"`
}

// Observe widens the range to include t.
func (d *DateRange) Observe(t time.Time) {
	if !d.Set {
		d.First = t
		d.Last = t
		d.Set = true

		return
	}

	if t.Before(d.First) {
		d.First = t
	}

	if t.After(d.Last) {
		d.Last = t
	}
}

// Merge widens the range to include another range.
func (d *DateRange) Merge(other DateRange) {
	if !other.Set {
		return
	}

	d.Observe(other.First)
	d.Observe(other.Last)
}

// Bounds returns the range endpoints and whether any timestamp was observed.
func (d *DateRange) Bounds() (first, last time.Time, ok bool) {
	if !d.Set {
		return time.Time{}, time.Time{}, false
	}

	return d.First, d.Last, true
}
