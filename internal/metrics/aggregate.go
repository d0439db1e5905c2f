// Package metrics holds the analytic state folded from export CSVs: per-role
// counters, running statistics, sampled length distributions, and the
// observed date range.
package metrics

import (
	"time"

	"github.com/redsum/redsum/pkg/csvscan"
	"github.com/redsum/redsum/pkg/sampling"
	"github.com/redsum/redsum/pkg/stats"
)

// Column names required by the export schemas.
const (
	colDate      = "date"
	colBody      = "body"
	colDirection = "direction"
)

// Vote direction values.
const (
	directionUp   = "up"
	directionDown = "down"
)

// dateLayouts are tried in order when parsing export timestamps.
var dateLayouts = []string{
	"2006-01-02 15:04:05 MST",
	time.RFC3339,
	"2006-01-02",
}

// VoteCounts tallies vote directions for one vote file role.
type VoteCounts struct {
	Up    uint64 `json:"up"`
	Down  uint64 `json:"down"`
	Total uint64 `json:"total"`
}

// Merge adds another tally into this one.
func (v *VoteCounts) Merge(other VoteCounts) {
	v.Up += other.Up
	v.Down += other.Down
	v.Total += other.Total
}

// Aggregate is the full analytic state for a run. It accumulates across
// archives and round-trips through the checkpoint store. Exported fields
// exist for serialization; mutate only through the Fold and Merge methods.
type Aggregate struct {
	PostLength    stats.Running `json:"post_length"`
	CommentLength stats.Running `json:"comment_length"`

	PostVotes    VoteCounts `json:"post_votes"`
	CommentVotes VoteCounts `json:"comment_votes"`

	Subscriptions uint64 `json:"subscriptions"`
	MalformedRows uint64 `json:"malformed_rows"`

	Dates stats.DateRange `json:"dates"`

	PostLengthSample    sampling.Reservoir `json:"post_length_sample"`
	CommentLengthSample sampling.Reservoir `json:"comment_length_sample"`
}

// Seed derivation offsets keep the two reservoirs on independent streams.
const commentSeedOffset = 1

// New creates an empty aggregate with reservoirs of the given capacity
// seeded deterministically from seed.
func New(reservoirCapacity int, seed int64) (*Aggregate, error) {
	posts, err := sampling.NewSeededReservoir(reservoirCapacity, seed)
	if err != nil {
		return nil, err
	}

	comments, err := sampling.NewSeededReservoir(reservoirCapacity, seed+commentSeedOffset)
	if err != nil {
		return nil, err
	}

	return &Aggregate{
		PostLengthSample:    *posts,
		CommentLengthSample: *comments,
	}, nil
}

// Reseed re-attaches deterministic random sources to the reservoirs after
// the aggregate is restored from a checkpoint.
func (a *Aggregate) Reseed(seed int64) {
	a.PostLengthSample.Reseed(seed)
	a.CommentLengthSample.Reseed(seed + commentSeedOffset)
}

// Clone returns a deep copy of the aggregate's serializable state. The copy
// shares no slices with the original; call Reseed on whichever copy will
// keep receiving offers.
func (a *Aggregate) Clone() *Aggregate {
	clone := *a
	clone.PostLengthSample.Items = append([]float64(nil), a.PostLengthSample.Items...)
	clone.CommentLengthSample.Items = append([]float64(nil), a.CommentLengthSample.Items...)

	return &clone
}

// TotalPosts returns the number of well-formed post rows folded so far.
func (a *Aggregate) TotalPosts() uint64 {
	return a.PostLength.Count
}

// TotalComments returns the number of well-formed comment rows folded so far.
func (a *Aggregate) TotalComments() uint64 {
	return a.CommentLength.Count
}

// FoldPosts folds every row of a tokenized posts file.
func (a *Aggregate) FoldPosts(doc *csvscan.Document) error {
	return a.foldBodyRows(doc, &a.PostLength, &a.PostLengthSample)
}

// FoldComments folds every row of a tokenized comments file.
func (a *Aggregate) FoldComments(doc *csvscan.Document) error {
	return a.foldBodyRows(doc, &a.CommentLength, &a.CommentLengthSample)
}

// foldBodyRows routes rows with date and body columns into the given
// accumulator and sampler. A missing required column fails the whole file;
// a row too short to carry both columns is counted malformed and skipped.
// A date that fails to parse skips only the range update.
func (a *Aggregate) foldBodyRows(doc *csvscan.Document, length *stats.Running, sample *sampling.Reservoir) error {
	dateIdx, err := doc.Column(colDate)
	if err != nil {
		return err
	}

	bodyIdx, err := doc.Column(colBody)
	if err != nil {
		return err
	}

	width := max(dateIdx, bodyIdx) + 1

	for _, row := range doc.Rows {
		if len(row) < width {
			a.MalformedRows++

			continue
		}

		bodyLen := float64(len(row[bodyIdx]))
		length.Update(bodyLen)
		sample.Offer(bodyLen)

		when, ok := parseDate(row[dateIdx])
		if ok {
			a.Dates.Observe(when)
		}
	}

	return nil
}

// FoldPostVotes folds every row of a tokenized post votes file.
func (a *Aggregate) FoldPostVotes(doc *csvscan.Document) error {
	return a.foldVoteRows(doc, &a.PostVotes)
}

// FoldCommentVotes folds every row of a tokenized comment votes file.
func (a *Aggregate) FoldCommentVotes(doc *csvscan.Document) error {
	return a.foldVoteRows(doc, &a.CommentVotes)
}

// foldVoteRows tallies vote directions. Directions other than up/down
// (cleared votes export as "none") count toward the total only.
func (a *Aggregate) foldVoteRows(doc *csvscan.Document, counts *VoteCounts) error {
	dirIdx, err := doc.Column(colDirection)
	if err != nil {
		return err
	}

	for _, row := range doc.Rows {
		if len(row) <= dirIdx {
			a.MalformedRows++

			continue
		}

		counts.Total++

		switch row[dirIdx] {
		case directionUp:
			counts.Up++
		case directionDown:
			counts.Down++
		}
	}

	return nil
}

// FoldSubscriptions counts every row of a tokenized subscriptions file.
func (a *Aggregate) FoldSubscriptions(doc *csvscan.Document) error {
	a.Subscriptions += uint64(len(doc.Rows))

	return nil
}

// Merge combines a partial aggregate (from a parallel per-file fold) into
// this one using the commutative combination rules of each component.
func (a *Aggregate) Merge(other *Aggregate) {
	a.PostLength.Merge(other.PostLength)
	a.CommentLength.Merge(other.CommentLength)
	a.PostVotes.Merge(other.PostVotes)
	a.CommentVotes.Merge(other.CommentVotes)
	a.Subscriptions += other.Subscriptions
	a.MalformedRows += other.MalformedRows
	a.Dates.Merge(other.Dates)
	a.PostLengthSample.Merge(&other.PostLengthSample)
	a.CommentLengthSample.Merge(&other.CommentLengthSample)
}

// parseDate tries the known export timestamp layouts.
func parseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
