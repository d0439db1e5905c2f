// Package report turns accumulated pipeline metrics into human and
// machine readable summaries.
package report

import (
	"time"

	"github.com/redsum/redsum/internal/checkpoint"
)

// BodyStats summarizes the body lengths observed for one content kind.
// The statistic pointers are nil when no row was observed, so encoders
// can distinguish "no data" from a legitimate zero.
type BodyStats struct {
	Total        uint64   `json:"total" yaml:"total"`
	MeanLength   *float64 `json:"mean_length,omitempty" yaml:"mean_length,omitempty"`
	StdDevLength *float64 `json:"stddev_length,omitempty" yaml:"stddev_length,omitempty"`
	MedianLength *float64 `json:"median_length,omitempty" yaml:"median_length,omitempty"`
}

// VoteSummary carries the tallied vote directions for one content kind.
type VoteSummary struct {
	Up    uint64 `json:"up" yaml:"up"`
	Down  uint64 `json:"down" yaml:"down"`
	Total uint64 `json:"total" yaml:"total"`
}

// DateBounds is the closed range of activity dates seen across all rows.
type DateBounds struct {
	First time.Time `json:"first" yaml:"first"`
	Last  time.Time `json:"last" yaml:"last"`
}

// Report is the final summary assembled from a checkpoint. It is a plain
// value object so every renderer reads the same numbers.
type Report struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`

	Archives []string `json:"archives" yaml:"archives"`

	Posts    BodyStats `json:"posts" yaml:"posts"`
	Comments BodyStats `json:"comments" yaml:"comments"`

	PostVotes    VoteSummary `json:"post_votes" yaml:"post_votes"`
	CommentVotes VoteSummary `json:"comment_votes" yaml:"comment_votes"`

	Subscriptions uint64 `json:"subscriptions" yaml:"subscriptions"`
	MalformedRows uint64 `json:"malformed_rows" yaml:"malformed_rows"`

	Dates *DateBounds `json:"date_range,omitempty" yaml:"date_range,omitempty"`
}

// Build computes a Report from a checkpoint state. The state is not
// modified; the sampled medians read a sorted copy of each reservoir.
func Build(state *checkpoint.State) *Report {
	m := &state.Metrics

	rep := &Report{
		GeneratedAt:   time.Now().UTC(),
		Archives:      append([]string(nil), state.ProcessedArchives...),
		Posts:         bodyStats(m.PostLength.Count, m.PostLength.MeanValue, m.PostLength.StdDev, m.PostLengthSample.Median),
		Comments:      bodyStats(m.CommentLength.Count, m.CommentLength.MeanValue, m.CommentLength.StdDev, m.CommentLengthSample.Median),
		PostVotes:     VoteSummary{Up: m.PostVotes.Up, Down: m.PostVotes.Down, Total: m.PostVotes.Total},
		CommentVotes:  VoteSummary{Up: m.CommentVotes.Up, Down: m.CommentVotes.Down, Total: m.CommentVotes.Total},
		Subscriptions: m.Subscriptions,
		MalformedRows: m.MalformedRows,
	}

	if first, last, ok := m.Dates.Bounds(); ok {
		rep.Dates = &DateBounds{First: first, Last: last}
	}

	return rep
}

func bodyStats(
	total uint64,
	mean, stddev func() (float64, bool),
	median func() (float64, bool),
) BodyStats {
	out := BodyStats{Total: total}

	if v, ok := mean(); ok {
		out.MeanLength = &v
	}

	if v, ok := stddev(); ok {
		out.StdDevLength = &v
	}

	if v, ok := median(); ok {
		out.MedianLength = &v
	}

	return out
}
