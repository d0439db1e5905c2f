// Package checkpoint provides durable run-state persistence so interrupted
// runs resume without reprocessing completed archives.
package checkpoint

import (
	"slices"
	"time"

	"github.com/redsum/redsum/internal/metrics"
)

// CurrentVersion is the checkpoint format version written by this binary.
const CurrentVersion = 1

// State is the persisted checkpoint: the set of fully processed archives and
// the aggregate metrics they contributed. An archive appears in
// ProcessedArchives only when every one of its files has been folded into
// Metrics.
type State struct {
	Version           int               `json:"version"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	ProcessedArchives []string          `json:"processed_archives"`
	Metrics           metrics.Aggregate `json:"metrics"`
}

// NewState creates an empty checkpoint with metrics reservoirs of the given
// capacity seeded from seed.
func NewState(reservoirCapacity int, seed int64) (*State, error) {
	agg, err := metrics.New(reservoirCapacity, seed)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &State{
		Version:   CurrentVersion,
		CreatedAt: now,
		UpdatedAt: now,
		Metrics:   *agg,
	}, nil
}

// Processed reports whether the archive identifier is already recorded as
// fully folded.
func (s *State) Processed(archiveID string) bool {
	return slices.Contains(s.ProcessedArchives, archiveID)
}

// MarkProcessed records an archive identifier, keeping the set sorted and
// free of duplicates.
func (s *State) MarkProcessed(archiveID string) {
	if s.Processed(archiveID) {
		return
	}

	s.ProcessedArchives = append(s.ProcessedArchives, archiveID)
	slices.Sort(s.ProcessedArchives)
	s.UpdatedAt = time.Now().UTC()
}
