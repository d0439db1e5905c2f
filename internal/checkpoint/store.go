package checkpoint

// Store persists and restores run state. Checkpoint failures are fatal for
// the run: processing without a reliable checkpoint risks double-counting.
type Store interface {
	// Load returns the last committed state, or (nil, nil) when no
	// checkpoint exists yet.
	Load() (*State, error)

	// Commit durably persists the state. The write is atomic: a crash
	// during Commit never leaves a partially written checkpoint visible.
	Commit(state *State) error

	// Close releases any resources held by the store.
	Close() error
}
