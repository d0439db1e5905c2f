package checkpoint

import (
	"fmt"
	"os"

	"github.com/redsum/redsum/pkg/persist"
)

// stateBasename is the checkpoint file name without extension.
const stateBasename = "checkpoint"

// checkpointDirPerm is the mode for a created checkpoint directory.
const checkpointDirPerm = 0o750

// FileStore persists checkpoints as a single codec-encoded file in a
// directory, replaced atomically on every commit.
type FileStore struct {
	dir       string
	persister *persist.Persister[State]
}

// NewFileStore creates a file-backed store in dir using the given codec,
// creating the directory if needed.
func NewFileStore(dir string, codec Codec) (*FileStore, error) {
	err := os.MkdirAll(dir, checkpointDirPerm)
	if err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}

	return &FileStore{
		dir:       dir,
		persister: persist.NewPersister[State](stateBasename, codec),
	}, nil
}

// Load implements Store.Load.
func (s *FileStore) Load() (*State, error) {
	if !s.persister.Exists(s.dir) {
		return nil, nil
	}

	state, err := s.persister.Load(s.dir)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	return state, nil
}

// Commit implements Store.Commit.
func (s *FileStore) Commit(state *State) error {
	err := s.persister.Save(s.dir, state)
	if err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}

	return nil
}

// Close implements Store.Close. File stores hold no open resources.
func (s *FileStore) Close() error {
	return nil
}
