package checkpoint

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// sqliteStateKey is the primary key of the single checkpoint row.
const sqliteStateKey = "run"

// SQLiteStore persists checkpoints as a codec-encoded blob in an embedded
// SQLite database. Commits are transactional, which gives the same
// no-partial-write guarantee as the file store's rename.
type SQLiteStore struct {
	db    *sql.DB
	codec Codec
}

// NewSQLiteStore opens (or creates) the database at path and prepares the
// checkpoint table.
func NewSQLiteStore(path string, codec Codec) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint database: %w", err)
	}

	_, pragmaErr := db.Exec("PRAGMA journal_mode=WAL")
	if pragmaErr != nil {
		db.Close()

		return nil, fmt.Errorf("enable WAL mode: %w", pragmaErr)
	}

	_, createErr := db.Exec(`
		CREATE TABLE IF NOT EXISTS checkpoints (
			key  TEXT PRIMARY KEY,
			data BLOB NOT NULL
		)
	`)
	if createErr != nil {
		db.Close()

		return nil, fmt.Errorf("create checkpoint table: %w", createErr)
	}

	return &SQLiteStore{db: db, codec: codec}, nil
}

// Load implements Store.Load.
func (s *SQLiteStore) Load() (*State, error) {
	var data []byte

	err := s.db.QueryRow(`SELECT data FROM checkpoints WHERE key = ?`, sqliteStateKey).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	var state State

	decodeErr := s.codec.Decode(bytes.NewReader(data), &state)
	if decodeErr != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", decodeErr)
	}

	return &state, nil
}

// Commit implements Store.Commit via a single-row upsert.
func (s *SQLiteStore) Commit(state *State) error {
	var buf bytes.Buffer

	encodeErr := s.codec.Encode(&buf, state)
	if encodeErr != nil {
		return fmt.Errorf("encode checkpoint: %w", encodeErr)
	}

	_, err := s.db.Exec(`
		INSERT INTO checkpoints (key, data) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET data = excluded.data
	`, sqliteStateKey, buf.Bytes())
	if err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}

	return nil
}

// Close implements Store.Close.
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("close checkpoint database: %w", err)
	}

	return nil
}
