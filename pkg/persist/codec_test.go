package persist

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testState is a struct for round-trip codec testing.
type testState struct {
	Name   string         `json:"name"`
	Count  int            `json:"count"`
	Values map[string]int `json:"values"`
}

func TestJSONCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	original := testState{
		Name:   "test",
		Count:  42,
		Values: map[string]int{"a": 1, "b": 2},
	}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	var decoded testState

	require.NoError(t, codec.Decode(&buf, &decoded))

	assert.Equal(t, original, decoded)
}

func TestJSONCodec_Extension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".json", NewJSONCodec().Extension())
}

func TestJSONCodec_PrettyPrint(t *testing.T) {
	t.Parallel()

	codec := NewJSONCodec()

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, testState{Name: "pretty", Count: 1}))
	assert.Contains(t, buf.String(), defaultIndent)
}

func TestJSONCodec_DecodeError(t *testing.T) {
	t.Parallel()

	var decoded testState

	err := NewJSONCodec().Decode(strings.NewReader("not valid json{{{"), &decoded)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "json decode")
}

func TestGobCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewGobCodec()

	original := testState{Name: "gob", Count: 7, Values: map[string]int{"x": 9}}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	var decoded testState

	require.NoError(t, codec.Decode(&buf, &decoded))

	assert.Equal(t, original, decoded)
}

func TestLZ4Codec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewLZ4Codec(NewGobCodec())

	original := testState{
		Name:   strings.Repeat("compressible ", 100),
		Count:  3,
		Values: map[string]int{"k": 1},
	}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	// The frame must actually be compressed, not a passthrough.
	assert.Less(t, buf.Len(), len(original.Name))

	var decoded testState

	require.NoError(t, codec.Decode(&buf, &decoded))
	assert.Equal(t, original, decoded)
}

func TestLZ4Codec_StacksExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".gob.lz4", NewLZ4Codec(NewGobCodec()).Extension())
	assert.Equal(t, ".json.lz4", NewLZ4Codec(NewJSONCodec()).Extension())
}

func TestSaveState_WritesFileAtomically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	codec := NewJSONCodec()
	state := testState{Name: "durable", Count: 1}

	require.NoError(t, SaveState(dir, "state", codec, state))

	// No temp files remain after a successful save.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())

	var loaded testState

	require.NoError(t, LoadState(dir, "state", codec, &loaded))
	assert.Equal(t, state, loaded)
}

func TestSaveState_OverwritesPrevious(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	codec := NewJSONCodec()

	require.NoError(t, SaveState(dir, "state", codec, testState{Count: 1}))
	require.NoError(t, SaveState(dir, "state", codec, testState{Count: 2}))

	var loaded testState

	require.NoError(t, LoadState(dir, "state", codec, &loaded))
	assert.Equal(t, 2, loaded.Count)
}

func TestLoadState_MissingFile(t *testing.T) {
	t.Parallel()

	var state testState

	err := LoadState(t.TempDir(), "absent", NewJSONCodec(), &state)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "open state file")
}

func TestStateExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	codec := NewJSONCodec()

	assert.False(t, StateExists(dir, "state", codec))

	require.NoError(t, SaveState(dir, "state", codec, testState{}))
	assert.True(t, StateExists(dir, "state", codec))

	tmpName := filepath.Join(dir, "other.json.tmp-1")
	require.NoError(t, os.WriteFile(tmpName, []byte("{}"), 0o600))
	assert.False(t, StateExists(dir, "other", codec))
}
