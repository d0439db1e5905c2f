package archive_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redsum/redsum/internal/archive"
)

// writeZip creates a zip file at path with the given name→content entries.
func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)

	w := zip.NewWriter(f)

	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)

		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestZipExtractor_ExtractsEntries(t *testing.T) {
	t.Parallel()

	archivePath := filepath.Join(t.TempDir(), "export.zip")
	writeZip(t, archivePath, map[string]string{
		"posts.csv":        "date,body\n2021-01-01,hi\n",
		"nested/notes.txt": "ignored",
	})

	extractor := archive.NewZipExtractor()

	dir, cleanup, err := extractor.Extract(context.Background(), archivePath)
	require.NoError(t, err)
	defer cleanup()

	posts, err := os.ReadFile(filepath.Join(dir, "posts.csv"))
	require.NoError(t, err)
	assert.Equal(t, "date,body\n2021-01-01,hi\n", string(posts))

	_, err = os.Stat(filepath.Join(dir, "nested", "notes.txt"))
	require.NoError(t, err)
}

func TestZipExtractor_CleanupRemovesScratchDir(t *testing.T) {
	t.Parallel()

	archivePath := filepath.Join(t.TempDir(), "export.zip")
	writeZip(t, archivePath, map[string]string{"posts.csv": "date,body\n"})

	extractor := archive.NewZipExtractor()

	dir, cleanup, err := extractor.Extract(context.Background(), archivePath)
	require.NoError(t, err)

	cleanup()

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestZipExtractor_CorruptArchive(t *testing.T) {
	t.Parallel()

	archivePath := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(archivePath, []byte("not a zip"), 0o600))

	extractor := archive.NewZipExtractor()

	_, _, err := extractor.Extract(context.Background(), archivePath)
	require.Error(t, err)
}

func TestZipExtractor_CancelledContext(t *testing.T) {
	t.Parallel()

	archivePath := filepath.Join(t.TempDir(), "export.zip")
	writeZip(t, archivePath, map[string]string{"posts.csv": "date,body\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := archive.NewZipExtractor()

	_, _, err := extractor.Extract(ctx, archivePath)
	require.ErrorIs(t, err, context.Canceled)
}
