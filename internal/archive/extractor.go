// Package archive abstracts archive decompression behind an Extractor so the
// pipeline can be tested without real zip files on disk.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsafePath indicates an archive entry that would escape the extraction
// directory (zip slip).
var ErrUnsafePath = errors.New("archive entry escapes extraction directory")

// extractedFilePerm is the mode for extracted files.
const extractedFilePerm = 0o600

// extractedDirPerm is the mode for extracted directories.
const extractedDirPerm = 0o750

// Extractor decompresses an archive into a scratch directory. The returned
// cleanup removes the directory and must always be called, regardless of how
// processing went.
type Extractor interface {
	Extract(ctx context.Context, archivePath string) (dir string, cleanup func(), err error)
}

// ZipExtractor extracts zip archives into temporary directories.
type ZipExtractor struct{}

// NewZipExtractor creates a zip-backed extractor.
func NewZipExtractor() *ZipExtractor {
	return &ZipExtractor{}
}

// Extract implements Extractor. Entries are flattened into the scratch
// directory root; nested directory entries are recreated beneath it.
func (e *ZipExtractor) Extract(ctx context.Context, archivePath string) (string, func(), error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer reader.Close()

	dir, err := os.MkdirTemp("", "redsum-extract-*")
	if err != nil {
		return "", nil, fmt.Errorf("create scratch dir: %w", err)
	}

	cleanup := func() { os.RemoveAll(dir) }

	for _, file := range reader.File {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			cleanup()

			return "", nil, ctxErr
		}

		extractErr := extractFile(file, dir)
		if extractErr != nil {
			cleanup()

			return "", nil, fmt.Errorf("extract %s from %s: %w", file.Name, archivePath, extractErr)
		}
	}

	return dir, cleanup, nil
}

func extractFile(file *zip.File, dir string) error {
	target := filepath.Join(dir, filepath.Clean(file.Name))
	if !strings.HasPrefix(target, dir+string(os.PathSeparator)) {
		return ErrUnsafePath
	}

	if file.FileInfo().IsDir() {
		err := os.MkdirAll(target, extractedDirPerm)
		if err != nil {
			return fmt.Errorf("create directory: %w", err)
		}

		return nil
	}

	err := os.MkdirAll(filepath.Dir(target), extractedDirPerm)
	if err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open entry: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, extractedFilePerm)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	_, copyErr := io.Copy(dst, src) //nolint:gosec // local export archives, not adversarial input
	closeErr := dst.Close()

	if copyErr != nil {
		return fmt.Errorf("copy contents: %w", copyErr)
	}

	if closeErr != nil {
		return fmt.Errorf("close file: %w", closeErr)
	}

	return nil
}
