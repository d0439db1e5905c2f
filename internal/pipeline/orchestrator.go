// Package pipeline drives archives through extraction, tokenization,
// metric folding, and checkpoint commit.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/redsum/redsum/internal/archive"
	"github.com/redsum/redsum/internal/checkpoint"
	"github.com/redsum/redsum/internal/metrics"
	"github.com/redsum/redsum/internal/observability"
	"github.com/redsum/redsum/pkg/csvscan"
)

// archiveExtension identifies archive files in the source directory.
const archiveExtension = ".zip"

// ErrCheckpointVersion indicates a checkpoint written by an incompatible
// binary version.
var ErrCheckpointVersion = errors.New("unsupported checkpoint version")

// Stage names for the per-archive state machine, used in logs.
const (
	stageExtracting = "extracting"
	stageParsing    = "parsing"
	stageFolded     = "folded"
	stageCommitted  = "committed"
	stageFailed     = "failed"
)

// ArchiveFailure records one archive that aborted without commit. The
// archive stays eligible for retry on the next run.
type ArchiveFailure struct {
	ID  string
	Err error
}

// Result summarizes a pipeline run.
type Result struct {
	// State is the final checkpoint state after the run.
	State *checkpoint.State

	// Processed lists archives committed during this run.
	Processed []string

	// Skipped lists archives already present in the loaded checkpoint.
	Skipped []string

	// Failed lists archives that aborted; their metrics contributions were
	// rolled back and the checkpoint was not advanced for them.
	Failed []ArchiveFailure
}

// FailedErr joins the per-archive failures into one error, or nil.
func (r *Result) FailedErr() error {
	if len(r.Failed) == 0 {
		return nil
	}

	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, fmt.Errorf("archive %s: %w", f.ID, f.Err))
	}

	return errors.Join(errs...)
}

// Runner orchestrates one pipeline run. Archives are processed strictly one
// at a time; the checkpoint is committed only between archives, which is
// what makes interrupting and resuming a run safe.
type Runner struct {
	// ArchivesDir is the directory scanned for archives.
	ArchivesDir string

	// Extractor decompresses archives into scratch directories.
	Extractor archive.Extractor

	// Store persists the checkpoint. Load and Commit failures are fatal.
	Store checkpoint.Store

	// ReservoirCapacity and Seed configure fresh metric state.
	ReservoirCapacity int
	Seed              int64

	// Workers above 1 folds the files of one archive in parallel and
	// merges partial aggregates before the archive commit. Sampling is
	// exactly reproducible across resumes only with Workers == 1.
	Workers int

	// FailFast aborts the run on the first failed archive.
	FailFast bool

	// Logger receives progress events. Nil discards them.
	Logger *slog.Logger

	// Metrics receives pipeline telemetry. Nil disables it.
	Metrics *observability.PipelineMetrics
}

// Run loads the checkpoint, processes every unprocessed archive in
// lexicographic order, and commits after each one. A non-nil error is fatal
// (checkpoint I/O, cancellation, or FailFast); per-archive failures are
// reported in the Result.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	state, err := r.loadState()
	if err != nil {
		return nil, err
	}

	archives, err := r.discoverArchives()
	if err != nil {
		return nil, err
	}

	result := &Result{State: state}

	for _, archivePath := range archives {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return nil, ctxErr
		}

		id := filepath.Base(archivePath)

		if state.Processed(id) {
			result.Skipped = append(result.Skipped, id)
			r.recordArchive(ctx, observability.StatusSkipped, 0)
			r.logger().DebugContext(ctx, "pipeline: archive skipped", "archive", id)

			continue
		}

		started := time.Now()

		processErr := r.processArchive(ctx, state, archivePath)
		if processErr != nil {
			if errors.Is(processErr, context.Canceled) || errors.Is(processErr, context.DeadlineExceeded) {
				return nil, processErr
			}

			result.Failed = append(result.Failed, ArchiveFailure{ID: id, Err: processErr})
			r.recordArchive(ctx, observability.StatusFailed, time.Since(started))
			r.logger().WarnContext(ctx, "pipeline: archive failed",
				"archive", id, "stage", stageFailed, "error", processErr)

			if r.FailFast {
				return nil, fmt.Errorf("archive %s: %w", id, processErr)
			}

			continue
		}

		state.MarkProcessed(id)

		commitErr := r.Store.Commit(state)
		if commitErr != nil {
			return nil, fmt.Errorf("commit after archive %s: %w", id, commitErr)
		}

		result.Processed = append(result.Processed, id)
		r.recordArchive(ctx, observability.StatusProcessed, time.Since(started))
		r.logger().InfoContext(ctx, "pipeline: archive committed",
			"archive", id,
			"stage", stageCommitted,
			"posts", state.Metrics.TotalPosts(),
			"comments", state.Metrics.TotalComments(),
			"duration", time.Since(started).Round(time.Millisecond),
		)
	}

	return result, nil
}

// loadState restores the persisted checkpoint or initializes a fresh one.
func (r *Runner) loadState() (*checkpoint.State, error) {
	state, err := r.Store.Load()
	if err != nil {
		return nil, err
	}

	if state == nil {
		fresh, newErr := checkpoint.NewState(r.ReservoirCapacity, r.Seed)
		if newErr != nil {
			return nil, fmt.Errorf("initialize checkpoint state: %w", newErr)
		}

		return fresh, nil
	}

	if state.Version != checkpoint.CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrCheckpointVersion, state.Version)
	}

	state.Metrics.Reseed(r.Seed)

	return state, nil
}

// discoverArchives lists archive files in lexicographic order, which keeps
// runs reproducible for a fixed directory listing.
func (r *Runner) discoverArchives() ([]string, error) {
	entries, err := os.ReadDir(r.ArchivesDir)
	if err != nil {
		return nil, fmt.Errorf("read archives dir %s: %w", r.ArchivesDir, err)
	}

	var archives []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), archiveExtension) {
			continue
		}

		archives = append(archives, filepath.Join(r.ArchivesDir, entry.Name()))
	}

	sort.Strings(archives)

	return archives, nil
}

// processArchive runs one archive through extract → parse → fold. On any
// failure the aggregate is rolled back to its pre-archive snapshot, so a bad
// archive never leaks partial contributions into the committed metrics.
func (r *Runner) processArchive(ctx context.Context, state *checkpoint.State, archivePath string) error {
	id := filepath.Base(archivePath)

	snapshot := state.Metrics.Clone()

	r.logger().DebugContext(ctx, "pipeline: extracting archive", "archive", id, "stage", stageExtracting)

	dir, cleanup, err := r.Extractor.Extract(ctx, archivePath)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	defer cleanup()

	r.logger().DebugContext(ctx, "pipeline: parsing archive", "archive", id, "stage", stageParsing)

	foldErr := r.foldArchive(ctx, &state.Metrics, dir)
	if foldErr != nil {
		state.Metrics = *snapshot
		state.Metrics.Reseed(r.Seed)

		return foldErr
	}

	r.logger().DebugContext(ctx, "pipeline: archive folded", "archive", id, "stage", stageFolded)

	return nil
}

// foldArchive tokenizes and folds every recognized file under dir.
func (r *Runner) foldArchive(ctx context.Context, agg *metrics.Aggregate, dir string) error {
	files, err := findRecognizedFiles(dir)
	if err != nil {
		return err
	}

	if r.Workers > 1 && len(files) > 1 {
		return r.foldParallel(ctx, agg, files)
	}

	for _, file := range files {
		foldErr := r.foldFile(ctx, agg, file)
		if foldErr != nil {
			return foldErr
		}
	}

	return nil
}

// recognizedFile pairs a file path with its routing role.
type recognizedFile struct {
	path string
	role string
	fold foldFunc
}

// findRecognizedFiles walks the extraction directory and matches base names
// against the known roles, in deterministic walk order.
func findRecognizedFiles(dir string) ([]recognizedFile, error) {
	var files []recognizedFile

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		entry, ok := roleByFileName[d.Name()]
		if !ok {
			return nil
		}

		files = append(files, recognizedFile{path: path, role: entry.role, fold: entry.fold})

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("scan extracted files: %w", walkErr)
	}

	return files, nil
}

// foldFile tokenizes one file and folds it into the aggregate.
func (r *Runner) foldFile(ctx context.Context, agg *metrics.Aggregate, file recognizedFile) error {
	ctxErr := ctx.Err()
	if ctxErr != nil {
		return ctxErr
	}

	raw, err := os.ReadFile(file.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", file.role, err)
	}

	doc, err := csvscan.Scan(string(raw))
	if err != nil {
		return fmt.Errorf("tokenize %s: %w", file.role, err)
	}

	malformedBefore := agg.MalformedRows

	foldErr := file.fold(agg, doc)
	if foldErr != nil {
		return fmt.Errorf("fold %s: %w", file.role, foldErr)
	}

	r.recordRows(ctx, file.role, int64(len(doc.Rows)), int64(agg.MalformedRows-malformedBefore))

	return nil
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}

	return slog.New(slog.DiscardHandler)
}

func (r *Runner) recordArchive(ctx context.Context, status string, duration time.Duration) {
	if r.Metrics != nil {
		r.Metrics.RecordArchive(ctx, status, duration)
	}
}

func (r *Runner) recordRows(ctx context.Context, role string, folded, malformed int64) {
	if r.Metrics != nil {
		r.Metrics.RecordRows(ctx, role, folded, malformed)
	}
}
