// Package commands implements CLI command handlers for redsum.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redsum/redsum/internal/archive"
	"github.com/redsum/redsum/internal/checkpoint"
	"github.com/redsum/redsum/internal/config"
	"github.com/redsum/redsum/internal/observability"
	"github.com/redsum/redsum/internal/pipeline"
	"github.com/redsum/redsum/internal/report"
)

// RunCommand holds flag values for the run command. Zero values mean the
// flag was not set and the config file / env / defaults win.
type RunCommand struct {
	configPath string

	archivesDir string
	workers     int
	failFast    bool

	capacity int
	seed     int64

	backend        string
	checkpointDir  string
	checkpointPath string
	codecName      string

	format   string
	noColor  bool
	plotPath string

	diagnosticsAddr string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cmd := &cobra.Command{
		Use:   "run [archives-dir]",
		Short: "Process export archives and print the summary",
		Long: "Process every unprocessed archive in the archives directory,\n" +
			"committing a checkpoint after each one, then print the summary.",
		Args: cobra.MaximumNArgs(1),
		RunE: rc.run,
	}

	cmd.Flags().StringVarP(&rc.configPath, "config", "c", "", "Config file path (default: .redsum.yaml in CWD or $HOME)")

	cmd.Flags().StringVar(&rc.archivesDir, "archives", "", "Directory containing export zip archives")
	cmd.Flags().IntVar(&rc.workers, "workers", 0, "Per-archive fold workers (1 = sequential)")
	cmd.Flags().BoolVar(&rc.failFast, "fail-fast", false, "Stop on the first failed archive")

	cmd.Flags().IntVar(&rc.capacity, "reservoir-capacity", 0, "Reservoir sample capacity for median estimation")
	cmd.Flags().Int64Var(&rc.seed, "seed", 0, "Deterministic sampling seed")

	cmd.Flags().StringVar(&rc.backend, "checkpoint-backend", "", "Checkpoint backend: file, sqlite")
	cmd.Flags().StringVar(&rc.checkpointDir, "checkpoint-dir", "", "Checkpoint directory for the file backend")
	cmd.Flags().StringVar(&rc.checkpointPath, "checkpoint-path", "", "Database file for the sqlite backend")
	cmd.Flags().StringVar(&rc.codecName, "checkpoint-codec", "", "Checkpoint codec: json, gob, gob-lz4")

	cmd.Flags().StringVar(&rc.format, "format", "", "Report format: table, json, yaml")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored table output")
	cmd.Flags().StringVar(&rc.plotPath, "plot", "", "Write an HTML body-length distribution plot to this path")

	cmd.Flags().StringVar(&rc.diagnosticsAddr, "diagnostics-addr", "", "Serve Prometheus metrics at this address during the run")

	return cmd
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := rc.loadConfig(cmd, args)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runner := &pipeline.Runner{
		ArchivesDir:       cfg.ArchivesDir,
		Extractor:         archive.NewZipExtractor(),
		Store:             store,
		ReservoirCapacity: cfg.Sampling.ReservoirCapacity,
		Seed:              cfg.Sampling.Seed,
		Workers:           cfg.Pipeline.Workers,
		FailFast:          cfg.Pipeline.FailFast,
		Logger:            logger,
	}

	if cfg.Observability.DiagnosticsAddr != "" {
		diag, diagErr := observability.NewDiagnosticsServer(cfg.Observability.DiagnosticsAddr)
		if diagErr != nil {
			return diagErr
		}
		defer diag.Close()

		pipeMetrics, metricsErr := observability.NewPipelineMetrics(diag.Meter())
		if metricsErr != nil {
			return metricsErr
		}

		runner.Metrics = pipeMetrics

		logger.Info("diagnostics endpoint serving", "addr", diag.Addr())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	renderErr := renderOutputs(cmd.OutOrStdout(), cfg, result.State)
	if renderErr != nil {
		return renderErr
	}

	failedErr := result.FailedErr()
	if failedErr != nil {
		return fmt.Errorf("%d archive(s) failed: %w", len(result.Failed), failedErr)
	}

	return nil
}

// loadConfig merges the config file with explicitly set flags. A flag wins
// only when the user changed it.
func (rc *RunCommand) loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.ArchivesDir = args[0]
	}

	flags := cmd.Flags()

	if flags.Changed("archives") {
		cfg.ArchivesDir = rc.archivesDir
	}

	if flags.Changed("workers") {
		cfg.Pipeline.Workers = rc.workers
	}

	if flags.Changed("fail-fast") {
		cfg.Pipeline.FailFast = rc.failFast
	}

	if flags.Changed("reservoir-capacity") {
		cfg.Sampling.ReservoirCapacity = rc.capacity
	}

	if flags.Changed("seed") {
		cfg.Sampling.Seed = rc.seed
	}

	if flags.Changed("checkpoint-backend") {
		cfg.Checkpoint.Backend = rc.backend
	}

	if flags.Changed("checkpoint-dir") {
		cfg.Checkpoint.Dir = rc.checkpointDir
	}

	if flags.Changed("checkpoint-path") {
		cfg.Checkpoint.Path = rc.checkpointPath
	}

	if flags.Changed("checkpoint-codec") {
		cfg.Checkpoint.Codec = rc.codecName
	}

	if flags.Changed("format") {
		cfg.Report.Format = rc.format
	}

	if flags.Changed("no-color") {
		cfg.Report.NoColor = rc.noColor
	}

	if flags.Changed("plot") {
		cfg.Report.Plot = rc.plotPath
	}

	if flags.Changed("diagnostics-addr") {
		cfg.Observability.DiagnosticsAddr = rc.diagnosticsAddr
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}

// openStore builds the configured checkpoint store.
func openStore(cfg *config.Config) (checkpoint.Store, error) {
	codec, err := checkpoint.CodecByName(cfg.Checkpoint.Codec)
	if err != nil {
		return nil, err
	}

	switch cfg.Checkpoint.Backend {
	case config.BackendSQLite:
		return checkpoint.NewSQLiteStore(cfg.Checkpoint.Path, codec)
	default:
		return checkpoint.NewFileStore(cfg.Checkpoint.Dir, codec)
	}
}

// newLogger builds the slog logger the pipeline reports progress through.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.Log.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// renderOutputs writes the configured report format and the optional plot.
func renderOutputs(w io.Writer, cfg *config.Config, state *checkpoint.State) error {
	renderer, err := report.RendererFor(cfg.Report.Format, cfg.Report.NoColor)
	if err != nil {
		return err
	}

	rep := report.Build(state)

	renderErr := renderer.Render(w, rep)
	if renderErr != nil {
		return renderErr
	}

	if cfg.Report.Plot == "" {
		return nil
	}

	plotFile, err := os.Create(cfg.Report.Plot)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}

	plotErr := report.RenderPlot(plotFile, state)

	closeErr := plotFile.Close()
	if plotErr != nil {
		return plotErr
	}

	return closeErr
}
