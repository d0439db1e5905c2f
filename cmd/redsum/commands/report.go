package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/redsum/redsum/internal/config"
)

// ErrNoCheckpoint indicates that no processed data exists to report on.
var ErrNoCheckpoint = errors.New("no checkpoint found, run \"redsum run\" first")

// ReportCommand holds flag values for the report command.
type ReportCommand struct {
	configPath string

	backend        string
	checkpointDir  string
	checkpointPath string
	codecName      string

	format   string
	noColor  bool
	plotPath string
}

// NewReportCommand creates the report command. It renders the summary from
// an existing checkpoint without processing any archives.
func NewReportCommand() *cobra.Command {
	rc := &ReportCommand{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the summary from an existing checkpoint",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}

	cmd.Flags().StringVarP(&rc.configPath, "config", "c", "", "Config file path (default: .redsum.yaml in CWD or $HOME)")

	cmd.Flags().StringVar(&rc.backend, "checkpoint-backend", "", "Checkpoint backend: file, sqlite")
	cmd.Flags().StringVar(&rc.checkpointDir, "checkpoint-dir", "", "Checkpoint directory for the file backend")
	cmd.Flags().StringVar(&rc.checkpointPath, "checkpoint-path", "", "Database file for the sqlite backend")
	cmd.Flags().StringVar(&rc.codecName, "checkpoint-codec", "", "Checkpoint codec: json, gob, gob-lz4")

	cmd.Flags().StringVar(&rc.format, "format", "", "Report format: table, json, yaml")
	cmd.Flags().BoolVar(&rc.noColor, "no-color", false, "Disable colored table output")
	cmd.Flags().StringVar(&rc.plotPath, "plot", "", "Write an HTML body-length distribution plot to this path")

	return cmd
}

func (rc *ReportCommand) run(cmd *cobra.Command, _ []string) error {
	cfg, err := rc.loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	state, err := store.Load()
	if err != nil {
		return err
	}

	if state == nil {
		return ErrNoCheckpoint
	}

	return renderOutputs(cmd.OutOrStdout(), cfg, state)
}

func (rc *ReportCommand) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(rc.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

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

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return cfg, nil
}
