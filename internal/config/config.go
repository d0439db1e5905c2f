// Package config loads and validates redsum configuration from file,
// environment, and defaults.
package config

import "errors"

// Config is the top-level configuration struct for redsum.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	ArchivesDir   string              `mapstructure:"archives_dir"`
	Pipeline      PipelineConfig      `mapstructure:"pipeline"`
	Sampling      SamplingConfig      `mapstructure:"sampling"`
	Checkpoint    CheckpointConfig    `mapstructure:"checkpoint"`
	Report        ReportConfig        `mapstructure:"report"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Log           LogConfig           `mapstructure:"log"`
}

// PipelineConfig holds processing knobs.
type PipelineConfig struct {
	// Workers is the number of per-file fold workers within one archive.
	// 1 processes files sequentially; values above 1 merge partial
	// aggregates before the archive commit.
	Workers int `mapstructure:"workers"`

	// FailFast stops the run on the first failed archive instead of
	// continuing with the remaining ones.
	FailFast bool `mapstructure:"fail_fast"`
}

// SamplingConfig holds reservoir sampler settings.
type SamplingConfig struct {
	ReservoirCapacity int   `mapstructure:"reservoir_capacity"`
	Seed              int64 `mapstructure:"seed"`
}

// CheckpointConfig holds checkpoint store settings.
type CheckpointConfig struct {
	// Backend selects the store: "file" or "sqlite".
	Backend string `mapstructure:"backend"`

	// Dir is the checkpoint directory for the file backend.
	Dir string `mapstructure:"dir"`

	// Path is the database file for the sqlite backend.
	Path string `mapstructure:"path"`

	// Codec selects the serialization: "json", "gob", or "gob-lz4".
	Codec string `mapstructure:"codec"`
}

// ReportConfig holds output settings.
type ReportConfig struct {
	// Format selects the renderer: "table", "json", or "yaml".
	Format string `mapstructure:"format"`

	// Plot, when non-empty, writes an HTML distribution plot to this path.
	Plot string `mapstructure:"plot"`

	// NoColor disables terminal colors in the table renderer.
	NoColor bool `mapstructure:"no_color"`
}

// ObservabilityConfig holds metrics settings.
type ObservabilityConfig struct {
	// DiagnosticsAddr, when non-empty, serves Prometheus metrics at this
	// address for the duration of the run (e.g. "localhost:9090").
	DiagnosticsAddr string `mapstructure:"diagnostics_addr"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum slog severity: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`

	// JSON switches log output from text to JSON.
	JSON bool `mapstructure:"json"`
}

// Backend names accepted by CheckpointConfig.Backend.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Report formats accepted by ReportConfig.Format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Sentinel errors for configuration validation.
var (
	// ErrInvalidWorkers indicates the workers value is not positive.
	ErrInvalidWorkers = errors.New("pipeline.workers must be positive")
	// ErrInvalidReservoirCapacity indicates the capacity is not positive.
	ErrInvalidReservoirCapacity = errors.New("sampling.reservoir_capacity must be positive")
	// ErrInvalidBackend indicates an unknown checkpoint backend name.
	ErrInvalidBackend = errors.New("checkpoint.backend must be \"file\" or \"sqlite\"")
	// ErrInvalidCodec indicates an unknown checkpoint codec name.
	ErrInvalidCodec = errors.New("checkpoint.codec must be \"json\", \"gob\", or \"gob-lz4\"")
	// ErrInvalidFormat indicates an unknown report format name.
	ErrInvalidFormat = errors.New("report.format must be \"table\", \"json\", or \"yaml\"")
	// ErrInvalidLogLevel indicates an unknown log level name.
	ErrInvalidLogLevel = errors.New("log.level must be \"debug\", \"info\", \"warn\", or \"error\"")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if c.Pipeline.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Sampling.ReservoirCapacity <= 0 {
		return ErrInvalidReservoirCapacity
	}

	switch c.Checkpoint.Backend {
	case BackendFile, BackendSQLite:
	default:
		return ErrInvalidBackend
	}

	switch c.Checkpoint.Codec {
	case "json", "gob", "gob-lz4":
	default:
		return ErrInvalidCodec
	}

	switch c.Report.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return ErrInvalidFormat
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}
