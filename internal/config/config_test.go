package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redsum/redsum/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		ArchivesDir: ".",
		Pipeline:    config.PipelineConfig{Workers: 1},
		Sampling:    config.SamplingConfig{ReservoirCapacity: 128, Seed: 1},
		Checkpoint: config.CheckpointConfig{
			Backend: config.BackendFile,
			Dir:     ".redsum-checkpoint",
			Codec:   "json",
		},
		Report: config.ReportConfig{Format: config.FormatTable},
		Log:    config.LogConfig{Level: "info"},
	}
}

func TestConfig_ValidatePassesOnDefaults(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())
}

func TestConfig_ValidateRejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{
			name:    "zero workers",
			mutate:  func(c *config.Config) { c.Pipeline.Workers = 0 },
			wantErr: config.ErrInvalidWorkers,
		},
		{
			name:    "negative reservoir capacity",
			mutate:  func(c *config.Config) { c.Sampling.ReservoirCapacity = -1 },
			wantErr: config.ErrInvalidReservoirCapacity,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *config.Config) { c.Checkpoint.Backend = "etcd" },
			wantErr: config.ErrInvalidBackend,
		},
		{
			name:    "unknown codec",
			mutate:  func(c *config.Config) { c.Checkpoint.Codec = "zstd" },
			wantErr: config.ErrInvalidCodec,
		},
		{
			name:    "unknown format",
			mutate:  func(c *config.Config) { c.Report.Format = "xml" },
			wantErr: config.ErrInvalidFormat,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *config.Config) { c.Log.Level = "trace" },
			wantErr: config.ErrInvalidLogLevel,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tc.mutate(cfg)

			require.ErrorIs(t, cfg.Validate(), tc.wantErr)
		})
	}
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))

	// An explicitly named but missing file is an error.
	require.Error(t, err)

	cfg, err = config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config.DefaultPipelineWorkers, cfg.Pipeline.Workers)
	assert.Equal(t, config.DefaultReservoirCapacity, cfg.Sampling.ReservoirCapacity)
	assert.Equal(t, config.BackendFile, cfg.Checkpoint.Backend)
	assert.Equal(t, config.FormatTable, cfg.Report.Format)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redsum.yaml")

	content := []byte(`
archives_dir: /data/exports
pipeline:
  workers: 4
sampling:
  reservoir_capacity: 256
  seed: 99
checkpoint:
  backend: sqlite
  codec: gob
report:
  format: yaml
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/exports", cfg.ArchivesDir)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.Equal(t, 256, cfg.Sampling.ReservoirCapacity)
	assert.Equal(t, int64(99), cfg.Sampling.Seed)
	assert.Equal(t, config.BackendSQLite, cfg.Checkpoint.Backend)
	assert.Equal(t, config.FormatYAML, cfg.Report.Format)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadConfig_InvalidFileContentFailsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redsum.yaml")

	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  workers: -2\n"), 0o600))

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrInvalidWorkers)
}
