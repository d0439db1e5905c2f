package config

// Default configuration values.
const (
	DefaultArchivesDir       = "."
	DefaultPipelineWorkers   = 1
	DefaultPipelineFailFast  = false
	DefaultReservoirCapacity = 1024
	DefaultSamplingSeed      = 1
	DefaultCheckpointBackend = BackendFile
	DefaultCheckpointDir     = ".redsum-checkpoint"
	DefaultCheckpointPath    = ".redsum-checkpoint/checkpoint.db"
	DefaultCheckpointCodec   = "json"
	DefaultReportFormat      = FormatTable
	DefaultLogLevel          = "info"
)
