package config

// Config holds all library configuration.
type Config struct {
	// Workers is the worker pool size; 0 means size to the hardware.
	Workers int `mapstructure:"workers" validate:"gte=0"`

	// LogLevel controls the verbosity of structured logging.
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// DataDir is the base directory for cached raster files.
	DataDir string `mapstructure:"data_dir" validate:"required"`
}
