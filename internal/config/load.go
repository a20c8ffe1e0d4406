package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from RAPPID_-prefixed environment variables,
// applies defaults, and validates the result. Environment variables take
// precedence over defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("workers", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", "data")

	v.SetEnvPrefix("RAPPID")
	v.AutomaticEnv()

	// AutomaticEnv does not make keys visible to Unmarshal unless they are
	// bound explicitly.
	for _, key := range []string{"workers", "log_level", "data_dir"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
