package config

import (
	"os"
	"strconv"

	"neuropipe/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig `validate:"required"`
	Tracking TrackingConfig
	Plots    PlotConfig
	Database DatabaseConfig
	Server   ServerConfig
}

// DataConfig holds dataset file settings
type DataConfig struct {
	File           string // xlsx or csv table
	ExampleSession string // session shown in the before/after figure
}

// TrackingConfig holds extraction and classification thresholds
type TrackingConfig struct {
	FrameRate       float64 // frames per second
	SpeedCeiling    float64 // cm/s, faster jumps are tracking artifacts
	MaxGapFrames    int     // longest artifact gap bridged by interpolation
	SmoothWindow    int     // centered moving-average width, frames
	ImmobileBelow   float64 // cm/s
	LocomotionAbove float64 // cm/s
	MinBoutFrames   int     // shorter bouts are absorbed into neighbors
}

// PlotConfig holds figure output settings
type PlotConfig struct {
	Dir     string
	Workers int64 // concurrent figure renders
}

// DatabaseConfig holds the optional run-summary store settings
type DatabaseConfig struct {
	URL string // empty disables the store
}

// ServerConfig holds report viewer settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			File:           os.Getenv("DATA_FILE"),
			ExampleSession: getEnvOrDefault("EXAMPLE_SESSION", ""),
		},
		Tracking: TrackingConfig{
			FrameRate:       getEnvFloatOrDefault("FRAME_RATE", 25.0),
			SpeedCeiling:    getEnvFloatOrDefault("SPEED_CEILING", 100.0),
			MaxGapFrames:    getEnvIntOrDefault("MAX_GAP_FRAMES", 12),
			SmoothWindow:    getEnvIntOrDefault("SMOOTH_WINDOW", 13),
			ImmobileBelow:   getEnvFloatOrDefault("IMMOBILE_BELOW", 2.0),
			LocomotionAbove: getEnvFloatOrDefault("LOCOMOTION_ABOVE", 5.0),
			MinBoutFrames:   getEnvIntOrDefault("MIN_BOUT_FRAMES", 25),
		},
		Plots: PlotConfig{
			Dir:     getEnvOrDefault("PLOT_DIR", "./figures"),
			Workers: int64(getEnvIntOrDefault("PLOT_WORKERS", 4)),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// RequireDataFile validates that a dataset path was configured. Commands
// that never touch the dataset (e.g. state classification on a tracking
// trace) skip this check.
func (c *Config) RequireDataFile() error {
	if c.Data.File == "" {
		return errors.ConfigInvalid("DATA_FILE is required")
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.Tracking.FrameRate <= 0 {
		return errors.ConfigInvalid("FRAME_RATE must be positive")
	}
	if config.Tracking.SmoothWindow < 1 {
		return errors.ConfigInvalid("SMOOTH_WINDOW must be at least 1")
	}
	if config.Plots.Workers < 1 {
		return errors.ConfigInvalid("PLOT_WORKERS must be at least 1")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
