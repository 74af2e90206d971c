// Package config loads, defaults, and validates the funkostore
// configuration, and builds the record store the server runs on.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete funkostore configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (FUNKOSTORE_*)
//  2. Configuration file (YAML)
//  3. Default values
//
// Store configuration pattern: Store.Type selects the backend and only the
// matching type-specific section is decoded, each backend defining its own
// option struct inside the factory.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains the TCP server settings
	Server ServerConfig `mapstructure:"server"`

	// Store specifies the record store type and type-specific configuration
	Store StoreConfig `mapstructure:"store"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Format specifies the log output format: text or json
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// Output is stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains the TCP server settings.
type ServerConfig struct {
	// Port is the TCP port the server listens on
	Port int `mapstructure:"port" validate:"required,gt=0,lte=65535"`

	// MaxConnections caps concurrent connections, 0 for unlimited
	MaxConnections int `mapstructure:"max_connections" validate:"gte=0"`

	// IdleTimeout closes connections idle for this long, 0 to disable
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// WriteTimeout bounds each response write, 0 to disable
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// SerializeUsers holds a per-user lock across add/update check-then-write.
	// Leave false to keep the protocol's baseline (racy) behavior.
	SerializeUsers bool `mapstructure:"serialize_users"`

	// RequestsPerSecond caps the sustained request rate, 0 for unlimited
	RequestsPerSecond uint `mapstructure:"requests_per_second"`

	// RequestBurst is the token bucket capacity when rate limiting is on
	RequestBurst uint `mapstructure:"request_burst"`

	// MetricsLogInterval is how often request totals are logged, 0 disables
	MetricsLogInterval time.Duration `mapstructure:"metrics_interval"`

	// Metrics controls the Prometheus metrics endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig controls the Prometheus metrics HTTP endpoint.
type MetricsConfig struct {
	// Enabled turns on metrics collection and the /metrics endpoint
	Enabled bool `mapstructure:"enabled"`

	// Port is the HTTP port the metrics server listens on
	Port int `mapstructure:"port" validate:"gte=0,lte=65535"`
}

// StoreConfig specifies record store configuration.
type StoreConfig struct {
	// Type selects the backend: fs, memory, badger, or s3
	Type string `mapstructure:"type" validate:"required,oneof=fs memory badger s3"`

	// FS contains filesystem backend options (used when Type = "fs")
	FS map[string]any `mapstructure:"fs"`

	// Badger contains BadgerDB backend options (used when Type = "badger")
	Badger map[string]any `mapstructure:"badger"`

	// S3 contains S3 backend options (used when Type = "s3")
	S3 map[string]any `mapstructure:"s3"`
}

// Load loads configuration from file, environment, and defaults.
//
// Parameters:
//   - configPath: path to config file (empty string uses the default location)
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures environment variable and config file handling.
func setupViper(v *viper.Viper, configPath string) {
	// FUNKOSTORE_SERVER_PORT=60300 style overrides
	v.SetEnvPrefix("FUNKOSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists. A missing file
// is fine; defaults and environment cover everything.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path, preferring
// XDG_CONFIG_HOME and falling back to ~/.config.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "funkostore")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "funkostore")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
