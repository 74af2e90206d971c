package config

import (
	"strings"
	"time"
)

// Default values applied to any configuration field left unset.
const (
	DefaultLogLevel  = "INFO"
	DefaultLogFormat = "text"
	DefaultLogOutput = "stdout"

	// DefaultPort is the funkostore protocol port.
	DefaultPort = 60300

	DefaultIdleTimeout     = 5 * time.Minute
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMetricsPort is the Prometheus exposition port.
	DefaultMetricsPort = 9090

	DefaultStoreType = "fs"
	DefaultFSPath    = "./funkostore-data"
)

// ApplyDefaults fills in defaults for any missing values and normalizes the
// log level to uppercase.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = DefaultLogOutput
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.Metrics.Port == 0 {
		cfg.Server.Metrics.Port = DefaultMetricsPort
	}

	if cfg.Store.Type == "" {
		cfg.Store.Type = DefaultStoreType
	}
	if cfg.Store.Type == "fs" {
		if cfg.Store.FS == nil {
			cfg.Store.FS = map[string]any{}
		}
		if _, ok := cfg.Store.FS["path"]; !ok {
			cfg.Store.FS["path"] = DefaultFSPath
		}
	}
}
