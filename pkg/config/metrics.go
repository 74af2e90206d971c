package config

import (
	"github.com/marmos91/funkostore/pkg/metrics"
)

// MetricsResult contains all metrics-related components created from
// configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// RequestMetrics is the collector handed to the TCP server (never nil,
	// uses noop if disabled)
	RequestMetrics metrics.RequestMetrics
}

// InitializeMetrics creates and initializes all metrics components based on
// configuration.
//
// If metrics are enabled, the global Prometheus registry is initialized and
// a metrics HTTP server is created. If disabled, the returned Server is nil
// and RequestMetrics is a no-op implementation.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		return &MetricsResult{
			Server:         nil,
			RequestMetrics: metrics.NewNoopRequestMetrics(),
		}
	}

	metrics.InitRegistry()

	server := metrics.NewServer(metrics.ServerConfig{
		Port: cfg.Server.Metrics.Port,
	})

	return &MetricsResult{
		Server:         server,
		RequestMetrics: metrics.NewRequestMetrics(),
	}
}
