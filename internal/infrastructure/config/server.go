package config

import "time"

// ServerConfig holds the operational knobs for the serve command. serve
// reads only ShutdownTimeout, how long it waits for in-flight work to drain
// on shutdown.
type ServerConfig struct {
	// HealthCheckInterval is defaulted and validated but not read by serve,
	// which probes the store once, at startup.
	HealthCheckInterval time.Duration `mapstructure:"health_check_interval" validate:"required"`

	// Graceful shutdown timeout.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
