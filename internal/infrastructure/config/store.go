package config

// StoreConfig holds coordination/pub-sub store (Redis) connection settings.
// Lease TTLs and the tick cadence are fixed by the scheduling algorithm
// itself, not operator-tunable, so they live as constants in the tick
// package rather than here.
type StoreConfig struct {
	// Full connection URL, e.g. redis://localhost:6379/0.
	URL string `mapstructure:"url" validate:"required"`
}
