// Package config provides bootstrap configuration for embedding a
// ruleengine.RuleSystem: which named rule system to load, which storage
// backend to talk to, and ambient logging/observability knobs. It never
// touches the storage port directly — it only produces the values a host
// application passes to ruleengine.New.
package config

// Config is the top-level bootstrap configuration for a RuleSystem.
type Config struct {
	// RuleSystem names the rule system to load from the configured store.
	RuleSystem string `yaml:"rule_system" mapstructure:"rule_system" validate:"required"`

	// Store selects and configures the storage backend adapter.
	Store StoreConfig `yaml:"store" mapstructure:"store"`

	// LogLevel sets the minimum slog level ("debug", "info", "warn" or
	// "warning", "error").
	// Defaults to "info" if empty.
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`

	// Metrics configures Prometheus metrics registration.
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`

	// Tracing configures OpenTelemetry span emission.
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// StoreConfig selects the storage backend adapter a host application wires
// up. Concrete backend connection details (DSNs, file paths) are the
// adapter's concern, not the core's; this only carries the selector and an
// opaque options bag.
type StoreConfig struct {
	// Backend names the storage adapter ("memory" is the only one this
	// module ships; production backends are supplied by the embedder).
	Backend string `yaml:"backend" mapstructure:"backend" validate:"required"`
	// Options are backend-specific settings (connection string, file path,
	// etc.), passed through unmodified to the adapter's constructor.
	Options map[string]string `yaml:"options" mapstructure:"options"`
}

// MetricsConfig configures Prometheus registration for a RuleSystem.
type MetricsConfig struct {
	// Enabled turns on metrics registration via ruleengine.WithMetricsRegisterer.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// TracingConfig configures OpenTelemetry span emission for a RuleSystem.
type TracingConfig struct {
	// Enabled turns on tracing via ruleengine.WithTracerProvider.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// ExporterStdout writes spans to stdout using
	// go.opentelemetry.io/otel/exporters/stdout/stdouttrace. Intended for
	// local inspection, not production export.
	ExporterStdout bool `yaml:"exporter_stdout" mapstructure:"exporter_stdout"`
}

// SetDefaults fills in the zero-value defaults for optional fields.
func (c *Config) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
}
