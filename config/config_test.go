package config

import "testing"

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "memory")
	}
}

func TestConfig_SetDefaults_PreservesExistingValues(t *testing.T) {
	t.Parallel()

	cfg := Config{
		LogLevel: "debug",
		Store:    StoreConfig{Backend: "postgres"},
	}
	cfg.SetDefaults()

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel was overwritten: got %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.Store.Backend != "postgres" {
		t.Errorf("Store.Backend was overwritten: got %q, want %q", cfg.Store.Backend, "postgres")
	}
}

func TestConfig_SetDefaults_MetricsAndTracingUntouched(t *testing.T) {
	t.Parallel()

	cfg := Config{
		Metrics: MetricsConfig{Enabled: true},
		Tracing: TracingConfig{Enabled: true, ExporterStdout: true},
	}
	cfg.SetDefaults()

	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled was cleared by SetDefaults")
	}
	if !cfg.Tracing.Enabled || !cfg.Tracing.ExporterStdout {
		t.Error("Tracing fields were cleared by SetDefaults")
	}
}
