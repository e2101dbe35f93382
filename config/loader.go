// Package config provides bootstrap configuration loading for a
// ruleengine.RuleSystem via viper: a YAML file overlaid with environment
// variables. Instance-scoped rather than built on viper's package-level
// global, since a library embedded in another process should not mutate
// global state behind its caller's back.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for overrides, e.g.
// RULEENGINE_RULE_SYSTEM, RULEENGINE_STORE_BACKEND.
const envPrefix = "RULEENGINE"

// Load reads configuration from path (a YAML file), overlays environment
// variables, applies defaults, and validates the result. path may be
// empty, in which case only environment variables and defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// bindEnvKeys binds every scalar Config key (store.options is not bound) so
// environment overrides reach
// fields viper's AutomaticEnv wouldn't otherwise discover without a prior
// read (Viper only binds env vars for keys it already knows about).
func bindEnvKeys(v *viper.Viper) {
	_ = v.BindEnv("rule_system")
	_ = v.BindEnv("log_level")
	_ = v.BindEnv("store.backend")
	_ = v.BindEnv("metrics.enabled")
	_ = v.BindEnv("tracing.enabled")
	_ = v.BindEnv("tracing.exporter_stdout")
}
