package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate validates the Config using struct tags and cross-field rules:
// struct tags cover the mechanical checks, and a small set of hand-written
// checks cover what tags can't express.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if c.Store.Backend == "memory" && len(c.Store.Options) > 0 {
		return fmt.Errorf("config: store backend %q does not accept options", c.Store.Backend)
	}

	return nil
}
