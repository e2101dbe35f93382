package rule

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/ruleforge/ruleengine/ruleschema"
)

var (
	schemaValidatorOnce sync.Once
	schemaValidator     *validator.Validate
)

func getSchemaValidator() *validator.Validate {
	schemaValidatorOnce.Do(func() {
		schemaValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return schemaValidator
}

// validateColumns runs struct-tag validation (see ruleschema.Column) over
// each declared column: struct tags catch the mechanical checks, and
// ruleschema.New layers the cross-field checks (duplicate names,
// duplicate priorities) that tags alone cannot express.
func validateColumns(columns []ruleschema.Column) error {
	v := getSchemaValidator()
	for _, col := range columns {
		if err := v.Struct(col); err != nil {
			return fmt.Errorf("rule: %w: column %q: %v", ruleschema.ErrInvalidSchema, col.Name, err)
		}
	}
	return nil
}
