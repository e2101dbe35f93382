package rule

import "github.com/ruleforge/ruleengine/ruleschema"

// Validator is the admission predicate applied to a candidate Rule before
// conflict checking. Implementations must be pure, side-effect-free, and
// deterministic.
type Validator interface {
	IsValid(r *Rule) bool
}

// DefaultValidator accepts any rule whose RuleOutputID is non-empty and
// whose declared columns are all populated (Any is a valid population).
// Rule.New already enforces both conditions at construction time, so this
// mirrors that contract for validators constructed independently of a
// particular Rule (for example wrapping a stricter domain policy around
// the default).
type DefaultValidator struct{}

// NewDefaultValidator returns the default admission policy.
func NewDefaultValidator() *DefaultValidator { return &DefaultValidator{} }

// IsValid implements Validator.
func (DefaultValidator) IsValid(r *Rule) bool {
	if r == nil || r.outputID == "" {
		return false
	}
	for _, col := range r.schema.Columns() {
		if _, ok := r.inputs[col.Name]; !ok {
			return false
		}
	}
	return true
}

// ValidateSchema runs a go-playground/validator/v10 struct-tag pass over a
// schema's declared columns (required name, positive priority, known data
// type, reserved-name exclusion), catching malformed schemas at
// RuleSystem construction time rather than at first query.
func ValidateSchema(columns []ruleschema.Column) error {
	return validateColumns(columns)
}
