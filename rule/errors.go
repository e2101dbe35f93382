// Package rule implements the Rule type (an immutable, schema-bound tuple
// of RuleInputs plus an output id), the admission Validator port, and the
// priority comparator used to rank eligible rules.
package rule

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRule indicates a missing rule_output_id, a malformed
	// rule_id, or an unparsable column value. Validator rejection is a
	// separate, non-error outcome; see RuleSystem.AddRule.
	ErrInvalidRule = errors.New("invalid rule")
	// ErrStorageUnavailable indicates the storage port reported itself
	// unreachable, or a CRUD call against it failed.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ConflictError is returned by AddRule when the candidate rule overlaps
// with one or more already-admitted rules on every non-reserved column.
type ConflictError struct {
	Candidate *Rule
	Conflicts []*Rule
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, r := range e.Conflicts {
		ids = append(ids, r.IDString())
	}
	return fmt.Sprintf("rule conflicts with existing rule(s): %s", strings.Join(ids, ", "))
}

// ErrConflict is the sentinel ConflictError wraps, for errors.Is checks.
var ErrConflict = errors.New("conflicting rule")

func (e *ConflictError) Unwrap() error { return ErrConflict }
