package ruleengine

import (
	"context"

	"github.com/ruleforge/ruleengine/ruleschema"
)

// RawRule is the storage-port wire shape for one persisted rule: a
// rule_output_id plus one raw string per declared column (and, once
// persisted, a rule_id). RuleSystem is responsible for turning this into a
// rule.Rule via rule.New.
type RawRule struct {
	// ID is the assigned identifier. Nil for a rule not yet persisted.
	ID *int64
	// Values holds rule_output_id plus one entry per declared column name.
	Values map[string]string
}

// RuleStore is the storage port (DAO) the RuleSystem facade depends on. It
// is the only I/O boundary of the core; concrete backends (SQL,
// file-locked JSON, etc.) are adapters implementing this interface and are
// explicitly out of scope for this module. See the memstore package for a
// swap-in in-memory implementation suitable for tests. Failures surface
// wrapped in rule.ErrStorageUnavailable.
type RuleStore interface {
	// IsValid reports whether the store is reachable and the named rule
	// system exists.
	IsValid(ctx context.Context, name string) (bool, error)
	// GetInputs returns the named rule system's declared columns, in any
	// order (RuleSystem sorts by priority via ruleschema.New).
	GetInputs(ctx context.Context, name string) ([]ruleschema.Column, error)
	// GetAllRules returns every persisted rule for the named rule system,
	// in any order.
	GetAllRules(ctx context.Context, name string) ([]RawRule, error)
	// SaveRule persists a new rule and returns it with ID populated.
	SaveRule(ctx context.Context, name string, r RawRule) (RawRule, error)
	// DeleteRule removes the rule identified by id. Returns false if no
	// such rule existed.
	DeleteRule(ctx context.Context, name string, id int64) (bool, error)
}
