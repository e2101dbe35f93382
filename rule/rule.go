package rule

import (
	"fmt"
	"strconv"

	"github.com/ruleforge/ruleengine/ruleinput"
	"github.com/ruleforge/ruleengine/ruleschema"
)

// Rule is an immutable mapping from each of a schema's declared columns to
// exactly one RuleInput, plus a RuleID (nil until persisted) and a
// required, non-empty RuleOutputID.
type Rule struct {
	schema   *ruleschema.Schema
	id       *int64
	outputID string
	inputs   map[string]ruleinput.RuleInput
}

// New constructs a Rule from a schema and a set of raw column values keyed
// by column name. A missing or empty raw value parses to Any for that
// column. The reserved rule_output_id key supplies RuleOutputID and is not
// parsed as a column.
func New(schema *ruleschema.Schema, raw map[string]string) (*Rule, error) {
	outputID := raw[ruleschema.ColumnRuleOutputID]
	if outputID == "" {
		return nil, fmt.Errorf("rule: %w: %s is required", ErrInvalidRule, ruleschema.ColumnRuleOutputID)
	}

	columns := schema.Columns()
	inputs := make(map[string]ruleinput.RuleInput, len(columns))
	for _, col := range columns {
		parsed, err := ruleinput.Parse(col, raw[col.Name])
		if err != nil {
			return nil, fmt.Errorf("rule: %w: column %q: %v", ErrInvalidRule, col.Name, err)
		}
		inputs[col.Name] = parsed
	}

	var id *int64
	if rawID := raw[ruleschema.ColumnRuleID]; rawID != "" {
		parsedID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("rule: %w: rule_id %q is not an integer", ErrInvalidRule, rawID)
		}
		id = &parsedID
	}

	return &Rule{schema: schema, id: id, outputID: outputID, inputs: inputs}, nil
}

// WithID returns a copy of r with its RuleID set. Used by the storage port
// to hand back a persisted rule carrying its assigned id, without mutating
// the caller's original (Rule is otherwise immutable post-construction).
func (r *Rule) WithID(id int64) *Rule {
	clone := *r
	clone.id = &id
	return &clone
}

// ID returns the rule's assigned identifier, or nil if not yet persisted.
func (r *Rule) ID() *int64 { return r.id }

// IDString renders the rule's id for display, or "<unpersisted>" if absent.
func (r *Rule) IDString() string {
	if r.id == nil {
		return "<unpersisted>"
	}
	return strconv.FormatInt(*r.id, 10)
}

// OutputID returns the rule's non-empty output identifier.
func (r *Rule) OutputID() string { return r.outputID }

// Schema returns the schema this rule was constructed against.
func (r *Rule) Schema() *ruleschema.Schema { return r.schema }

// ColumnData returns the RuleInput stored for name. Total on declared
// columns; the second return value is false for any other name.
func (r *Rule) ColumnData(name string) (ruleinput.RuleInput, bool) {
	v, ok := r.inputs[name]
	return v, ok
}

// Evaluate reports whether every declared column's RuleInput satisfies the
// corresponding value in request. A column absent from request is treated
// as the empty string, which only an Any-valued column will satisfy.
func (r *Rule) Evaluate(request map[string]string) bool {
	if request == nil {
		return false
	}
	for _, col := range r.schema.Columns() {
		if !r.inputs[col.Name].Satisfies(request[col.Name]) {
			return false
		}
	}
	return true
}

// IsConflicting reports whether r and other overlap on every declared
// column. The relation is symmetric.
func (r *Rule) IsConflicting(other *Rule) bool {
	for _, col := range r.schema.Columns() {
		if !r.inputs[col.Name].Overlaps(other.inputs[col.Name]) {
			return false
		}
	}
	return true
}
