// Package fixture loads YAML-encoded schema and rule fixtures, for seeding
// a memstore.Store in tests and local bring-up without hand-writing Go
// literals for every column and rule.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ruleforge/ruleengine/ruleengine"
	"github.com/ruleforge/ruleengine/ruleschema"
)

// Document is the on-disk shape of a fixture file: one named rule system,
// its column schema, and its initial rule set.
type Document struct {
	Name    string              `yaml:"name"`
	Columns []ruleschema.Column `yaml:"columns"`
	Rules   []map[string]string `yaml:"rules"`
}

// Load parses a fixture document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixture: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a fixture document from raw YAML bytes.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fixture: unmarshal: %w", err)
	}
	return &doc, nil
}

// RawRules converts the fixture's rule rows to ruleengine.RawRule values,
// in document order, with unassigned ids (a seeding store assigns them).
func (d *Document) RawRules() []ruleengine.RawRule {
	rules := make([]ruleengine.RawRule, len(d.Rules))
	for i, values := range d.Rules {
		rules[i] = ruleengine.RawRule{Values: values}
	}
	return rules
}
