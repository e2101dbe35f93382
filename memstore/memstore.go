// Package memstore provides an in-memory implementation of
// ruleengine.RuleStore: a swap-in test double that is thread-safe and
// suitable for unit tests and local development, but not a substitute for
// a durable backend.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ruleforge/ruleengine/ruleengine"
	"github.com/ruleforge/ruleengine/ruleschema"
)

// Store is an in-memory RuleStore keyed by rule-system name: lock, copy on
// read, copy on write.
type Store struct {
	mu      sync.RWMutex
	schemas map[string][]ruleschema.Column
	rules   map[string]map[int64]ruleengine.RawRule
	nextID  map[string]int64
}

// New returns an empty Store. Use Seed to register a named rule system's
// schema and initial rules before constructing a ruleengine.RuleSystem
// against it.
func New() *Store {
	return &Store{
		schemas: make(map[string][]ruleschema.Column),
		rules:   make(map[string]map[int64]ruleengine.RawRule),
		nextID:  make(map[string]int64),
	}
}

// Seed registers name's schema and initial rule set, assigning sequential
// ids to any rule whose ID is nil. Intended for test setup, not concurrent
// use alongside the RuleStore methods.
func (s *Store) Seed(name string, columns []ruleschema.Column, rules []ruleengine.RawRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schemas[name] = append([]ruleschema.Column(nil), columns...)
	byID := make(map[int64]ruleengine.RawRule, len(rules))
	var next int64 = 1
	for _, r := range rules {
		id := next
		if r.ID != nil {
			id = *r.ID
		}
		if id >= next {
			next = id + 1
		}
		rr := r
		rr.ID = idPtr(id)
		byID[id] = rr
	}
	s.rules[name] = byID
	s.nextID[name] = next
}

// IsValid implements ruleengine.RuleStore.
func (s *Store) IsValid(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.schemas[name]
	return ok, nil
}

// GetInputs implements ruleengine.RuleStore.
func (s *Store) GetInputs(_ context.Context, name string) ([]ruleschema.Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cols, ok := s.schemas[name]
	if !ok {
		return nil, fmt.Errorf("memstore: no such rule system %q", name)
	}
	return append([]ruleschema.Column(nil), cols...), nil
}

// GetAllRules implements ruleengine.RuleStore.
func (s *Store) GetAllRules(_ context.Context, name string) ([]ruleengine.RawRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ruleengine.RawRule, 0, len(s.rules[name]))
	for _, r := range s.rules[name] {
		out = append(out, copyRawRule(r))
	}
	return out, nil
}

// SaveRule implements ruleengine.RuleStore.
func (s *Store) SaveRule(_ context.Context, name string, r ruleengine.RawRule) (ruleengine.RawRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schemas[name]; !ok {
		return ruleengine.RawRule{}, fmt.Errorf("memstore: no such rule system %q", name)
	}
	if s.rules[name] == nil {
		s.rules[name] = make(map[int64]ruleengine.RawRule)
	}

	id := s.nextID[name]
	if id == 0 {
		id = 1
	}
	s.nextID[name] = id + 1

	saved := copyRawRule(r)
	saved.ID = idPtr(id)
	s.rules[name][id] = saved
	return copyRawRule(saved), nil
}

// DeleteRule implements ruleengine.RuleStore.
func (s *Store) DeleteRule(_ context.Context, name string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules, ok := s.rules[name]
	if !ok {
		return false, nil
	}
	if _, ok := rules[id]; !ok {
		return false, nil
	}
	delete(rules, id)
	return true, nil
}

func copyRawRule(r ruleengine.RawRule) ruleengine.RawRule {
	values := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	var id *int64
	if r.ID != nil {
		id = idPtr(*r.ID)
	}
	return ruleengine.RawRule{ID: id, Values: values}
}

func idPtr(v int64) *int64 { return &v }

// compile-time interface check.
var _ ruleengine.RuleStore = (*Store)(nil)
