package ruleengine

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/goleak"

	"github.com/ruleforge/ruleengine/memstore"
	"github.com/ruleforge/ruleengine/rule"
	"github.com/ruleforge/ruleengine/ruleschema"
)

func newTestStore(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	s.Seed("pricing",
		[]ruleschema.Column{
			{Name: "region", Priority: 1, DataType: ruleschema.DataTypeString},
			{Name: "quantity", Priority: 2, DataType: ruleschema.DataTypeNumericRange},
		},
		nil,
	)
	return s
}

func TestNew_UnknownRuleSystem(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	_, err := New(context.Background(), "missing", store)
	if !errors.Is(err, rule.ErrStorageUnavailable) {
		t.Errorf("error = %v, want ErrStorageUnavailable", err)
	}
}

func TestNew_LoadsExistingRules(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	_, err := store.SaveRule(context.Background(), "pricing", RawRule{
		Values: map[string]string{"rule_output_id": "discount-10", "region": "us-east"},
	})
	if err != nil {
		t.Fatalf("SaveRule() unexpected error: %v", err)
	}

	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if len(rs.GetAllRules(context.Background())) != 1 {
		t.Errorf("GetAllRules() = %v, want 1 rule loaded at construction", rs.GetAllRules(context.Background()))
	}
}

func TestNew_SkipsUnparsableRuleRatherThanFailing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.SaveRule(context.Background(), "pricing", RawRule{
		Values: map[string]string{"rule_output_id": "bad", "quantity": "not-a-range"},
	}); err != nil {
		t.Fatalf("SaveRule() unexpected error: %v", err)
	}

	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if len(rs.GetAllRules(context.Background())) != 0 {
		t.Error("unparsable persisted rule should be skipped, not fatal")
	}
}

func TestGetRuleByID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	added, err := rs.AddRuleFromValues(context.Background(), map[string]string{"rule_output_id": "x", "region": "us-east"})
	if err != nil {
		t.Fatalf("AddRuleFromValues() unexpected error: %v", err)
	}

	if got := rs.GetRuleByID(context.Background(), added.ID()); got != added {
		t.Errorf("GetRuleByID() = %v, want %v", got, added)
	}
	if rs.GetRuleByID(context.Background(), nil) != nil {
		t.Error("GetRuleByID(nil) should be nil")
	}
	missing := int64(99999)
	if rs.GetRuleByID(context.Background(), &missing) != nil {
		t.Error("GetRuleByID(unknown id) should be nil")
	}
}

func TestGetRuleByInputs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	literal, err := rs.AddRuleFromValues(context.Background(), map[string]string{"rule_output_id": "literal", "region": "us-east"})
	if err != nil {
		t.Fatalf("AddRuleFromValues() unexpected error: %v", err)
	}
	if _, err := rs.AddRuleFromValues(context.Background(), map[string]string{"rule_output_id": "wildcard", "region": "us-west"}); err != nil {
		t.Fatalf("AddRuleFromValues() unexpected error: %v", err)
	}

	got := rs.GetRuleByInputs(context.Background(), map[string]string{"region": "us-east"})
	if got != literal {
		t.Errorf("GetRuleByInputs() = %v, want %v", got, literal)
	}

	if rs.GetRuleByInputs(context.Background(), nil) != nil {
		t.Error("GetRuleByInputs(nil) should be nil")
	}
	if rs.GetRuleByInputs(context.Background(), map[string]string{"region": "eu-central"}) != nil {
		t.Error("GetRuleByInputs() for a non-matching request should be nil")
	}
}

func TestGetNextApplicableRule_RequiresThreeEligible(t *testing.T) {
	t.Parallel()

	// AddRule's conflict check forbids admitting mutually overlapping
	// rules, so a set of rules all eligible for one request is seeded
	// directly into the store (as if persisted by some other process),
	// bypassing that check the way New's initial load does.
	store := memstore.New()
	store.Seed("pricing",
		[]ruleschema.Column{
			{Name: "region", Priority: 1, DataType: ruleschema.DataTypeString},
			{Name: "quantity", Priority: 2, DataType: ruleschema.DataTypeNumericRange},
		},
		nil,
	)

	seedRule := func(outputID string) {
		if _, err := store.SaveRule(context.Background(), "pricing", RawRule{
			Values: map[string]string{"rule_output_id": outputID, "quantity": "1..100"},
		}); err != nil {
			t.Fatalf("SaveRule() unexpected error: %v", err)
		}
	}

	request := map[string]string{"region": "us-east", "quantity": "50"}

	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if rs.GetNextApplicableRule(context.Background(), request) != nil {
		t.Error("GetNextApplicableRule() with zero eligible should be nil")
	}

	seedRule("a")
	rs, err = New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if rs.GetNextApplicableRule(context.Background(), request) != nil {
		t.Error("GetNextApplicableRule() with one eligible should be nil")
	}

	seedRule("b")
	rs, err = New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if rs.GetNextApplicableRule(context.Background(), request) != nil {
		t.Error("GetNextApplicableRule() with two eligible should be nil (documented threshold)")
	}

	seedRule("c")
	rs, err = New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	got := rs.GetNextApplicableRule(context.Background(), request)
	if got == nil {
		t.Fatal("GetNextApplicableRule() with three eligible should return a rule")
	}
}

func TestAddRule_MissingOutputID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	_, err = rs.AddRuleFromValues(context.Background(), map[string]string{"region": "us-east"})
	if !errors.Is(err, rule.ErrInvalidRule) {
		t.Errorf("error = %v, want ErrInvalidRule", err)
	}
}

func TestAddRule_Conflict(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	if _, err := rs.AddRuleFromValues(context.Background(), map[string]string{"rule_output_id": "a", "region": "us-east", "quantity": "1..10"}); err != nil {
		t.Fatalf("AddRuleFromValues() unexpected error: %v", err)
	}

	_, err = rs.AddRuleFromValues(context.Background(), map[string]string{"rule_output_id": "b", "region": "us-east", "quantity": "5..15"})
	var conflictErr *rule.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("error = %v, want *rule.ConflictError", err)
	}
	if !errors.Is(err, rule.ErrConflict) {
		t.Error("conflict error should unwrap to rule.ErrConflict")
	}
}

func TestAddRule_ValidatorRejectionIsSilent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	rs, err := New(context.Background(), "pricing", store, WithValidator(rejectAllValidator{}))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	got, err := rs.AddRuleFromValues(context.Background(), map[string]string{"rule_output_id": "a"})
	if got != nil || err != nil {
		t.Errorf("AddRuleFromValues() = %v, %v, want nil, nil for validator rejection", got, err)
	}
	if len(rs.GetAllRules(context.Background())) != 0 {
		t.Error("rejected rule should not be admitted")
	}
}

type rejectAllValidator struct{}

func (rejectAllValidator) IsValid(*rule.Rule) bool { return false }

func TestDeleteRuleByID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	added, err := rs.AddRuleFromValues(context.Background(), map[string]string{"rule_output_id": "a"})
	if err != nil {
		t.Fatalf("AddRuleFromValues() unexpected error: %v", err)
	}

	if !rs.DeleteRuleByID(context.Background(), added.ID()) {
		t.Error("DeleteRuleByID() = false, want true")
	}
	if rs.GetRuleByID(context.Background(), added.ID()) != nil {
		t.Error("rule should be gone after deletion")
	}
	if rs.DeleteRuleByID(context.Background(), added.ID()) {
		t.Error("deleting an already-deleted id should return false")
	}
	if rs.DeleteRuleByID(context.Background(), nil) {
		t.Error("DeleteRuleByID(nil) should return false")
	}
}

func TestDeleteRule_DelegatesToID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	added, err := rs.AddRuleFromValues(context.Background(), map[string]string{"rule_output_id": "a"})
	if err != nil {
		t.Fatalf("AddRuleFromValues() unexpected error: %v", err)
	}

	if !rs.DeleteRule(context.Background(), added) {
		t.Error("DeleteRule() = false, want true")
	}
	if rs.DeleteRule(context.Background(), nil) {
		t.Error("DeleteRule(nil) should return false")
	}
}

func TestGetConflictingRules(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	existing, err := rs.AddRuleFromValues(context.Background(), map[string]string{"rule_output_id": "a", "region": "us-east"})
	if err != nil {
		t.Fatalf("AddRuleFromValues() unexpected error: %v", err)
	}

	candidate, err := rule.New(rs.Schema(), map[string]string{"rule_output_id": "b", "region": "us-east"})
	if err != nil {
		t.Fatalf("rule.New() unexpected error: %v", err)
	}

	conflicts := rs.GetConflictingRules(context.Background(), candidate)
	if len(conflicts) != 1 || conflicts[0] != existing {
		t.Errorf("GetConflictingRules() = %v, want [%v]", conflicts, existing)
	}
}

func TestConcurrentReadersAndWriter_NoLeaks(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := newTestStore(t)
	rs, err := New(context.Background(), "pricing", store)
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_, _ = rs.AddRuleFromValues(context.Background(), map[string]string{
				"rule_output_id": "r",
				"region":         "region-" + string(rune('a'+i%26)),
			})
		}
	}()

	for i := 0; i < 50; i++ {
		rs.GetRuleByInputs(context.Background(), map[string]string{"region": "region-a"})
		rs.GetAllRules(context.Background())
	}
	<-done
}
