// Package ruleengine implements the RuleSystem facade: lifecycle, CRUD,
// and query operations over a schema-bound collection of rules, backed by
// a storage port and served from an in-memory cache plus trie index.
package ruleengine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ruleforge/ruleengine/internal/telemetry"
	"github.com/ruleforge/ruleengine/internal/trie"
	"github.com/ruleforge/ruleengine/rule"
	"github.com/ruleforge/ruleengine/ruleschema"
)

// snapshot is the copy-on-write unit readers observe atomically: either
// the pre- or post-admission state, never a torn intermediate.
type snapshot struct {
	rules []*rule.Rule
	trie  *trie.Node
}

// RuleSystem is the facade: lifecycle, CRUD, query operations, and
// conflict checking over one named rule system.
type RuleSystem struct {
	name       string
	schema     *ruleschema.Schema
	validator  rule.Validator
	store      RuleStore
	comparator *rule.Comparator
	logger     *slog.Logger
	metrics    *telemetry.Metrics
	tracer     trace.Tracer

	writeMu sync.Mutex
	snap    atomic.Pointer[snapshot]
}

// Option configures a RuleSystem at construction time.
type Option func(*RuleSystem)

// WithValidator overrides the default admission validator.
func WithValidator(v rule.Validator) Option {
	return func(rs *RuleSystem) { rs.validator = v }
}

// WithLogger overrides the default slog.Logger (slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(rs *RuleSystem) { rs.logger = l }
}

// WithMetricsRegisterer registers this RuleSystem's metrics against reg
// instead of a private, unregistered registry.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(rs *RuleSystem) { rs.metrics = telemetry.NewMetrics(reg) }
}

// WithTracerProvider overrides the default OpenTelemetry tracer provider
// (the global otel provider, a no-op unless the host has set one) used to
// emit per-operation spans.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(rs *RuleSystem) { rs.tracer = telemetry.Tracer(provider) }
}

// New constructs a RuleSystem named name, loading its schema and rules
// from store. Initialization errors (unreachable store, malformed schema)
// are fatal: New returns an error and no usable instance.
func New(ctx context.Context, name string, store RuleStore, opts ...Option) (*RuleSystem, error) {
	rs := &RuleSystem{
		name:      name,
		validator: rule.NewDefaultValidator(),
		store:     store,
		logger:    slog.Default(),
		metrics:   telemetry.NewMetrics(prometheus.NewRegistry()),
		tracer:    telemetry.Tracer(nil),
	}
	for _, opt := range opts {
		opt(rs)
	}

	ctx, span := telemetry.StartSpan(ctx, rs.tracer, "New", trace.WithAttributes(attribute.String("rule_system.name", name)))
	defer span.End()

	ok, err := store.IsValid(ctx, name)
	if err != nil {
		return nil, fail(span, fmt.Errorf("rulesystem %q: %w: %v", name, rule.ErrStorageUnavailable, err))
	}
	if !ok {
		return nil, fail(span, fmt.Errorf("rulesystem %q: %w", name, rule.ErrStorageUnavailable))
	}

	columns, err := store.GetInputs(ctx, name)
	if err != nil {
		return nil, fail(span, fmt.Errorf("rulesystem %q: %w: %v", name, rule.ErrStorageUnavailable, err))
	}
	if err := rule.ValidateSchema(columns); err != nil {
		return nil, fail(span, err)
	}
	schema, err := ruleschema.New(columns)
	if err != nil {
		return nil, fail(span, err)
	}
	rs.schema = schema
	rs.comparator = rule.NewComparator(columnNames(schema))

	rawRules, err := store.GetAllRules(ctx, name)
	if err != nil {
		return nil, fail(span, fmt.Errorf("rulesystem %q: %w: %v", name, rule.ErrStorageUnavailable, err))
	}

	rules := make([]*rule.Rule, 0, len(rawRules))
	for _, raw := range rawRules {
		r, err := rule.New(schema, raw.Values)
		if err != nil {
			rs.logger.Warn("rulesystem: skipping unparsable persisted rule", "rule_system", name, "error", err)
			continue
		}
		if raw.ID != nil {
			r = r.WithID(*raw.ID)
		}
		if !rs.validator.IsValid(r) {
			rs.logger.Warn("rulesystem: skipping rule rejected by validator on load", "rule_system", name, "rule_id", r.IDString())
			continue
		}
		rules = append(rules, r)
	}

	rs.snap.Store(&snapshot{rules: rules, trie: trie.Build(columnNames(schema), rules)})
	rs.metrics.AdmittedRulesGauge.Set(float64(len(rules)))

	rs.logger.Info("rulesystem initialized", "rule_system", name, "columns", schema.Len(), "rules", len(rules))
	return rs, nil
}

func columnNames(schema *ruleschema.Schema) []string {
	cols := schema.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Schema returns the rule system's declared column schema.
func (rs *RuleSystem) Schema() *ruleschema.Schema { return rs.schema }

// GetAllRules returns a snapshot of admitted rules. Order is unspecified.
func (rs *RuleSystem) GetAllRules(ctx context.Context) []*rule.Rule {
	_, span := telemetry.StartSpan(ctx, rs.tracer, "GetAllRules")
	defer span.End()

	snap := rs.snap.Load()
	out := make([]*rule.Rule, len(snap.rules))
	copy(out, snap.rules)
	return out
}

// GetRuleByID returns the rule with the given id, or nil if absent or id
// is nil.
func (rs *RuleSystem) GetRuleByID(ctx context.Context, id *int64) *rule.Rule {
	_, span := telemetry.StartSpan(ctx, rs.tracer, "GetRuleByID")
	defer span.End()

	if id == nil {
		return nil
	}
	snap := rs.snap.Load()
	for _, r := range snap.rules {
		if r.ID() != nil && *r.ID() == *id {
			return r
		}
	}
	return nil
}

// GetRuleByInputs returns the top-priority eligible rule for request, or
// nil when no rule evaluates true or request is nil.
func (rs *RuleSystem) GetRuleByInputs(ctx context.Context, request map[string]string) *rule.Rule {
	ctx, span := telemetry.StartSpan(ctx, rs.tracer, "GetRuleByInputs")
	defer span.End()

	if request == nil {
		rs.metrics.QueriesTotal.WithLabelValues("miss").Inc()
		return nil
	}

	start := time.Now()
	eligible := rs.eligibleRules(ctx, request)
	rs.metrics.QueryDuration.Observe(time.Since(start).Seconds())

	if len(eligible) == 0 {
		rs.metrics.QueriesTotal.WithLabelValues("miss").Inc()
		return nil
	}
	rs.metrics.QueriesTotal.WithLabelValues("hit").Inc()
	return eligible[0]
}

// GetNextApplicableRule returns the second-ranked eligible rule, but only
// when at least three rules are eligible. The evident intent reads as
// "return the next-best if a second one exists" (>= 2 eligible), but this
// keeps the stricter threshold (> 2, i.e. >= 3) rather than loosening it.
func (rs *RuleSystem) GetNextApplicableRule(ctx context.Context, request map[string]string) *rule.Rule {
	ctx, span := telemetry.StartSpan(ctx, rs.tracer, "GetNextApplicableRule")
	defer span.End()

	if request == nil {
		return nil
	}
	eligible := rs.eligibleRules(ctx, request)
	if len(eligible) <= 2 {
		return nil
	}
	return eligible[1]
}

// eligibleRules returns every admitted rule matching request, ranked best
// first, by querying the trie and sorting the collected set.
func (rs *RuleSystem) eligibleRules(ctx context.Context, request map[string]string) []*rule.Rule {
	_, span := telemetry.StartSpan(ctx, rs.tracer, "eligibleRules")
	defer span.End()

	snap := rs.snap.Load()
	eligible := trie.Query(snap.trie, columnNames(rs.schema), request)
	rs.comparator.Sort(eligible)
	return eligible
}

// GetConflictingRules returns every admitted rule that conflicts with r,
// via a linear scan (conflict detection is defined over the full admitted
// set, not a single request's literal/Any trie branches).
func (rs *RuleSystem) GetConflictingRules(ctx context.Context, r *rule.Rule) []*rule.Rule {
	_, span := telemetry.StartSpan(ctx, rs.tracer, "GetConflictingRules")
	defer span.End()

	snap := rs.snap.Load()
	var conflicts []*rule.Rule
	for _, existing := range snap.rules {
		if existing.IsConflicting(r) {
			conflicts = append(conflicts, existing)
		}
	}
	return conflicts
}

// AddRuleFromValues constructs a Rule from raw column values and admits it.
func (rs *RuleSystem) AddRuleFromValues(ctx context.Context, raw map[string]string) (*rule.Rule, error) {
	r, err := rule.New(rs.schema, raw)
	if err != nil {
		return nil, err
	}
	return rs.AddRule(ctx, r)
}

// AddRule validates r, checks it for conflicts against the current
// admitted set, persists it via the storage port, and on success appends
// it to the cache and rebuilds the trie. Returns nil (no error) when the
// validator rejects r: validator rejection is silent rather than an error.
// Returns a *rule.ConflictError when r conflicts with one or more admitted
// rules.
func (rs *RuleSystem) AddRule(ctx context.Context, r *rule.Rule) (*rule.Rule, error) {
	opID := uuid.New().String()
	ctx, span := telemetry.StartSpan(ctx, rs.tracer, "AddRule", trace.WithAttributes(attribute.String("rule_engine.op_id", opID)))
	defer span.End()

	if r.OutputID() == "" {
		err := fmt.Errorf("rulesystem %q: %w: rule_output_id is required", rs.name, rule.ErrInvalidRule)
		return nil, fail(span, err)
	}

	if !rs.validator.IsValid(r) {
		rs.logger.Debug("rulesystem: candidate rule rejected by validator", "op_id", opID, "rule_system", rs.name)
		return nil, nil
	}

	rs.writeMu.Lock()
	defer rs.writeMu.Unlock()

	conflicts := rs.GetConflictingRules(ctx, r)
	if len(conflicts) > 0 {
		rs.metrics.ConflictsTotal.Inc()
		err := &rule.ConflictError{Candidate: r, Conflicts: conflicts}
		return nil, fail(span, err)
	}

	saved, err := rs.store.SaveRule(ctx, rs.name, toRawRule(r))
	if err != nil {
		return nil, fail(span, fmt.Errorf("rulesystem %q: %w: %v", rs.name, rule.ErrStorageUnavailable, err))
	}
	persisted, err := rule.New(rs.schema, saved.Values)
	if err != nil {
		return nil, fail(span, fmt.Errorf("rulesystem %q: %w: %v", rs.name, rule.ErrStorageUnavailable, err))
	}
	if saved.ID != nil {
		persisted = persisted.WithID(*saved.ID)
	}

	rs.publish(func(rules []*rule.Rule) []*rule.Rule {
		return append(rules, persisted)
	})

	rs.metrics.RulesAddedTotal.Inc()
	rs.logger.Info("rule added", "op_id", opID, "rule_system", rs.name, "rule_id", persisted.IDString())
	return persisted, nil
}

// DeleteRuleByID deletes the rule with the given id. Returns false for a
// nil id, a storage failure, or an id that does not match any admitted
// rule.
func (rs *RuleSystem) DeleteRuleByID(ctx context.Context, id *int64) bool {
	ctx, span := telemetry.StartSpan(ctx, rs.tracer, "DeleteRuleByID")
	defer span.End()

	if id == nil {
		return false
	}

	rs.writeMu.Lock()
	defer rs.writeMu.Unlock()

	ok, err := rs.store.DeleteRule(ctx, rs.name, *id)
	if err != nil || !ok {
		if err != nil {
			span.RecordError(err)
		}
		return false
	}

	removed := false
	rs.publish(func(rules []*rule.Rule) []*rule.Rule {
		out := make([]*rule.Rule, 0, len(rules))
		for _, r := range rules {
			if r.ID() != nil && *r.ID() == *id {
				removed = true
				continue
			}
			out = append(out, r)
		}
		return out
	})

	if removed {
		rs.metrics.RulesDeletedTotal.Inc()
		rs.logger.Info("rule deleted", "rule_system", rs.name, "rule_id", *id)
	}
	return removed
}

// DeleteRule deletes r by its ID. Returns false if r has no ID.
func (rs *RuleSystem) DeleteRule(ctx context.Context, r *rule.Rule) bool {
	if r == nil {
		return false
	}
	return rs.DeleteRuleByID(ctx, r.ID())
}

// publish replaces the current snapshot with one produced by applying
// mutate to the current rule slice, rebuilding the trie to match. Callers
// must hold writeMu.
func (rs *RuleSystem) publish(mutate func([]*rule.Rule) []*rule.Rule) {
	cur := rs.snap.Load()
	next := mutate(append([]*rule.Rule(nil), cur.rules...))
	rs.snap.Store(&snapshot{rules: next, trie: trie.Build(columnNames(rs.schema), next)})
	rs.metrics.AdmittedRulesGauge.Set(float64(len(next)))
}

func toRawRule(r *rule.Rule) RawRule {
	values := make(map[string]string, r.Schema().Len()+1)
	values[ruleschema.ColumnRuleOutputID] = r.OutputID()
	for _, col := range r.Schema().Columns() {
		if v, ok := r.ColumnData(col.Name); ok {
			values[col.Name] = v.String()
		}
	}
	var id *int64
	if r.ID() != nil {
		id = r.ID()
	}
	return RawRule{ID: id, Values: values}
}
