// Package ruleinput implements the RuleInput value: a column-bound literal,
// numeric range, or the Any wildcard, together with the satisfy/overlap/
// equality/hash capability set the trie and comparator build on.
package ruleinput

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Kind tags which variant a RuleInput holds.
type Kind uint8

const (
	// KindAny is the wildcard: it satisfies and overlaps everything.
	KindAny Kind = iota
	// KindValue holds a literal string compared by byte equality.
	KindValue
	// KindRange holds an inclusive numeric interval [Lower, Upper].
	KindRange
)

// RuleInput is an immutable, comparable column value. The zero value is not
// meaningful; construct with Any, NewValue, or NewRange.
//
// RuleInput is comparable (all fields are comparable types) so it can be
// used directly as a Go map key — the trie keys its children this way.
// Equals and Hash are still exposed explicitly because the edge-key
// contract in the trie is a semantic one (tag + payload), not "whatever
// Go's == happens to do", and Hash must stay consistent with it.
type RuleInput struct {
	column  string
	kind    Kind
	literal string
	lower   float64
	upper   float64
}

// Any returns the wildcard RuleInput for column.
func Any(column string) RuleInput {
	return RuleInput{column: column, kind: KindAny}
}

// NewValue returns a literal-value RuleInput. An empty literal is
// equivalent to Any, matching the "empty string is Any" encoding from the
// wire/storage representation.
func NewValue(column, literal string) RuleInput {
	if literal == "" {
		return Any(column)
	}
	return RuleInput{column: column, kind: KindValue, literal: literal}
}

// NewRange returns a range RuleInput covering [lower, upper] inclusive.
// Returns an error if lower > upper.
func NewRange(column string, lower, upper float64) (RuleInput, error) {
	if lower > upper {
		return RuleInput{}, fmt.Errorf("ruleinput: %w: lower %v > upper %v", ErrInvalidRange, lower, upper)
	}
	return RuleInput{column: column, kind: KindRange, lower: lower, upper: upper}, nil
}

// Column returns the name of the column this input is bound to.
func (r RuleInput) Column() string { return r.column }

// IsAny reports whether r is the wildcard.
func (r RuleInput) IsAny() bool { return r.kind == KindAny }

// Kind returns the variant tag.
func (r RuleInput) Kind() Kind { return r.kind }

// Satisfies reports whether r matches a concrete request value for its
// column. Any satisfies anything, including a missing/empty request value.
func (r RuleInput) Satisfies(requestValue string) bool {
	switch r.kind {
	case KindAny:
		return true
	case KindValue:
		return r.literal == requestValue
	case KindRange:
		v, err := strconv.ParseFloat(requestValue, 64)
		if err != nil {
			return false
		}
		return v >= r.lower && v <= r.upper
	default:
		return false
	}
}

// Overlaps reports whether r and other could both satisfy some common
// request value for the same column. Value-Value overlap is equality or
// either being Any; Range-Range overlap is non-empty intersection or
// either being Any. Overlaps must never be used as a map/trie key — it is
// a broader relation than Equals, and collapsing the two would make the
// trie merge rules that do not actually share an edge.
func (r RuleInput) Overlaps(other RuleInput) bool {
	if r.kind == KindAny || other.kind == KindAny {
		return true
	}
	switch {
	case r.kind == KindValue && other.kind == KindValue:
		return r.literal == other.literal
	case r.kind == KindRange && other.kind == KindRange:
		return r.lower <= other.upper && other.lower <= r.upper
	default:
		// Value vs Range in the same column is not produced by construction
		// (a column has one DataType), so no overlap is defined.
		return false
	}
}

// Equals reports whether r and other have the same tag and payload. This is
// the relation used for trie edge keys — Go's built-in == on two RuleInput
// values computes exactly this, since every field is comparable.
func (r RuleInput) Equals(other RuleInput) bool {
	return r == other
}

// Hash returns a hash over (column, kind, payload) consistent with Equals:
// r.Equals(other) implies r.Hash() == other.Hash(). It is a bucket key for
// callers outside this module; the trie does not call it and keys its
// children by the comparable RuleInput value itself.
func (r RuleInput) Hash() uint64 {
	var b strings.Builder
	b.Grow(len(r.column) + len(r.literal) + 40)
	b.WriteString(r.column)
	b.WriteByte(0)
	switch r.kind {
	case KindAny:
		b.WriteByte('A')
	case KindValue:
		b.WriteByte('V')
		b.WriteByte(0)
		b.WriteString(r.literal)
	case KindRange:
		b.WriteByte('R')
		b.WriteByte(0)
		// Adding 0 turns -0 into 0, which == (and so Equals) treats as equal.
		fmt.Fprintf(&b, "%g:%g", r.lower+0, r.upper+0)
	}
	return xxhash.Sum64String(b.String())
}

// String returns a canonical string form used for display and as the
// tie-break key in the priority comparator when two eligible, non-Any
// inputs differ without either being Any (only possible for two distinct
// but overlapping ranges).
func (r RuleInput) String() string {
	switch r.kind {
	case KindAny:
		return ""
	case KindValue:
		return r.literal
	case KindRange:
		return fmt.Sprintf("%g..%g", r.lower, r.upper)
	default:
		return ""
	}
}

// Bounds returns the inclusive range bounds. Only meaningful when
// Kind() == KindRange.
func (r RuleInput) Bounds() (lower, upper float64) { return r.lower, r.upper }
