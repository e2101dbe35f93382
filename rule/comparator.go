package rule

import "sort"

// Comparator defines a total order over the set of rules that evaluate
// true for a single request (the "eligible" set). It is schema-bound
// because column priority order is the tie-break spine. Applying it to
// rules that have not both been confirmed eligible for the same request
// is undefined and must not be relied on outside this package's callers.
type Comparator struct {
	columns []string
}

// NewComparator builds a Comparator over columns in schema priority order
// (as returned by Schema.Columns()).
func NewComparator(columnNames []string) *Comparator {
	cols := make([]string, len(columnNames))
	copy(cols, columnNames)
	return &Comparator{columns: cols}
}

// Less reports whether a ranks strictly ahead of b: walking columns in
// priority order, at the first column where a and b's stored values
// differ, a wins if its value is non-Any and b's is Any. If both are
// non-Any and differ (only possible for two overlapping, non-identical
// ranges — two eligible Value inputs at the same column must already
// equal the request value, and therefore each other), the tie is broken
// by byte-wise comparison of the inputs' canonical string form, so the
// comparator remains a total order instead of becoming inconsistent
// between calls.
func (c *Comparator) Less(a, b *Rule) bool {
	for _, name := range c.columns {
		av, _ := a.ColumnData(name)
		bv, _ := b.ColumnData(name)

		if av.Equals(bv) {
			continue
		}

		aAny, bAny := av.IsAny(), bv.IsAny()
		switch {
		case aAny && !bAny:
			return false
		case !aAny && bAny:
			return true
		default:
			return av.String() < bv.String()
		}
	}
	return false
}

// Sort orders rules in place from best (index 0) to worst.
func (c *Comparator) Sort(rules []*Rule) {
	sort.SliceStable(rules, func(i, j int) bool { return c.Less(rules[i], rules[j]) })
}
