// Package trie implements the column-priority prefix index (RSNode) over
// admitted rules. A root-to-leaf path spells one rule's column-ordered
// RuleInputs; sibling choice at depth k corresponds to the schema's k-th
// highest-priority column.
package trie

import (
	"github.com/ruleforge/ruleengine/ruleinput"
	"github.com/ruleforge/ruleengine/rule"
)

// Node is one level of the trie (RSNode). RuleInput is comparable, so it
// is used directly as the child map key: two RuleInputs that Equals()
// report equal hash to the same map bucket by construction, since Go's ==
// on a RuleInput computes exactly the tag+payload comparison Equals
// defines. Overlaps is a broader relation and is never used here.
type Node struct {
	children  map[ruleinput.RuleInput]*Node
	terminals []*rule.Rule
}

func newNode() *Node {
	return &Node{children: make(map[ruleinput.RuleInput]*Node)}
}

// New returns an empty trie root.
func New() *Node {
	return newNode()
}

// Build constructs a fresh trie over rules, inserting each one in schema
// priority-column order. Rules is not mutated; the returned root is a new
// tree, suitable for the copy-on-write replacement the RuleSystem facade
// performs on every write.
func Build(columns []string, rules []*rule.Rule) *Node {
	root := newNode()
	for _, r := range rules {
		root.insert(columns, r)
	}
	return root
}

// insert walks (creating nodes as needed) the path spelled by r's
// RuleInputs in column order, attaching r at the terminal node. If an
// equal-keyed child already exists at a level, it is reused rather than
// shadowed by a fresh one. Rules with identical inputs on every column
// share one terminal node, and each of them is kept there.
func (n *Node) insert(columns []string, r *rule.Rule) {
	cur := n
	for _, col := range columns {
		input, _ := r.ColumnData(col)
		child, ok := cur.children[input]
		if !ok {
			child = newNode()
			cur.children[input] = child
		}
		cur = child
	}
	cur.terminals = append(cur.terminals, r)
}

// Query traverses the trie for a request, exploring both the exact-literal
// child and the Any child at every level (when present), and returns every
// terminal rule reachable — i.e. the full eligible set for request. The
// caller ranks the result with a rule.Comparator.
func Query(root *Node, columns []string, request map[string]string) []*rule.Rule {
	var out []*rule.Rule
	root.collect(columns, request, &out)
	return out
}

func (n *Node) collect(columns []string, request map[string]string, out *[]*rule.Rule) {
	if len(columns) == 0 {
		*out = append(*out, n.terminals...)
		return
	}

	col := columns[0]
	rest := columns[1:]
	requestValue := request[col]

	// Exact-literal key: O(1) map lookup, the trie's fast path for
	// string-typed columns. Skipped when requestValue is empty, since
	// ruleinput.NewValue collapses an empty literal to Any, which would
	// otherwise collect the Any child twice (once here, once below).
	if requestValue != "" {
		if child, ok := n.children[ruleinput.NewValue(col, requestValue)]; ok {
			child.collect(rest, request, out)
		}
	}
	// Any child: O(1) map lookup.
	if child, ok := n.children[ruleinput.Any(col)]; ok {
		child.collect(rest, request, out)
	}
	// Range children can't be keyed by the request's literal value, so
	// they still require a scan; this only runs for numeric-range columns,
	// where the admitted-rule fan-out at one node is typically small.
	for key, child := range n.children {
		if key.Kind() == ruleinput.KindRange && key.Satisfies(requestValue) {
			child.collect(rest, request, out)
		}
	}
}
