// Package visit walks and rewrites CSG trees. A Visitor is compiled from
// rules keyed by tree kinds; each item dispatches to the rule registered for
// the most specific kind in its lineage.
package visit

import (
	"fmt"
	"slices"
	"sync"

	"github.com/chazu/csgtree/pkg/tree"
)

// EnterFunc runs before an item's children are visited. Returning false
// skips the children.
type EnterFunc func(it tree.Item, ctx *Context) bool

// LeaveFunc runs after the children were visited and returns the item that
// replaces it. Returning nil deletes the item from its parent.
type LeaveFunc func(it tree.Item, ctx *Context) tree.Item

// Rule binds handlers to one or more kinds. A nil handler behaves like the
// default: enter recurses, leave keeps the item.
type Rule struct {
	Kinds []tree.Kind
	Enter EnterFunc
	Leave LeaveFunc
}

// RuleError reports a malformed rule passed to New.
type RuleError struct {
	Index  int
	Reason string
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("visit: rule %d: %s", e.Index, e.Reason)
}

// Visitor applies compiled rules to trees. It is safe to share between
// goroutines; the trees it produces are new values.
type Visitor struct {
	rules map[tree.Kind]*Rule

	mu       sync.Mutex
	dispatch map[tree.Kind]*Rule
}

// New compiles rules. It fails without side effects when a rule has no
// kinds, no handlers, an unregistered kind, or a kind already claimed by an
// earlier rule.
func New(rules ...Rule) (*Visitor, error) {
	table := make(map[tree.Kind]*Rule)
	for i := range rules {
		r := rules[i]
		if len(r.Kinds) == 0 {
			return nil, &RuleError{Index: i, Reason: "no kinds"}
		}
		if r.Enter == nil && r.Leave == nil {
			return nil, &RuleError{Index: i, Reason: "no handlers"}
		}
		r.Kinds = slices.Clone(r.Kinds)
		for _, k := range r.Kinds {
			if !tree.KnownKind(k) {
				return nil, &RuleError{Index: i, Reason: fmt.Sprintf("unknown kind %q", k)}
			}
			if _, dup := table[k]; dup {
				return nil, &RuleError{Index: i, Reason: fmt.Sprintf("kind %q already has a rule", k)}
			}
			table[k] = &r
		}
	}
	return &Visitor{rules: table, dispatch: make(map[tree.Kind]*Rule)}, nil
}

// MustNew is New for rule sets fixed at compile time. It panics on error.
func MustNew(rules ...Rule) *Visitor {
	v, err := New(rules...)
	if err != nil {
		panic(err)
	}
	return v
}

// ruleFor resolves the rule of the most specific kind in the lineage of it.
// The result is memoized per concrete kind.
func (v *Visitor) ruleFor(it tree.Item) *Rule {
	v.mu.Lock()
	defer v.mu.Unlock()
	k := it.Kind()
	if r, ok := v.dispatch[k]; ok {
		return r
	}
	var found *Rule
	for _, fam := range it.Lineage() {
		if r, ok := v.rules[fam]; ok {
			found = r
			break
		}
	}
	v.dispatch[k] = found
	return found
}

// Run visits root in a fresh context whose base attributes are attrs.
func (v *Visitor) Run(root tree.Item, attrs tree.Attributes) tree.Item {
	return v.Visit(root, NewContext(attrs))
}

// Visit visits it and, when entered, its children. Children for which the
// visit returns nil are dropped; when any child changed identity the node
// is rebuilt with object.Copy.
func (v *Visitor) Visit(it tree.Item, ctx *Context) tree.Item {
	ctx.push(it)
	defer ctx.pop()

	r := v.ruleFor(it)
	recurse := true
	if r != nil && r.Enter != nil {
		recurse = r.Enter(it, ctx)
	}
	if recurse {
		if n, ok := it.(tree.Node); ok {
			it = v.visitChildren(n, ctx)
			ctx.replaceTop(it)
		}
	}
	if r != nil && r.Leave != nil {
		return r.Leave(it, ctx)
	}
	return it
}

// VisitChildren visits the children of n and returns the results with
// deleted children removed. It does not rebuild n.
func (v *Visitor) VisitChildren(n tree.Node, ctx *Context) []tree.Item {
	children := n.Children()
	out := make([]tree.Item, 0, len(children))
	for _, c := range children {
		if nc := v.Visit(c, ctx); nc != nil {
			out = append(out, nc)
		}
	}
	return out
}

func (v *Visitor) visitChildren(n tree.Node, ctx *Context) tree.Item {
	old := n.Children()
	out := v.VisitChildren(n, ctx)
	if len(out) == len(old) {
		same := true
		for i := range out {
			if out[i] != old[i] {
				same = false
				break
			}
		}
		if same {
			return n
		}
	}
	return tree.WithChildren(n, out)
}
