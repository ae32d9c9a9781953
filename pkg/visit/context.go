package visit

import (
	"slices"

	"github.com/chazu/csgtree/pkg/tree"
)

// Context tracks the ancestors of the item being visited and their resolved
// attributes. Resolved attributes are the parent's resolved bag overridden
// by the item's own bag.
type Context struct {
	base      tree.Attributes
	ancestors []tree.Item
	resolved  []tree.Attributes

	// Data carries caller state through a traversal.
	Data any
}

// NewContext returns a context whose root inherits attrs.
func NewContext(attrs tree.Attributes) *Context {
	return &Context{base: attrs}
}

func (c *Context) push(it tree.Item) {
	c.resolved = append(c.resolved, c.Attributes().Override(it.Attributes()))
	c.ancestors = append(c.ancestors, it)
}

func (c *Context) pop() {
	c.ancestors = c.ancestors[:len(c.ancestors)-1]
	c.resolved = c.resolved[:len(c.resolved)-1]
}

func (c *Context) replaceTop(it tree.Item) {
	c.ancestors[len(c.ancestors)-1] = it
}

// Depth returns the number of items on the stack, the current one included.
func (c *Context) Depth() int { return len(c.ancestors) }

// Current returns the item being visited, or nil outside a visit.
func (c *Context) Current() tree.Item {
	if len(c.ancestors) == 0 {
		return nil
	}
	return c.ancestors[len(c.ancestors)-1]
}

// Parent returns the parent of the current item, or nil at the root.
func (c *Context) Parent() tree.Item {
	if len(c.ancestors) < 2 {
		return nil
	}
	return c.ancestors[len(c.ancestors)-2]
}

// Ancestors returns the stack from the root to the current item.
func (c *Context) Ancestors() []tree.Item { return slices.Clone(c.ancestors) }

// Attributes returns the resolved attributes of the current item, or the
// base attributes outside a visit.
func (c *Context) Attributes() tree.Attributes {
	if len(c.resolved) == 0 {
		return c.base
	}
	return c.resolved[len(c.resolved)-1]
}

// ParentAttributes returns the resolved attributes of the parent.
func (c *Context) ParentAttributes() tree.Attributes {
	if len(c.resolved) < 2 {
		return c.base
	}
	return c.resolved[len(c.resolved)-2]
}
