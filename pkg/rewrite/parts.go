package rewrite

import (
	"fmt"

	"github.com/chazu/csgtree/pkg/object"
	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/visit"
)

// PartEntry is one distinct part of a tree.
type PartEntry struct {
	Name string
	// Item is the child of the first part with this name.
	Item tree.Item
	// Attributes are the attributes resolved at the first occurrence.
	Attributes tree.Attributes
	Count      int
}

// PartMismatchError reports two parts sharing a name but not their
// geometry.
type PartMismatchError struct {
	Name string
}

func (e *PartMismatchError) Error() string {
	return fmt.Sprintf("rewrite: parts named %q have different children", e.Name)
}

type partTable struct {
	entries []PartEntry
	index   map[string]int
	err     error
}

var collectParts = visit.MustNew(visit.Rule{
	Kinds: []tree.Kind{tree.KindPart},
	Enter: func(it tree.Item, ctx *visit.Context) bool {
		t := ctx.Data.(*partTable)
		p := it.(*tree.Part)
		child := p.Child(0)
		if i, ok := t.index[p.PartName()]; ok {
			if !object.Equal(t.entries[i].Item, child) && t.err == nil {
				t.err = &PartMismatchError{Name: p.PartName()}
			}
			t.entries[i].Count++
			return false
		}
		t.index[p.PartName()] = len(t.entries)
		t.entries = append(t.entries, PartEntry{
			Name:       p.PartName(),
			Item:       child,
			Attributes: ctx.Attributes(),
			Count:      1,
		})
		return false
	},
})

// CollectParts lists the distinct parts of root in order of first
// appearance. Parts nested in parts are not visited. Parts sharing a name
// must have equal children, otherwise a *PartMismatchError is returned.
func CollectParts(root tree.Item, attrs tree.Attributes) ([]PartEntry, error) {
	t := &partTable{index: make(map[string]int)}
	ctx := visit.NewContext(attrs)
	ctx.Data = t
	collectParts.Visit(root, ctx)
	if t.err != nil {
		return nil, t.err
	}
	return t.entries, nil
}
