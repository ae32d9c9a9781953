package tree

import "sync"

// Kind identifies a tree item type for rule dispatch. Concrete kinds are
// the registered object type names; abstract kinds name families such as
// all booleans or all 2D shapes.
type Kind string

// Abstract kinds defined by this package.
const (
	KindItem Kind = "tree.Item"
	KindNode Kind = "tree.Node"
)

// Concrete kinds defined by this package.
const (
	KindEmpty Kind = "tree.Empty"
	KindGroup Kind = "tree.Group"
	KindPart  Kind = "tree.Part"
)

var (
	kindsMu    sync.RWMutex
	knownKinds = map[Kind]bool{KindItem: true, KindNode: true}
)

// RegisterKind records kinds so rule compilers can reject unknown ones.
// Every kind that appears in some lineage must be registered.
func RegisterKind(kinds ...Kind) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	for _, k := range kinds {
		knownKinds[k] = true
	}
}

// KnownKind reports whether k has been registered.
func KnownKind(k Kind) bool {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	return knownKinds[k]
}

// Lineage builds a lineage: the concrete kind first, then the given
// families from most to least specific, then KindNode for nodes, then
// KindItem.
func Lineage(concrete Kind, node bool, families ...Kind) []Kind {
	l := make([]Kind, 0, len(families)+3)
	l = append(l, concrete)
	l = append(l, families...)
	if node {
		l = append(l, KindNode)
	}
	return append(l, KindItem)
}
