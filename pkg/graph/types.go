package graph

import (
	"fmt"
	"strconv"
)

// NodeID is the structural hash of the item a node was built from.
type NodeID uint64

// ParseNodeID parses the hex form produced by String.
func ParseNodeID(s string) (NodeID, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("graph: parse node id %q: %w", s, err)
	}
	return NodeID(v), nil
}

// IsZero reports whether id is unset.
func (id NodeID) IsZero() bool { return id == 0 }

func (id NodeID) String() string { return fmt.Sprintf("%016x", uint64(id)) }

// Short returns the first eight hex digits for messages.
func (id NodeID) Short() string { return id.String()[:8] }
