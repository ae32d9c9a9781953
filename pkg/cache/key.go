package cache

import (
	"fmt"
	"path/filepath"

	"github.com/chazu/csgtree/pkg/object"
)

// Key derives the fixed-width hex key of a fingerprint.
func Key(fp uint64) string {
	return fmt.Sprintf("%016x", object.HashValues("path", fp))
}

// shardPath splits key into two directory levels: root/ab/cd/<rest>.suffix.
func shardPath(root, key, suffix string) string {
	return filepath.Join(root, key[:2], key[2:4], key[4:]+"."+suffix)
}
