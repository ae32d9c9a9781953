// Package graph indexes CSG trees. A tree is flattened into a
// content-addressed DAG whose node IDs are structural hashes, so equal
// subtrees share one node. The index answers name and part lookups and is
// the input of validation.
package graph
