// Package tree defines the immutable CSG expression tree: items, nodes,
// groups and parts, together with attribute bags and dimension inference.
//
// Every item is an object.Object. Trees are never edited in place; a changed
// tree is a new tree built with object.Copy or a visit.Visitor.
package tree
