package graph

import (
	"fmt"
	"sort"

	"github.com/chazu/csgtree/pkg/tree"
)

// ValidationSeverity indicates whether a validation finding blocks
// lowering or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks lowering
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs all checks on the design graph and returns the findings,
// errors and warnings alike. It never mutates the graph.
func Validate(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(g)...)
	errs = append(errs, validateReferences(g)...)
	errs = append(errs, validateRoot(g)...)
	errs = append(errs, validateParts(g)...)
	errs = append(errs, validateGroups(g)...)
	errs = append(errs, validateNames(g)...)
	return errs
}

// ValidateAll runs Validate and splits the findings by severity.
func ValidateAll(g *DesignGraph) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
// Graphs from Build are acyclic; hand-assembled ones may not be.
func validateDAG(g *DesignGraph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	color := make(map[NodeID]int)
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		node, ok := g.Nodes[id]
		if !ok {
			// Dangling reference; handled by validateReferences.
			color[id] = black
			return false
		}
		for _, childID := range node.Children {
			if visit(childID) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for id := range g.Nodes {
		if color[id] == white && visit(id) {
			break
		}
	}
	return errs
}

// validateReferences checks that every child ID and name index entry
// points to an existing node.
func validateReferences(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			if _, ok := g.Nodes[childID]; !ok {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("child reference %s does not exist", childID.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	for name, ids := range g.NameIndex {
		for _, id := range ids {
			if _, ok := g.Nodes[id]; !ok {
				errs = append(errs, ValidationError{
					Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateRoot checks that the root exists and has a dimension.
func validateRoot(g *DesignGraph) []ValidationError {
	root, ok := g.Nodes[g.Root]
	if !ok {
		return []ValidationError{{
			Message:  fmt.Sprintf("root reference %s does not exist", g.Root.Short()),
			Severity: SeverityError,
		}}
	}
	if root.Dim == tree.DimNone {
		return []ValidationError{{
			NodeID:   root.ID,
			Message:  fmt.Sprintf("root %s has no geometry or mixes 2D and 3D", root.Kind),
			Severity: SeverityError,
		}}
	}
	return nil
}

// validateParts checks that parts sharing a name wrap the same child and
// that every part is 3D.
func validateParts(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	names := make([]string, 0, len(g.PartIndex))
	for name := range g.PartIndex {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ids := g.PartIndex[name]
		var child NodeID
		for _, id := range ids {
			n := g.Nodes[id]
			if n == nil || len(n.Children) != 1 {
				continue
			}
			if n.Dim != tree.Dim3 {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("part %q is %s, not 3D", name, n.Dim),
					Severity: SeverityError,
				})
			}
			switch {
			case child.IsZero():
				child = n.Children[0]
			case child != n.Children[0]:
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("parts named %q have different children", name),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateGroups warns about groups mixing 2D and 3D children; they cannot
// be turned into unions.
func validateGroups(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for _, node := range g.Nodes {
		if node.Kind != tree.KindGroup || node.Dim != tree.DimNone {
			continue
		}
		dims := make(map[tree.Dim]bool)
		for _, c := range g.Children(node) {
			dims[c.Dim] = true
		}
		if dims[tree.Dim2] && dims[tree.Dim3] {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "group mixes 2D and 3D children",
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateNames warns when one display name is used by different
// subtrees, which makes Lookup ambiguous.
func validateNames(g *DesignGraph) []ValidationError {
	var errs []ValidationError
	for name, ids := range g.NameIndex {
		if len(ids) > 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name %q is used by %d different nodes", name, len(ids)),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
