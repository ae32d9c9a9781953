package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/csgtree/pkg/tree"
	"github.com/chazu/csgtree/pkg/vmath"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms design source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: linear-extrude -> linear_extrude
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpItem wraps a tree.Item so it can be passed between builtins.
type sexpItem struct {
	item tree.Item
}

func (s *sexpItem) SexpString(ps *zygo.PrintState) string {
	if name := s.item.Name(); name != "" {
		return fmt.Sprintf("(%s %q)", s.item.Kind(), name)
	}
	return fmt.Sprintf("(%s)", s.item.Kind())
}
func (s *sexpItem) Type() *zygo.RegisteredType { return nil }

// sexpVec2 wraps a planar point.
type sexpVec2 struct {
	vec vmath.Vec2
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a spatial point or vector.
type sexpVec3 struct {
	vec vmath.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integral number from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) {
			return int(v.Val), nil
		}
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toVec2 extracts a planar point from a vec2, a vec3 (z dropped) or a
// list of two numbers.
func toVec2(s zygo.Sexp) (vmath.Vec2, error) {
	switch v := s.(type) {
	case *sexpVec2:
		return v.vec, nil
	case *sexpVec3:
		return vmath.V2(v.vec.X, v.vec.Y), nil
	}
	nums, err := toFloats(s)
	if err != nil || len(nums) != 2 {
		return vmath.Vec2{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
	}
	return vmath.V2(nums[0], nums[1]), nil
}

// toVec3 extracts a vector from a vec3, a vec2 (z = 0) or a list of three
// numbers.
func toVec3(s zygo.Sexp) (vmath.Vec3, error) {
	switch v := s.(type) {
	case *sexpVec3:
		return v.vec, nil
	case *sexpVec2:
		return vmath.V3(v.vec.X, v.vec.Y, 0), nil
	}
	nums, err := toFloats(s)
	if err != nil || len(nums) != 3 {
		return vmath.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
	}
	return vmath.V3(nums[0], nums[1], nums[2]), nil
}

// toFloats extracts a list of numbers.
func toFloats(s zygo.Sexp) ([]float64, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, it := range items {
		if out[i], err = toFloat64(it); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// toInts extracts a list of integers.
func toInts(s zygo.Sexp) ([]int, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(items))
	for i, it := range items {
		if out[i], err = toInt(it); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// toIndexLists extracts a list of index lists, as used by polygon paths and
// polyhedron faces.
func toIndexLists(s zygo.Sexp) ([][]int, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([][]int, len(items))
	for i, it := range items {
		if out[i], err = toInts(it); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toItem extracts a tree.Item from a sexpItem.
func toItem(s zygo.Sexp) (tree.Item, error) {
	if it, ok := s.(*sexpItem); ok {
		return it.item, nil
	}
	return nil, fmt.Errorf("expected item, got %T (%s)", s, s.SexpString(nil))
}

// toItems collects items from arguments. Lists of items are flattened so
// that mapped children can be passed directly.
func toItems(args []zygo.Sexp) ([]tree.Item, error) {
	var out []tree.Item
	for _, a := range args {
		if a == zygo.SexpNull {
			continue
		}
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			elems, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			sub, err := toItems(elems)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}
		it, err := toItem(a)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Common item options
// ---------------------------------------------------------------------------

// attrKeys maps keyword arguments to rasterizing attributes.
var attrKeys = map[string]string{
	"fn":     tree.AttrFixedCount,
	"fa":     tree.AttrMinAngle,
	"fs":     tree.AttrMinSize,
	"slices": tree.AttrMinSlices,
}

// itemOptions reads :name and the rasterizing attributes shared by every
// item builtin.
func itemOptions(fn string, pa kwArgs) ([]tree.Option, error) {
	var opts []tree.Option
	if v, ok := pa.kw["name"]; ok {
		s, err := toString(v)
		if err != nil {
			return nil, fmt.Errorf("%s: name: %w", fn, err)
		}
		opts = append(opts, tree.Named(s))
	}
	attrs := map[string]any{}
	for key, attr := range attrKeys {
		v, ok := pa.kw[key]
		if !ok {
			continue
		}
		if attr == tree.AttrFixedCount || attr == tree.AttrMinSlices {
			n, err := toInt(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", fn, key, err)
			}
			if n < 0 {
				return nil, fmt.Errorf("%s: %s must not be negative, got %d", fn, key, n)
			}
			attrs[attr] = n
			continue
		}
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn, key, err)
		}
		if !(f > 0) {
			return nil, fmt.Errorf("%s: %s must be positive, got %g", fn, key, f)
		}
		attrs[attr] = f
	}
	if len(attrs) > 0 {
		opts = append(opts, tree.WithAttributes(tree.NewAttributes(attrs)))
	}
	return opts, nil
}

// floatArg returns the first of keys present in pa, or def.
func floatArg(fn string, pa kwArgs, def float64, keys ...string) (float64, error) {
	for _, k := range keys {
		if v, ok := pa.kw[k]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return 0, fmt.Errorf("%s: %s: %w", fn, k, err)
			}
			return f, nil
		}
	}
	return def, nil
}

// build runs an item constructor and reports its panics as errors.
// Constructors panic on invalid parameters.
func build(fn string, construct func() tree.Item) (s zygo.Sexp, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = zygo.SexpNull, fmt.Errorf("%s: %v", fn, r)
		}
	}()
	return &sexpItem{item: construct()}, nil
}

// single returns the only child, or a group of several.
func single(children []tree.Item) tree.Item {
	if len(children) == 1 {
		return children[0]
	}
	return tree.NewGroup(children)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all design builtins into a zygomys environment.
// Every item builtin returns a wrapped tree.Item; (design item) records the
// design root in *root.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, root *tree.Item) {

	// -----------------------------------------------------------------------
	// (vec2 1 2) (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec2 requires exactly 2 arguments, got %d", len(args))
		}
		v, err := toVec2(&zygo.SexpArray{Val: args})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: %w", err)
		}
		return &sexpVec2{vec: v}, nil
	})
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		v, err := toVec3(&zygo.SexpArray{Val: args})
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (design item)
	// -----------------------------------------------------------------------
	env.AddFunction("design", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		children, err := toItems(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("design: %w", err)
		}
		if len(children) == 0 {
			return zygo.SexpNull, fmt.Errorf("design requires an item")
		}
		*root = single(children)
		return &sexpItem{item: *root}, nil
	})

	registerShapes(env)
	registerSolids(env)
	registerOperations(env)
	registerGears(env)
}
