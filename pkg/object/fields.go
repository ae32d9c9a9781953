package object

import (
	"fmt"

	"github.com/chazu/csgtree/pkg/vmath"
)

// Field is one named construction value.
type Field struct {
	Name  string
	Value any
}

// F is shorthand for a Field literal.
func F(name string, value any) Field { return Field{Name: name, Value: value} }

// Fields is an ordered field list. The typed getters return the zero value
// for a missing field and panic when the stored value has the wrong type.
type Fields []Field

// Mapper is implemented by map-like field values such as attribute bags.
// They are hashed in key order and restored as map[string]any.
type Mapper interface {
	Map() map[string]any
}

func (f Fields) index(name string) int {
	for i := range f {
		if f[i].Name == name {
			return i
		}
	}
	return -1
}

// Get returns the value stored under name.
func (f Fields) Get(name string) (any, bool) {
	if i := f.index(name); i >= 0 {
		return f[i].Value, true
	}
	return nil, false
}

// Value returns the value stored under name, or nil.
func (f Fields) Value(name string) any {
	v, _ := f.Get(name)
	return v
}

// Has reports whether a field called name exists.
func (f Fields) Has(name string) bool { return f.index(name) >= 0 }

func wrongType(name string, v any, want string) string {
	return fmt.Sprintf("object: field %q is %T, want %s", name, v, want)
}

// Float returns a numeric field as float64.
func (f Fields) Float(name string) float64 {
	switch v := f.Value(name).(type) {
	case nil:
		return 0
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		panic(wrongType(name, v, "number"))
	}
}

// Int returns an integer field.
func (f Fields) Int(name string) int {
	switch v := f.Value(name).(type) {
	case nil:
		return 0
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		panic(wrongType(name, v, "integer"))
	}
}

// Bool returns a boolean field.
func (f Fields) Bool(name string) bool {
	switch v := f.Value(name).(type) {
	case nil:
		return false
	case bool:
		return v
	default:
		panic(wrongType(name, v, "bool"))
	}
}

// Text returns a string field.
func (f Fields) Text(name string) string {
	switch v := f.Value(name).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		panic(wrongType(name, v, "string"))
	}
}

// Floats returns a []float64 field.
func (f Fields) Floats(name string) []float64 {
	switch v := f.Value(name).(type) {
	case nil:
		return nil
	case []float64:
		return v
	default:
		panic(wrongType(name, v, "[]float64"))
	}
}

// IntLists returns a [][]int field.
func (f Fields) IntLists(name string) [][]int {
	switch v := f.Value(name).(type) {
	case nil:
		return nil
	case [][]int:
		return v
	default:
		panic(wrongType(name, v, "[][]int"))
	}
}

// Vec2s returns a []vmath.Vec2 field.
func (f Fields) Vec2s(name string) []vmath.Vec2 {
	switch v := f.Value(name).(type) {
	case nil:
		return nil
	case []vmath.Vec2:
		return v
	default:
		panic(wrongType(name, v, "[]Vec2"))
	}
}

// Vec3s returns a []vmath.Vec3 field.
func (f Fields) Vec3s(name string) []vmath.Vec3 {
	switch v := f.Value(name).(type) {
	case nil:
		return nil
	case []vmath.Vec3:
		return v
	default:
		panic(wrongType(name, v, "[]Vec3"))
	}
}

// Object returns a nested object field.
func (f Fields) Object(name string) Object {
	switch v := f.Value(name).(type) {
	case nil:
		return nil
	case Object:
		return v
	default:
		panic(wrongType(name, v, "Object"))
	}
}

// Objects returns a []Object field.
func (f Fields) Objects(name string) []Object {
	switch v := f.Value(name).(type) {
	case nil:
		return nil
	case []Object:
		return v
	default:
		panic(wrongType(name, v, "[]Object"))
	}
}

// Map returns a map field. Mapper values are converted.
func (f Fields) Map(name string) map[string]any {
	switch v := f.Value(name).(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case Mapper:
		return v.Map()
	default:
		panic(wrongType(name, v, "map"))
	}
}
