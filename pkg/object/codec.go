package object

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ugorji/go/codec"

	"github.com/chazu/csgtree/pkg/vmath"
)

// ErrUnsupportedValue is returned when a field value has no encoding.
var ErrUnsupportedValue = errors.New("object: unsupported field value")

// VersionMismatchError reports an encoded object whose type version differs
// from the registered one.
type VersionMismatchError struct {
	Type    string
	Stored  uint32
	Current uint32
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("object: %s encoded at version %d, current version is %d", e.Type, e.Stored, e.Current)
}

// UnknownTypeError reports an encoded object whose type is not registered.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("object: unknown type %q", e.Type)
}

var handle = &codec.MsgpackHandle{}

type wireObject struct {
	Type    string      `codec:"t"`
	Version uint32      `codec:"v"`
	Fields  []wireField `codec:"f"`
}

type wireField struct {
	Name  string    `codec:"n"`
	Value wireValue `codec:"v"`
}

type wireValue struct {
	Tag  byte        `codec:"k"`
	Num  float64     `codec:"x,omitempty"`
	Int  int64       `codec:"i,omitempty"`
	Uint uint64      `codec:"u,omitempty"`
	Str  string      `codec:"s,omitempty"`
	Nums []float64   `codec:"xs,omitempty"`
	Ints []int64     `codec:"is,omitempty"`
	List []wireValue `codec:"l,omitempty"`
	Keys []string    `codec:"ks,omitempty"`
	Obj  *wireObject `codec:"o,omitempty"`
}

// Marshal encodes o, its type version and all construction fields.
func Marshal(o Object) ([]byte, error) {
	w, err := encodeObject(o)
	if err != nil {
		return nil, err
	}
	var out []byte
	if err := codec.NewEncoderBytes(&out, handle).Encode(w); err != nil {
		return nil, fmt.Errorf("object: encode %s: %w", o.TypeName(), err)
	}
	return out, nil
}

// Unmarshal restores an object encoded by Marshal by calling the registered
// constructor. A version mismatch yields *VersionMismatchError; constructor
// panics on corrupt input are returned as errors.
func Unmarshal(data []byte) (Object, error) {
	var w wireObject
	if err := codec.NewDecoderBytes(data, handle).Decode(&w); err != nil {
		return nil, fmt.Errorf("object: decode: %w", err)
	}
	return restore(&w)
}

func encodeObject(o Object) (*wireObject, error) {
	t := mustType(o.TypeName())
	fields := o.Fields()
	w := &wireObject{Type: t.Name, Version: t.Version, Fields: make([]wireField, 0, len(fields))}
	for _, f := range fields {
		v, err := encodeValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("object: encode %s.%s: %w", t.Name, f.Name, err)
		}
		w.Fields = append(w.Fields, wireField{Name: f.Name, Value: v})
	}
	return w, nil
}

func encodeValue(v any) (wireValue, error) {
	switch v := v.(type) {
	case nil:
		return wireValue{Tag: tagNil}, nil
	case bool:
		w := wireValue{Tag: tagBool}
		if v {
			w.Int = 1
		}
		return w, nil
	case int:
		return wireValue{Tag: tagInt, Int: int64(v)}, nil
	case int64:
		return wireValue{Tag: tagInt, Int: v}, nil
	case uint64:
		return wireValue{Tag: tagUint, Uint: v}, nil
	case float64:
		return wireValue{Tag: tagFloat, Num: v}, nil
	case string:
		return wireValue{Tag: tagString, Str: v}, nil
	case vmath.Vec2:
		return wireValue{Tag: tagVec2, Nums: []float64{v.X, v.Y}}, nil
	case vmath.Vec3:
		return wireValue{Tag: tagVec3, Nums: []float64{v.X, v.Y, v.Z}}, nil
	case []float64:
		return wireValue{Tag: tagFloats, Nums: slices.Clone(v)}, nil
	case []int:
		ints := make([]int64, len(v))
		for i, x := range v {
			ints[i] = int64(x)
		}
		return wireValue{Tag: tagInts, Ints: ints}, nil
	case [][]int:
		w := wireValue{Tag: tagIntLists, List: make([]wireValue, len(v))}
		for i, l := range v {
			w.List[i], _ = encodeValue(l)
		}
		return w, nil
	case []vmath.Vec2:
		nums := make([]float64, 0, 2*len(v))
		for _, p := range v {
			nums = append(nums, p.X, p.Y)
		}
		return wireValue{Tag: tagVec2s, Nums: nums}, nil
	case []vmath.Vec3:
		nums := make([]float64, 0, 3*len(v))
		for _, p := range v {
			nums = append(nums, p.X, p.Y, p.Z)
		}
		return wireValue{Tag: tagVec3s, Nums: nums}, nil
	case Object:
		o, err := encodeObject(v)
		if err != nil {
			return wireValue{}, err
		}
		return wireValue{Tag: tagObject, Obj: o}, nil
	case []Object:
		w := wireValue{Tag: tagObjects, List: make([]wireValue, len(v))}
		for i, o := range v {
			ev, err := encodeValue(o)
			if err != nil {
				return wireValue{}, err
			}
			w.List[i] = ev
		}
		return w, nil
	case Mapper:
		return encodeMap(v.Map())
	case map[string]any:
		return encodeMap(v)
	}
	return wireValue{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

func encodeMap(m map[string]any) (wireValue, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	w := wireValue{Tag: tagMap, Keys: keys, List: make([]wireValue, len(keys))}
	for i, k := range keys {
		ev, err := encodeValue(m[k])
		if err != nil {
			return wireValue{}, fmt.Errorf("key %q: %w", k, err)
		}
		w.List[i] = ev
	}
	return w, nil
}

func restore(w *wireObject) (o Object, err error) {
	t, ok := Lookup(w.Type)
	if !ok {
		return nil, &UnknownTypeError{Type: w.Type}
	}
	if w.Version != t.Version {
		return nil, &VersionMismatchError{Type: t.Name, Stored: w.Version, Current: t.Version}
	}
	fields := make(Fields, 0, len(w.Fields))
	for _, wf := range w.Fields {
		v, err := decodeValue(&wf.Value)
		if err != nil {
			return nil, fmt.Errorf("object: restore %s.%s: %w", t.Name, wf.Name, err)
		}
		fields = append(fields, Field{Name: wf.Name, Value: v})
	}
	defer func() {
		if r := recover(); r != nil {
			o, err = nil, fmt.Errorf("object: restore %s: %v", t.Name, r)
		}
	}()
	return t.New(fields), nil
}

func decodeValue(w *wireValue) (any, error) {
	switch w.Tag {
	case tagNil:
		return nil, nil
	case tagBool:
		return w.Int != 0, nil
	case tagInt:
		return int(w.Int), nil
	case tagUint:
		return w.Uint, nil
	case tagFloat:
		return w.Num, nil
	case tagString:
		return w.Str, nil
	case tagVec2:
		if len(w.Nums) != 2 {
			return nil, fmt.Errorf("vec2 with %d components", len(w.Nums))
		}
		return vmath.V2(w.Nums[0], w.Nums[1]), nil
	case tagVec3:
		if len(w.Nums) != 3 {
			return nil, fmt.Errorf("vec3 with %d components", len(w.Nums))
		}
		return vmath.V3(w.Nums[0], w.Nums[1], w.Nums[2]), nil
	case tagFloats:
		return slices.Clone(w.Nums), nil
	case tagInts:
		ints := make([]int, len(w.Ints))
		for i, x := range w.Ints {
			ints[i] = int(x)
		}
		return ints, nil
	case tagIntLists:
		lists := make([][]int, len(w.List))
		for i := range w.List {
			v, err := decodeValue(&w.List[i])
			if err != nil {
				return nil, err
			}
			l, ok := v.([]int)
			if !ok {
				return nil, fmt.Errorf("int list holds %T", v)
			}
			lists[i] = l
		}
		return lists, nil
	case tagVec2s:
		if len(w.Nums)%2 != 0 {
			return nil, fmt.Errorf("vec2 list with %d numbers", len(w.Nums))
		}
		pts := make([]vmath.Vec2, len(w.Nums)/2)
		for i := range pts {
			pts[i] = vmath.V2(w.Nums[2*i], w.Nums[2*i+1])
		}
		return pts, nil
	case tagVec3s:
		if len(w.Nums)%3 != 0 {
			return nil, fmt.Errorf("vec3 list with %d numbers", len(w.Nums))
		}
		pts := make([]vmath.Vec3, len(w.Nums)/3)
		for i := range pts {
			pts[i] = vmath.V3(w.Nums[3*i], w.Nums[3*i+1], w.Nums[3*i+2])
		}
		return pts, nil
	case tagObject:
		if w.Obj == nil {
			return nil, nil
		}
		return restore(w.Obj)
	case tagObjects:
		objs := make([]Object, len(w.List))
		for i := range w.List {
			v, err := decodeValue(&w.List[i])
			if err != nil {
				return nil, err
			}
			if v != nil {
				objs[i] = v.(Object)
			}
		}
		return objs, nil
	case tagMap:
		if len(w.Keys) != len(w.List) {
			return nil, fmt.Errorf("map with %d keys and %d values", len(w.Keys), len(w.List))
		}
		m := make(map[string]any, len(w.Keys))
		for i, k := range w.Keys {
			v, err := decodeValue(&w.List[i])
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return m, nil
	}
	return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedValue, w.Tag)
}
