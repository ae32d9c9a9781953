package object

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"

	"github.com/chazu/csgtree/pkg/vmath"
)

// value tags keep e.g. int(1) and float64(1) apart.
const (
	tagNil byte = iota
	tagBool
	tagInt
	tagUint
	tagFloat
	tagString
	tagVec2
	tagVec3
	tagFloats
	tagInts
	tagIntLists
	tagVec2s
	tagVec3s
	tagObject
	tagObjects
	tagMap
)

func computeHash(o Object) uint64 {
	t := mustType(o.TypeName())
	d := xxhash.New()
	writeString(d, t.Name)
	writeUint(d, uint64(t.Version))
	for _, f := range o.Fields() {
		if !t.compares(f.Name) {
			continue
		}
		writeString(d, f.Name)
		hashValue(d, f.Value)
	}
	return d.Sum64()
}

// HashValues hashes a tuple of field-compatible values. Objects contribute
// their structural hash. It is the usual way to build cache fingerprints.
func HashValues(values ...any) uint64 {
	d := xxhash.New()
	writeUint(d, uint64(len(values)))
	for _, v := range values {
		hashValue(d, v)
	}
	return d.Sum64()
}

func writeUint(d *xxhash.Digest, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, _ = d.Write(b[:])
}

func writeFloat(d *xxhash.Digest, v float64) {
	if v == 0 {
		v = 0 // fold -0
	}
	writeUint(d, math.Float64bits(v))
}

func writeString(d *xxhash.Digest, s string) {
	writeUint(d, uint64(len(s)))
	_, _ = d.WriteString(s)
}

func writeTag(d *xxhash.Digest, tag byte) {
	_, _ = d.Write([]byte{tag})
}

func hashValue(d *xxhash.Digest, v any) {
	switch v := v.(type) {
	case nil:
		writeTag(d, tagNil)
	case bool:
		writeTag(d, tagBool)
		if v {
			writeUint(d, 1)
		} else {
			writeUint(d, 0)
		}
	case int:
		writeTag(d, tagInt)
		writeUint(d, uint64(int64(v)))
	case int64:
		writeTag(d, tagInt)
		writeUint(d, uint64(v))
	case uint64:
		writeTag(d, tagUint)
		writeUint(d, v)
	case float64:
		writeTag(d, tagFloat)
		writeFloat(d, v)
	case string:
		writeTag(d, tagString)
		writeString(d, v)
	case vmath.Vec2:
		writeTag(d, tagVec2)
		writeFloat(d, v.X)
		writeFloat(d, v.Y)
	case vmath.Vec3:
		writeTag(d, tagVec3)
		writeFloat(d, v.X)
		writeFloat(d, v.Y)
		writeFloat(d, v.Z)
	case []float64:
		writeTag(d, tagFloats)
		writeUint(d, uint64(len(v)))
		for _, x := range v {
			writeFloat(d, x)
		}
	case []int:
		writeTag(d, tagInts)
		writeUint(d, uint64(len(v)))
		for _, x := range v {
			writeUint(d, uint64(int64(x)))
		}
	case [][]int:
		writeTag(d, tagIntLists)
		writeUint(d, uint64(len(v)))
		for _, l := range v {
			hashValue(d, l)
		}
	case []vmath.Vec2:
		writeTag(d, tagVec2s)
		writeUint(d, uint64(len(v)))
		for _, p := range v {
			writeFloat(d, p.X)
			writeFloat(d, p.Y)
		}
	case []vmath.Vec3:
		writeTag(d, tagVec3s)
		writeUint(d, uint64(len(v)))
		for _, p := range v {
			writeFloat(d, p.X)
			writeFloat(d, p.Y)
			writeFloat(d, p.Z)
		}
	case Object:
		writeTag(d, tagObject)
		writeUint(d, Hash(v))
	case []Object:
		writeTag(d, tagObjects)
		writeUint(d, uint64(len(v)))
		for _, o := range v {
			if o == nil {
				writeTag(d, tagNil)
				continue
			}
			writeUint(d, Hash(o))
		}
	case Mapper:
		hashMap(d, v.Map())
	case map[string]any:
		hashMap(d, v)
	default:
		panic(fmt.Sprintf("object: cannot hash %T", v))
	}
}

func hashMap(d *xxhash.Digest, m map[string]any) {
	writeTag(d, tagMap)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	writeUint(d, uint64(len(keys)))
	for _, k := range keys {
		writeString(d, k)
		hashValue(d, m[k])
	}
}
