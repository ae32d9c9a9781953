package tree

import (
	"maps"
	"math"
)

// Attribute keys understood by the rasterizers.
const (
	AttrMinAngle   = "$fa"
	AttrMinSize    = "$fs"
	AttrFixedCount = "$fn"
	AttrMinSlices  = "slices"
)

// Attributes is an immutable attribute bag. The zero value is empty.
type Attributes struct {
	m map[string]any
}

// NewAttributes copies m into a new bag.
func NewAttributes(m map[string]any) Attributes {
	if len(m) == 0 {
		return Attributes{}
	}
	return Attributes{m: maps.Clone(m)}
}

// Len returns the number of keys.
func (a Attributes) Len() int { return len(a.m) }

// Get returns the value stored under key.
func (a Attributes) Get(key string) (any, bool) {
	v, ok := a.m[key]
	return v, ok
}

// Map returns a copy of the bag contents.
func (a Attributes) Map() map[string]any {
	if a.m == nil {
		return map[string]any{}
	}
	return maps.Clone(a.m)
}

// With returns a bag with key set to v.
func (a Attributes) With(key string, v any) Attributes {
	m := a.Map()
	m[key] = v
	return Attributes{m: m}
}

// Override returns a merged in which the values of child win over a.
func (a Attributes) Override(child Attributes) Attributes {
	if child.Len() == 0 {
		return a
	}
	if a.Len() == 0 {
		return child
	}
	m := a.Map()
	maps.Copy(m, child.m)
	return Attributes{m: m}
}

// Float returns a numeric attribute or def.
func (a Attributes) Float(key string, def float64) float64 {
	switch v := a.m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// Int returns an integer attribute or def.
func (a Attributes) Int(key string, def int) int {
	switch v := a.m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// Rasterizing holds the attributes that control curve and circle
// resolution.
type Rasterizing struct {
	MinAngle   float64 `yaml:"min_angle" json:"min_angle"` // degrees per fragment
	MinSize    float64 `yaml:"min_size" json:"min_size"`   // fragment length and curve tolerance
	FixedCount int     `yaml:"fixed_count" json:"fixed_count"`
	MinSlices  int     `yaml:"min_slices" json:"min_slices"`
}

// DefaultRasterizing applies when neither the tree nor the configuration
// sets a value.
var DefaultRasterizing = Rasterizing{MinAngle: 5, MinSize: 0.1, MinSlices: 1}

var rasterDefaults = DefaultRasterizing

// SetRasterizingDefaults replaces the process defaults used by
// Attributes.Rasterizing. Non-positive fields keep the built-in values.
func SetRasterizingDefaults(r Rasterizing) {
	d := DefaultRasterizing
	if r.MinAngle > 0 {
		d.MinAngle = r.MinAngle
	}
	if r.MinSize > 0 {
		d.MinSize = r.MinSize
	}
	if r.FixedCount > 0 {
		d.FixedCount = r.FixedCount
	}
	if r.MinSlices > 0 {
		d.MinSlices = r.MinSlices
	}
	rasterDefaults = d
}

// Rasterizing resolves the rasterizing attributes of a against the
// defaults. Non-positive angle and size values fall back to the defaults;
// a negative count or slice number reads as unset.
func (a Attributes) Rasterizing() Rasterizing {
	d := rasterDefaults
	r := Rasterizing{
		MinAngle:   a.Float(AttrMinAngle, d.MinAngle),
		MinSize:    a.Float(AttrMinSize, d.MinSize),
		FixedCount: a.Int(AttrFixedCount, d.FixedCount),
		MinSlices:  a.Int(AttrMinSlices, d.MinSlices),
	}
	if !(r.MinAngle > 0) {
		r.MinAngle = d.MinAngle
	}
	if !(r.MinSize > 0) {
		r.MinSize = d.MinSize
	}
	if r.FixedCount < 0 {
		r.FixedCount = d.FixedCount
	}
	if r.MinSlices < 0 {
		r.MinSlices = d.MinSlices
	}
	return r
}

// Attributes returns r as an attribute bag.
func (r Rasterizing) Attributes() Attributes {
	return NewAttributes(map[string]any{
		AttrMinAngle:   r.MinAngle,
		AttrMinSize:    r.MinSize,
		AttrFixedCount: r.FixedCount,
		AttrMinSlices:  r.MinSlices,
	})
}

// Fragments returns the number of segments used for a full circle of the
// given radius: $fn when set, else the finer of the angle and size limits,
// never fewer than five.
func (r Rasterizing) Fragments(radius float64) int {
	if r.FixedCount > 0 {
		return max(r.FixedCount, 3)
	}
	if radius <= 0 {
		return 3
	}
	byAngle := 360 / r.MinAngle
	bySize := 2 * math.Pi * radius / r.MinSize
	return int(math.Ceil(math.Max(math.Min(byAngle, bySize), 5)))
}
