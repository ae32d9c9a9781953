package object

import "weak"

// WeakRef refers to an object without keeping it alive.
type WeakRef struct {
	p weak.Pointer[state]
}

// Weak returns a weak reference to o.
func Weak(o Object) WeakRef {
	return WeakRef{p: weak.Make(o.anchor().state(o))}
}

// Value returns the object, or nil once it has been collected.
func (w WeakRef) Value() Object {
	s := w.p.Value()
	if s == nil {
		return nil
	}
	return s.self
}
