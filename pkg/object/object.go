// Package object implements immutable value objects: every concrete type
// registers its name, a format version and a constructor, and exposes its
// construction fields explicitly. From that the package derives a cached
// structural hash, structural equality, copy-with-overrides and a versioned
// binary encoding.
//
// Fields of concrete types are unexported and only set by their constructor,
// so an Object cannot change after it has been built.
package object

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// Object is an immutable registered value. Concrete types embed Base.
type Object interface {
	// TypeName returns the name the type was registered under.
	TypeName() string
	// Fields returns the construction fields in declaration order. Passing
	// them back to the registered constructor rebuilds an equal object.
	Fields() Fields
	anchor() *Base
}

// Base is embedded by every concrete Object. It holds the lazily computed
// hash and the weak-cache anchor; it carries no user visible state.
type Base struct {
	st atomic.Pointer[state]
}

type state struct {
	self Object
	once sync.Once
	sum  uint64
}

func (b *Base) anchor() *Base { return b }

func (b *Base) state(self Object) *state {
	if s := b.st.Load(); s != nil {
		return s
	}
	b.st.CompareAndSwap(nil, &state{self: self})
	return b.st.Load()
}

// Type describes a registered concrete type.
type Type struct {
	Name string
	// Version is bumped whenever the meaning or layout of the fields
	// changes. Encoded objects of another version refuse to restore.
	Version uint32
	// Exclude lists construction fields that take no part in hashing and
	// equality, such as display names.
	Exclude []string
	// New rebuilds an object from its fields. It panics on invalid input.
	New func(f Fields) Object

	excluded map[string]bool
}

func (t *Type) compares(field string) bool { return !t.excluded[field] }

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Type)
)

// Register adds t to the type registry. It panics on an empty name, a nil
// constructor or a duplicate registration.
func Register(t Type) {
	if t.Name == "" {
		panic("object: register: empty type name")
	}
	if t.New == nil {
		panic(fmt.Sprintf("object: register %s: nil constructor", t.Name))
	}
	t.excluded = make(map[string]bool, len(t.Exclude))
	for _, name := range t.Exclude {
		t.excluded[name] = true
	}
	t.Exclude = slices.Clone(t.Exclude)

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[t.Name]; dup {
		panic(fmt.Sprintf("object: type %s registered twice", t.Name))
	}
	registry[t.Name] = &t
}

// Lookup returns the registered type with the given name.
func Lookup(name string) (*Type, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[name]
	return t, ok
}

func mustType(name string) *Type {
	t, ok := Lookup(name)
	if !ok {
		panic(fmt.Sprintf("object: type %s is not registered", name))
	}
	return t
}

// Hash returns the structural hash of o: its type name and version combined
// with every compared field, recursively. The value is computed once per
// instance.
func Hash(o Object) uint64 {
	s := o.anchor().state(o)
	s.once.Do(func() {
		s.sum = computeHash(o)
	})
	return s.sum
}

// Equal reports whether a and b are structurally equal. Two objects with the
// same type and compared fields are interchangeable.
func Equal(a, b Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a == b {
		return true
	}
	return a.TypeName() == b.TypeName() && Hash(a) == Hash(b)
}

// Copy rebuilds o through its registered constructor, replacing the named
// fields. It panics if an override names a field o does not have.
func Copy(o Object, overrides ...Field) Object {
	t := mustType(o.TypeName())
	f := slices.Clone(o.Fields())
	for _, ov := range overrides {
		i := f.index(ov.Name)
		if i < 0 {
			panic(fmt.Sprintf("object: %s has no field %q", t.Name, ov.Name))
		}
		f[i].Value = ov.Value
	}
	return t.New(f)
}
