package environ

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var ErrDefined = errors.New("undefined identifier")

// Environ is a scope of named values. Lookups fall back to the enclosing scope
// while definitions always land in the receiver.
type Environ[T any] interface {
	Resolve(string) (T, error)
	Define(string, T)
	Has(string) bool
	Names() []string
	Len() int
}

type Env[T any] struct {
	values map[string]T
	parent Environ[T]
}

func Empty[T any]() Environ[T] {
	return Enclosed[T](nil)
}

func Enclosed[T any](parent Environ[T]) Environ[T] {
	e := Env[T]{
		values: make(map[string]T),
		parent: parent,
	}
	return &e
}

func (e *Env[T]) Len() int {
	return len(e.values)
}

// Names returns the sorted names visible from e, its own and the ones of its
// enclosing scopes.
func (e *Env[T]) Names() []string {
	names := slices.Collect(maps.Keys(e.values))
	if e.parent != nil {
		for _, n := range e.parent.Names() {
			if _, ok := e.values[n]; !ok {
				names = append(names, n)
			}
		}
	}
	slices.Sort(names)
	return names
}

func (e *Env[T]) Define(ident string, value T) {
	e.values[ident] = value
}

func (e *Env[T]) Has(ident string) bool {
	if _, ok := e.values[ident]; ok {
		return true
	}
	return e.parent != nil && e.parent.Has(ident)
}

func (e *Env[T]) Resolve(ident string) (T, error) {
	value, ok := e.values[ident]
	if ok {
		return value, nil
	}
	if e.parent != nil {
		return e.parent.Resolve(ident)
	}
	var t T
	return t, fmt.Errorf("%s: %w", ident, ErrDefined)
}

// Depth gives the number of scopes between e and the outermost one.
func (e *Env[T]) Depth() int {
	x, ok := e.parent.(*Env[T])
	if !ok || x == nil {
		return 0
	}
	return x.Depth() + 1
}

func (e *Env[T]) Unwrap() Environ[T] {
	if e.parent == nil {
		return e
	}
	return e.parent
}

func (e *Env[T]) Merge(other Environ[T]) {
	x, ok := other.(*Env[T])
	if !ok {
		return
	}
	maps.Copy(e.values, x.values)
}

func (e *Env[T]) Clone() Environ[T] {
	var x Env[T]
	x.values = maps.Clone(e.values)
	if x.values == nil {
		x.values = make(map[string]T)
	}
	if c, ok := e.parent.(interface{ Clone() Environ[T] }); ok {
		x.parent = c.Clone()
	}
	return &x
}
