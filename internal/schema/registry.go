package schema

import (
	"errors"
	"reflect"
	"sync"
)

// Registry is the explicit list of mapped types an application owns. Schema
// bootstrapping walks it in registration order; nothing is discovered
// implicitly.
type Registry struct {
	mu    sync.RWMutex
	types []reflect.Type
	seen  map[reflect.Type]struct{}
}

// NewRegistry returns a registry holding the types of the given samples.
func NewRegistry(samples ...any) *Registry {
	r := &Registry{seen: map[reflect.Type]struct{}{}}
	r.Register(samples...)
	return r
}

// Register adds the dynamic types of the given samples (struct values or
// pointers). Duplicates and nil samples are ignored.
func (r *Registry) Register(samples ...any) {
	for _, s := range samples {
		r.RegisterType(reflect.TypeOf(s))
	}
}

// RegisterType adds rt. Pointer types are registered by their element type.
func (r *Registry) RegisterType(rt reflect.Type) {
	rt = baseType(rt)
	if rt == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.seen == nil {
		r.seen = map[reflect.Type]struct{}{}
	}
	if _, ok := r.seen[rt]; ok {
		return
	}
	r.seen[rt] = struct{}{}
	r.types = append(r.types, rt)
}

// Types returns a copy of the registered types in registration order.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]reflect.Type(nil), r.types...)
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// Tables extracts every registered type through c, in registration order.
// A type that fails extraction is skipped; its error is joined into the
// returned error.
func (r *Registry) Tables(c *Cache) ([]*Table, error) {
	if c == nil {
		c = NewCache()
	}
	var (
		out  []*Table
		errl []error
	)
	for _, rt := range r.Types() {
		t, err := c.Lookup(rt)
		if err != nil {
			errl = append(errl, err)
			continue
		}
		out = append(out, t)
	}
	return out, errors.Join(errl...)
}
