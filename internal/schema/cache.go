package schema

import (
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes extracted table metadata by Go type. Struct metadata is
// fixed for the life of the process, so successful extractions are kept
// forever; failures are not cached. Cached descriptors may lack a row
// constructor; callers that hydrate check Table.HydrationTarget. Concurrent lookups of the same type
// share one extraction.
type Cache struct {
	tables sync.Map // reflect.Type -> *Table
	group  singleflight.Group
}

// NewCache returns an empty cache.
func NewCache() *Cache { return &Cache{} }

// Lookup returns the table descriptor for rt, extracting it on first use.
func (c *Cache) Lookup(rt reflect.Type) (*Table, error) {
	key := baseType(rt)
	if key == nil {
		return ExtractTable(rt)
	}
	if v, ok := c.tables.Load(key); ok {
		return v.(*Table), nil
	}
	v, err, _ := c.group.Do(typeKey(key), func() (any, error) {
		if v, ok := c.tables.Load(key); ok {
			return v, nil
		}
		t, err := ExtractTable(key)
		if err != nil {
			return nil, err
		}
		c.tables.Store(key, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Table), nil
}

func baseType(rt reflect.Type) reflect.Type {
	if rt == nil {
		return nil
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}

// typeKey names a type uniquely enough for singleflight: two packages may
// both declare a "models.User", so the import path is included.
func typeKey(rt reflect.Type) string {
	return rt.PkgPath() + "." + rt.String()
}
