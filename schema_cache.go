package kessoku

import (
	"reflect"
	"sync"

	"github.com/rotisserie/eris"
)

// schemaCache holds compiled schemas keyed by Go type. Entries are computed at
// most once, even when several goroutines ask for the same type at the same
// time, and are never evicted. A failed compilation is cached as well, so a
// structurally invalid type keeps failing with the same error.
type schemaCache[V any] struct {
	entries sync.Map // map[reflect.Type]*schemaEntry[V]
}

type schemaEntry[V any] struct {
	once sync.Once
	val  V
	err  error
}

// load returns the cached schema for t, calling build on first use.
func (c *schemaCache[V]) load(t reflect.Type, build func(reflect.Type) (V, error)) (V, error) {
	v, ok := c.entries.Load(t)
	if !ok {
		v, _ = c.entries.LoadOrStore(t, &schemaEntry[V]{})
	}
	e := v.(*schemaEntry[V])
	e.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				e.err = eris.Errorf("kessoku: compiling %s: %v", t, r)
			}
		}()
		e.val, e.err = build(t)
	})
	return e.val, e.err
}
