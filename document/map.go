// Package document defines the generic JSON-like tree the document codec
// reads and writes, plus YAML and JSON (with comments) file I/O.
//
// A Document is one of:
//   - nil
//   - a scalar: string, bool, an integer kind, float64, time.Time or Date
//   - *Map, an ordered string-keyed mapping of Documents
//   - []any, a sequence of Documents
package document

import (
	"reflect"
	"time"
)

// Map is an ordered string-keyed mapping. Keys keep their first insertion
// position; setting an existing key replaces the value in place.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap creates an empty mapping.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// MapOf builds a mapping from alternating key/value arguments.
// It panics if a key is not a string or the argument count is odd.
func MapOf(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("document: MapOf requires key/value pairs")
	}
	m := NewMap()
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic("document: MapOf keys must be strings")
		}
		m.Set(key, kv[i+1])
	}
	return m
}

// Set stores value under key.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key.
func (m *Map) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Equal reports whether both mappings hold the same keys in the same order
// with Equal values.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	for i, k := range m.keys {
		if other.keys[i] != k {
			return false
		}
		if !Equal(m.values[k], other.values[k]) {
			return false
		}
	}
	return true
}

// Equal compares two Documents structurally. Times compare by instant.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case *Map:
		y, ok := b.(*Map)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	return reflect.DeepEqual(a, b)
}
