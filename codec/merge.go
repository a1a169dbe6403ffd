package codec

import (
	"fmt"
	"reflect"
)

// Merge overwrites the named fields of target with source's values where
// they differ. With no keys every field is considered. target must be a
// non-nil pointer to a record; source is a record of the same type or a
// pointer to one. The copy is shallow.
func (c *Codec) Merge(target, source any, keys ...string) error {
	tv := reflect.ValueOf(target)
	if tv.Kind() != reflect.Pointer || tv.IsNil() {
		return fmt.Errorf("merge: target must be a non-nil pointer, got %T", target)
	}
	tv = tv.Elem()
	sv := reflect.ValueOf(source)
	if sv.Kind() == reflect.Pointer {
		if sv.IsNil() {
			return fmt.Errorf("merge: nil source %T", source)
		}
		sv = sv.Elem()
	}
	if !sv.IsValid() || sv.Type() != tv.Type() {
		return fmt.Errorf("merge %T into %T: %w", source, target, ErrTypeMismatch)
	}
	rt, ok := c.reg.ForType(tv.Type())
	if !ok {
		return fmt.Errorf("merge: %s is not a registered record type", tv.Type())
	}

	if len(keys) == 0 {
		for _, f := range rt.Fields() {
			keys = append(keys, f.Name)
		}
	}
	for _, key := range keys {
		f, ok := rt.Field(key)
		if !ok {
			return fmt.Errorf("merge %s: unknown field %q", rt.Name(), key)
		}
		dst := tv.FieldByIndex(f.Index)
		src := sv.FieldByIndex(f.Index)
		if !reflect.DeepEqual(dst.Interface(), src.Interface()) {
			dst.Set(src)
		}
	}
	return nil
}
