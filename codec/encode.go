package codec

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"time"

	"github.com/c360studio/semcodec/document"
	"github.com/c360studio/semcodec/schema"
)

// Encode converts a record (or a pointer to one) into a *document.Map.
//
// Every field is written, post-construction ones included. Times become
// RFC 3339 strings, dates YYYY-MM-DD, nested records mappings, sets sorted
// sequences and type-valued fields the registered record name. Nil pointers,
// nil slices and zero times or dates become nil. Other scalars are kept as
// they are.
func (c *Codec) Encode(record any) (any, error) {
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("encode: nil %T", record)
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, fmt.Errorf("encode: %w: <nil>", schema.ErrNotRegistered)
	}
	rt, ok := c.reg.ForType(rv.Type())
	if !ok || rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("encode: %w: %s", schema.ErrNotRegistered, rv.Type())
	}
	if err := c.reg.Validate(); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	doc, err := c.encodeRecord(rt, rv)
	if err != nil {
		return nil, err
	}
	c.metrics.ObserveEncode(rt.Name())
	c.log().Debug("Encoded record", slog.String("type", rt.Name()), slog.Int("keys", doc.Len()))
	return doc, nil
}

func (c *Codec) encodeRecord(rt *schema.RecordType, rv reflect.Value) (*document.Map, error) {
	doc := document.NewMap()
	for _, f := range rt.Fields() {
		v, err := c.encodeValue(rv.FieldByIndex(f.Index))
		if err != nil {
			return nil, fmt.Errorf("encode %s.%s: %w", rt.Name(), f.Name, err)
		}
		doc.Set(f.Name, v)
	}
	return doc, nil
}

func (c *Codec) encodeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	switch v.Type() {
	case schema.TypeValueType:
		if v.IsNil() {
			return nil, nil
		}
		return c.reg.TypeName(v.Interface().(reflect.Type)), nil
	case schema.TimeType:
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return nil, nil
		}
		return t.Format(time.RFC3339Nano), nil
	case schema.DateType:
		d := v.Interface().(document.Date)
		if d.IsZero() {
			return nil, nil
		}
		return d.String(), nil
	case schema.UnionType:
		return c.encodeValue(reflect.ValueOf(v.Interface().(schema.Union).Value))
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return c.encodeValue(v.Elem())
	case reflect.Struct:
		rt, ok := c.reg.ForType(v.Type())
		if !ok {
			return nil, fmt.Errorf("%w: %s", schema.ErrNotRegistered, v.Type())
		}
		return c.encodeRecord(rt, v)
	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface(), nil
		}
		out := make([]any, v.Len())
		for i := range out {
			e, err := c.encodeValue(v.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = e
		}
		return out, nil
	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		keys := v.MapKeys()
		sortValues(keys)
		out := make([]any, len(keys))
		for i, k := range keys {
			e, err := c.encodeValue(k)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	}
	return v.Interface(), nil
}

// sortValues orders set members so encoding is deterministic.
func sortValues(vals []reflect.Value) {
	sort.Slice(vals, func(i, j int) bool {
		a, b := vals[i], vals[j]
		switch {
		case isInt(a.Kind()) && isInt(b.Kind()):
			return a.Int() < b.Int()
		case isUint(a.Kind()) && isUint(b.Kind()):
			return a.Uint() < b.Uint()
		case isFloat(a.Kind()) && isFloat(b.Kind()):
			return a.Float() < b.Float()
		case a.Kind() == reflect.String && b.Kind() == reflect.String:
			return a.String() < b.String()
		}
		return fmt.Sprint(a.Interface()) < fmt.Sprint(b.Interface())
	})
}
