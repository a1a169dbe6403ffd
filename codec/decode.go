package codec

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/c360studio/semcodec/document"
	"github.com/c360studio/semcodec/schema"
)

// Decode builds a new record of rt from doc and returns a pointer to it.
//
// Construction fields are assigned first, then Initialize runs if the
// record implements Initializer, then post-construction fields are assigned
// directly. An absent key takes the field default (deep-copied) or the
// default factory; otherwise decoding fails with MissingRequiredFieldError.
// Keys outside the field set are ignored. On error no record is returned.
func (c *Codec) Decode(rt *schema.RecordType, doc any) (any, error) {
	if err := c.reg.Validate(); err != nil {
		c.metrics.ObserveDecode(rt.Name(), err)
		return nil, err
	}
	ptr, err := c.decodeRecord(rt, doc)
	c.metrics.ObserveDecode(rt.Name(), err)
	if err != nil {
		return nil, err
	}
	c.log().Debug("Decoded record", slog.String("type", rt.Name()))
	return ptr.Interface(), nil
}

// DecodeAs decodes doc into a new T. T must be registered with c's registry.
func DecodeAs[T any](c *Codec, doc any) (*T, error) {
	rt, ok := c.reg.ForType(reflect.TypeFor[T]())
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrNotRegistered, reflect.TypeFor[T]())
	}
	v, err := c.Decode(rt, doc)
	if err != nil {
		return nil, err
	}
	return v.(*T), nil
}

func (c *Codec) decodeRecord(rt *schema.RecordType, doc any) (reflect.Value, error) {
	m, ok := doc.(*document.Map)
	if !ok {
		return reflect.Value{}, &DecodeValueError{Value: doc, Type: rt.GoType(), Err: ErrNotMapping}
	}

	fields := rt.Fields()
	ptr := rt.New()
	rec := ptr.Elem()

	for _, f := range fields {
		if !f.Construct {
			continue
		}
		if err := c.assign(rt, rec, f, m); err != nil {
			return reflect.Value{}, err
		}
	}

	if init, ok := ptr.Interface().(Initializer); ok {
		if err := init.Initialize(); err != nil {
			return reflect.Value{}, fmt.Errorf("initialize %s: %w", rt.Name(), err)
		}
	}

	for _, f := range fields {
		if f.Construct {
			continue
		}
		if err := c.assign(rt, rec, f, m); err != nil {
			return reflect.Value{}, err
		}
	}
	return ptr, nil
}

func (c *Codec) assign(rt *schema.RecordType, rec reflect.Value, f *schema.FieldSpec, m *document.Map) error {
	v, err := c.fieldValue(rt, f, m)
	if err != nil {
		return err
	}
	rec.FieldByIndex(f.Index).Set(v)
	return nil
}

func (c *Codec) fieldValue(rt *schema.RecordType, f *schema.FieldSpec, m *document.Map) (reflect.Value, error) {
	raw, ok := m.Get(f.Name)
	if ok {
		v, err := c.resolve(raw, f.Type, f.Members)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("decode %s.%s: %w", rt.Name(), f.Name, err)
		}
		return v, nil
	}

	var def any
	switch {
	case f.DefaultFunc != nil:
		def = f.DefaultFunc()
	case f.HasDefault():
		def = deepCopy(f.Default)
	default:
		return reflect.Value{}, &MissingRequiredFieldError{Type: rt.Name(), Field: f.Name}
	}
	if def == nil {
		return reflect.Zero(f.Type), nil
	}
	v := reflect.ValueOf(def)
	if !v.Type().AssignableTo(f.Type) {
		return reflect.Value{}, fmt.Errorf("decode %s.%s: default %T is not assignable to %s",
			rt.Name(), f.Name, def, f.Type)
	}
	return v, nil
}

// StructurallyMatches reports whether every field of rt without a default is
// a key of doc and doc has no keys outside rt's fields. Callers use it to
// pick among candidate record types for one document.
func (c *Codec) StructurallyMatches(rt *schema.RecordType, doc any) bool {
	m, ok := doc.(*document.Map)
	if !ok || rt == nil {
		return false
	}
	for _, f := range rt.Fields() {
		if !f.HasDefault() && !m.Has(f.Name) {
			return false
		}
	}
	for _, key := range m.Keys() {
		if _, ok := rt.Field(key); !ok {
			return false
		}
	}
	return true
}

// Select returns the first candidate doc structurally matches.
func (c *Codec) Select(doc any, candidates ...*schema.RecordType) (*schema.RecordType, error) {
	for _, rt := range candidates {
		if c.StructurallyMatches(rt, doc) {
			return rt, nil
		}
	}
	return nil, ErrNoCandidate
}
