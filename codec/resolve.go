package codec

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/c360studio/semcodec/document"
	"github.com/c360studio/semcodec/schema"
)

// Time layouts accepted for time.Time fields, most specific first. Times
// without an offset are taken as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	document.DateLayout,
}

// Resolve converts a raw Document value into a value assignable to declared.
// members lists the union member types when declared contains a
// schema.Union. Rules are tried in order and the first success wins:
//
//  1. the value already has the declared type
//  2. a mapping that structurally matches a nested record type
//  3. containers (optional, sequence, set)
//  4. unions, members in declared order
//  5. numeric and named-type widenings
//  6. ISO-8601 strings into time.Time or document.Date
//  7. DecodeValueError
//
// Sequences and sets are resolved element-wise only when a record type is
// reachable inside the element type. Otherwise elements are copied by kind
// without validation, so [300] decodes into []int8 as [44] and date strings
// are not parsed inside a []time.Time.
func (c *Codec) Resolve(raw any, declared reflect.Type, members ...reflect.Type) (reflect.Value, error) {
	return c.resolve(raw, declared, members)
}

func (c *Codec) resolve(raw any, t reflect.Type, members []reflect.Type) (reflect.Value, error) {
	if v, ok := exact(raw, t); ok {
		return v, nil
	}

	var cause error
	try := func(v reflect.Value, err error) bool {
		if err == nil {
			return true
		}
		if cause == nil || !errors.Is(err, ErrNoWidening) {
			cause = err
		}
		return false
	}

	if m, ok := raw.(*document.Map); ok && t.Kind() == reflect.Struct && c.reg.IsRecord(t) {
		if v, err := c.resolveRecord(m, t); try(v, err) {
			return v, nil
		}
	}

	switch c.reg.ShapeOf(t) {
	case schema.ShapeOptional:
		if v, err := c.resolveOptional(raw, t, members); try(v, err) {
			return v, nil
		}
	case schema.ShapeSequence:
		if v, err := c.resolveSequence(raw, t, members); try(v, err) {
			return v, nil
		}
	case schema.ShapeSet:
		if v, err := c.resolveSet(raw, t, members); try(v, err) {
			return v, nil
		}
	case schema.ShapeUnion:
		if v, err := c.resolveUnion(raw, members); try(v, err) {
			return v, nil
		}
	}

	if v, err := c.widen(raw, t); try(v, err) {
		return v, nil
	}

	if t == schema.TimeType || t == schema.DateType {
		switch x := raw.(type) {
		case nil:
			return reflect.Zero(t), nil
		case string:
			if v, err := parseTemporal(x, t); try(v, err) {
				return v, nil
			}
		case time.Time:
			if t == schema.DateType {
				return reflect.ValueOf(document.DateOf(x)), nil
			}
		}
	}

	return reflect.Value{}, &DecodeValueError{Value: raw, Type: t, Err: cause}
}

// exact implements rule 1. nil is the exact value of every nilable type.
func exact(raw any, t reflect.Type) (reflect.Value, bool) {
	if raw == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(raw)
	if rv.Type() == t {
		return rv, true
	}
	if t.Kind() == reflect.Interface && rv.Type().Implements(t) {
		v := reflect.New(t).Elem()
		v.Set(rv)
		return v, true
	}
	return reflect.Value{}, false
}

func (c *Codec) resolveRecord(m *document.Map, t reflect.Type) (reflect.Value, error) {
	rt, _ := c.reg.ForType(t)
	if !c.StructurallyMatches(rt, m) {
		return reflect.Value{}, fmt.Errorf("%s: %w", rt.Name(), ErrStructureMismatch)
	}
	ptr, err := c.decodeRecord(rt, m)
	if err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

func (c *Codec) resolveOptional(raw any, t reflect.Type, members []reflect.Type) (reflect.Value, error) {
	v, err := c.resolve(raw, t.Elem(), members)
	if err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(t.Elem())
	p.Elem().Set(v)
	return p, nil
}

func (c *Codec) resolveSequence(raw any, t reflect.Type, members []reflect.Type) (reflect.Value, error) {
	elems, err := sequence(raw)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(t, 0, len(elems))
	deep := c.reg.RecordReachable(t.Elem(), members)
	for i, e := range elems {
		v, err := c.element(e, t.Elem(), members, deep)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
		}
		out = reflect.Append(out, v)
	}
	return out, nil
}

func (c *Codec) resolveSet(raw any, t reflect.Type, members []reflect.Type) (reflect.Value, error) {
	elems, err := sequence(raw)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeMapWithSize(t, len(elems))
	deep := c.reg.RecordReachable(t.Key(), members)
	present := reflect.ValueOf(struct{}{})
	for i, e := range elems {
		v, err := c.element(e, t.Key(), members, deep)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("[%d]: %w", i, err)
		}
		out.SetMapIndex(v, present)
	}
	return out, nil
}

func (c *Codec) element(raw any, t reflect.Type, members []reflect.Type, deep bool) (reflect.Value, error) {
	if deep {
		return c.resolve(raw, t, members)
	}
	return looseCopy(raw, t)
}

func sequence(raw any) ([]any, error) {
	if s, ok := raw.([]any); ok {
		return s, nil
	}
	rv := reflect.ValueOf(raw)
	if raw == nil || rv.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%T is not a sequence", raw)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// looseCopy places raw into t by kind alone: no parsing, no unions. Numbers
// convert only when the value survives unchanged.
func looseCopy(raw any, t reflect.Type) (reflect.Value, error) {
	if v, ok := exact(raw, t); ok {
		return v, nil
	}
	if raw == nil {
		return reflect.Value{}, fmt.Errorf("nil element for %s", t)
	}
	rv := reflect.ValueOf(raw)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	fam := kindFamily(rv.Kind())
	if fam == 0 || fam != kindFamily(t.Kind()) || !rv.Type().ConvertibleTo(t) {
		return reflect.Value{}, fmt.Errorf("element %T is not a %s", raw, t)
	}
	if fam == 1 && !convertsLosslessly(rv, t) {
		return reflect.Value{}, fmt.Errorf("%v does not fit %s", raw, t)
	}
	return rv.Convert(t), nil
}

// convertsLosslessly reports whether the number rv keeps its value as a t.
func convertsLosslessly(rv reflect.Value, t reflect.Type) bool {
	out := reflect.New(t).Elem()
	switch {
	case isInt(rv.Kind()):
		n := rv.Int()
		switch {
		case isInt(t.Kind()):
			return !out.OverflowInt(n)
		case isUint(t.Kind()):
			return n >= 0 && !out.OverflowUint(uint64(n))
		default:
			return !out.OverflowFloat(float64(n))
		}
	case isUint(rv.Kind()):
		n := rv.Uint()
		switch {
		case isUint(t.Kind()):
			return !out.OverflowUint(n)
		case isInt(t.Kind()):
			return n <= math.MaxInt64 && !out.OverflowInt(int64(n))
		default:
			return !out.OverflowFloat(float64(n))
		}
	default:
		f := rv.Float()
		switch {
		case isFloat(t.Kind()):
			return math.IsNaN(f) || math.IsInf(f, 0) || !out.OverflowFloat(f)
		case f != math.Trunc(f) || math.IsInf(f, 0):
			return false
		case isInt(t.Kind()):
			// 2^63 itself rounds into range as a float64 but not as an int64.
			return f >= math.MinInt64 && f < math.MaxInt64 && !out.OverflowInt(int64(f))
		default:
			return f >= 0 && f < math.MaxUint64 && !out.OverflowUint(uint64(f))
		}
	}
}

// kindFamily groups kinds that looseCopy converts between. Numbers form one
// family.
func kindFamily(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return 1
	case reflect.String:
		return 2
	case reflect.Bool:
		return 3
	}
	return 0
}

func (c *Codec) resolveUnion(raw any, members []reflect.Type) (reflect.Value, error) {
	var errs []error
	for _, m := range members {
		v, err := c.resolve(raw, m, nil)
		if err == nil {
			return reflect.ValueOf(schema.Union{Value: v.Interface()}), nil
		}
		errs = append(errs, err)
	}
	// nil is how an empty union encodes.
	if raw == nil {
		return reflect.ValueOf(schema.Union{}), nil
	}
	return reflect.Value{}, &UnresolvedUnionError{Value: raw, Members: members, Errs: errs}
}

func (c *Codec) widen(raw any, t reflect.Type) (reflect.Value, error) {
	if raw == nil {
		return reflect.Value{}, ErrNoWidening
	}
	v, err := c.widenBuiltin(raw, t)
	if !errors.Is(err, ErrNoWidening) {
		return v, err
	}
	for _, w := range c.widenings {
		wv, werr := w(raw, t)
		if werr == nil {
			if !wv.IsValid() || !wv.Type().AssignableTo(t) {
				err = fmt.Errorf("widening into %s produced an unassignable value", t)
				continue
			}
			return wv, nil
		}
		if !errors.Is(werr, ErrNoWidening) || errors.Is(err, ErrNoWidening) {
			err = werr
		}
	}
	return reflect.Value{}, err
}

func (c *Codec) widenBuiltin(raw any, t reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(raw)
	out := reflect.New(t).Elem()

	if t == schema.TypeValueType {
		name, ok := raw.(string)
		if !ok {
			return reflect.Value{}, ErrNoWidening
		}
		rt, ok := c.reg.Lookup(name)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown record type %q", name)
		}
		out.Set(reflect.ValueOf(rt.GoType()))
		return out, nil
	}

	switch {
	case isInt(rv.Kind()):
		n := rv.Int()
		switch {
		case isInt(t.Kind()):
			if out.OverflowInt(n) {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", n, t)
			}
			out.SetInt(n)
		case isUint(t.Kind()):
			if n < 0 || out.OverflowUint(uint64(n)) {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", n, t)
			}
			out.SetUint(uint64(n))
		case isFloat(t.Kind()):
			out.SetFloat(float64(n))
		default:
			return reflect.Value{}, ErrNoWidening
		}
		return out, nil

	case isUint(rv.Kind()):
		n := rv.Uint()
		switch {
		case isUint(t.Kind()):
			if out.OverflowUint(n) {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", n, t)
			}
			out.SetUint(n)
		case isInt(t.Kind()):
			if n > math.MaxInt64 || out.OverflowInt(int64(n)) {
				return reflect.Value{}, fmt.Errorf("%d overflows %s", n, t)
			}
			out.SetInt(int64(n))
		case isFloat(t.Kind()):
			out.SetFloat(float64(n))
		default:
			return reflect.Value{}, ErrNoWidening
		}
		return out, nil

	case isFloat(rv.Kind()) && isFloat(t.Kind()):
		f := rv.Float()
		if out.OverflowFloat(f) {
			return reflect.Value{}, fmt.Errorf("%g overflows %s", f, t)
		}
		out.SetFloat(f)
		return out, nil

	case rv.Kind() == reflect.String && t.Kind() == reflect.String,
		rv.Kind() == reflect.Bool && t.Kind() == reflect.Bool:
		return rv.Convert(t), nil
	}
	return reflect.Value{}, ErrNoWidening
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uint64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func parseTemporal(s string, t reflect.Type) (reflect.Value, error) {
	if t == schema.DateType {
		d, err := document.ParseDate(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}
	tm, err := parseTime(s)
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(tm), nil
}

// parseTime accepts ISO-8601 date-times with a trailing "Z" or a numeric
// offset, with or without seconds, and plain dates.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO-8601 date-time", s)
}
