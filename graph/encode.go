// Package graph encodes registered records into RDF triples and publishes
// the result to the knowledge graph ingestion subject.
package graph

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semcodec/document"
	"github.com/c360studio/semcodec/metrics"
	"github.com/c360studio/semcodec/rdf"
	"github.com/c360studio/semcodec/schema"
)

// Resource is implemented by records that carry their own subject term.
// Records without one, or returning nil, get a blank node per encode call.
type Resource interface {
	Subject() rdf.Term
}

// Visited tracks the records reached during one top-level encode and the
// nodes assigned to them. Records are identified by pointer. A Visited must
// not be shared between unrelated encodes.
type Visited struct {
	seen  map[any]struct{}
	nodes map[any]rdf.Term
}

// NewVisited returns an empty visited-set.
func NewVisited() *Visited {
	return &Visited{
		seen:  make(map[any]struct{}),
		nodes: make(map[any]rdf.Term),
	}
}

// Contains reports whether the record behind ptr has been encoded.
func (v *Visited) Contains(ptr any) bool {
	_, ok := v.seen[ptr]
	return ok
}

// Len returns the number of records encoded.
func (v *Visited) Len() int { return len(v.seen) }

// Encoder writes records into triple sinks.
type Encoder struct {
	reg     *schema.Registry
	logger  *slog.Logger
	metrics *metrics.Metrics
	newID   func() string
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) { e.logger = logger }
}

// WithMetrics records encode counts and emitted triples.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Encoder) { e.metrics = m }
}

// WithBlankNodeIDs sets the blank node id generator. The default is a
// random UUID.
func WithBlankNodeIDs(fn func() string) Option {
	return func(e *Encoder) { e.newID = fn }
}

// NewEncoder creates an encoder over reg. A nil reg means schema.Global().
func NewEncoder(reg *schema.Registry, opts ...Option) *Encoder {
	if reg == nil {
		reg = schema.Global()
	}
	e := &Encoder{reg: reg, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Encode writes record and every record reachable from it through annotated
// fields into sink, returning the record's subject. Each call uses a fresh
// Visited.
//
// Encoding is not transactional: triples added before a failing field stay
// in the sink.
func (e *Encoder) Encode(record any, sink rdf.Sink) (rdf.Term, error) {
	counter := &countingSink{sink: sink}
	node, err := e.EncodeVisited(record, counter, NewVisited())

	name := fmt.Sprintf("%T", record)
	if rt, ok := e.reg.Of(record); ok {
		name = rt.Name()
	}
	e.metrics.ObserveGraphEncode(name, counter.n, err)
	if err != nil {
		e.logger.Debug("Graph encode failed", slog.String("type", name), slog.Any("error", err))
		return nil, err
	}
	e.logger.Debug("Encoded record graph", slog.String("type", name), slog.Int("triples", counter.n))
	return node, nil
}

// EncodeVisited is Encode with a caller-owned visited-set, for encoding
// several roots into one graph with shared nodes. A record already in
// visited emits nothing and returns its node.
func (e *Encoder) EncodeVisited(record any, sink rdf.Sink, visited *Visited) (rdf.Term, error) {
	if visited == nil {
		return nil, fmt.Errorf("graph encode: nil visited-set")
	}
	ptr, rt, ok := e.record(record)
	if !ok {
		return nil, fmt.Errorf("graph encode: %w: %T", schema.ErrNotRegistered, record)
	}
	if err := e.reg.Validate(); err != nil {
		return nil, fmt.Errorf("graph encode: %w", err)
	}
	if err := e.encodeRecord(ptr, rt, sink, visited); err != nil {
		return nil, err
	}
	return e.node(ptr, visited), nil
}

// record returns a pointer to a registered struct held by v. Records held by
// value are copied, giving them a fresh identity.
func (e *Encoder) record(v any) (reflect.Value, *schema.RecordType, bool) {
	rv := reflect.ValueOf(v)
	switch {
	case !rv.IsValid():
		return reflect.Value{}, nil, false
	case rv.Kind() == reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return reflect.Value{}, nil, false
		}
	case rv.Kind() == reflect.Struct:
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		rv = p
	default:
		return reflect.Value{}, nil, false
	}
	if !e.reg.IsRecord(rv.Type().Elem()) {
		return reflect.Value{}, nil, false
	}
	rt, _ := e.reg.ForType(rv.Type())
	return rv, rt, true
}

func (e *Encoder) node(ptr reflect.Value, visited *Visited) rdf.Term {
	key := ptr.Interface()
	if n, ok := visited.nodes[key]; ok {
		return n
	}
	var n rdf.Term
	if r, ok := key.(Resource); ok {
		n = r.Subject()
	}
	if n == nil || n.String() == "" {
		n = rdf.BlankNode{ID: e.newID()}
	}
	visited.nodes[key] = n
	return n
}

func (e *Encoder) encodeRecord(ptr reflect.Value, rt *schema.RecordType, sink rdf.Sink, visited *Visited) error {
	key := ptr.Interface()
	if visited.Contains(key) {
		return nil
	}
	visited.seen[key] = struct{}{}

	subject := e.node(ptr, visited)
	for _, class := range rt.Classes() {
		sink.Add(subject, rdf.Type, class)
	}

	rec := ptr.Elem()
	for _, f := range rt.Fields() {
		if len(f.Annotations) == 0 {
			continue
		}
		values := e.elements(rec.FieldByIndex(f.Index))
		if len(values) == 0 {
			if a, ok := f.Mandatory(); ok {
				return &MandatoryGraphPropertyError{Type: rt.Name(), Field: f.Name, Predicate: a.Predicate}
			}
			continue
		}
		for _, a := range f.Annotations {
			for _, v := range values {
				if err := e.emit(subject, f, a, v, sink, visited); err != nil {
					return err
				}
			}
		}
	}

	if x, ok := key.(rdf.ExtraTripler); ok {
		for _, t := range x.ExtraTriples() {
			if t.Inverse {
				sink.Add(t.Object, t.Predicate, subject)
			} else {
				sink.Add(subject, t.Predicate, t.Object)
			}
		}
	}
	return nil
}

func (e *Encoder) emit(subject rdf.Term, f *schema.FieldSpec, a schema.Annotation, v any, sink rdf.Sink, visited *Visited) error {
	out := v
	if a.Map != nil {
		mapped, err := a.Map(v)
		if err != nil {
			return &MappingFunctionError{Field: f.Name, Predicate: a.Predicate, Err: err}
		}
		out = mapped
	}
	if out == nil {
		return nil
	}

	var term rdf.Term
	var nested reflect.Value
	var nestedType *schema.RecordType
	switch x := out.(type) {
	case rdf.Term:
		term = x
	default:
		if ptr, rt, ok := e.record(x); ok {
			term = e.node(ptr, visited)
			nested, nestedType = ptr, rt
			break
		}
		lit, err := rdf.LiteralOf(x)
		if err != nil {
			return &MappingFunctionError{Field: f.Name, Predicate: a.Predicate, Err: err}
		}
		term = lit
	}

	if a.Direction == schema.Inverse {
		if term.Kind() == rdf.TermLiteral {
			return &MappingFunctionError{Field: f.Name, Predicate: a.Predicate, Err: ErrLiteralSubject}
		}
		sink.Add(term, a.Predicate, subject)
	} else {
		sink.Add(subject, a.Predicate, term)
	}

	if nestedType != nil {
		return e.encodeRecord(nested, nestedType, sink, visited)
	}
	return nil
}

// elements normalizes a field value to the list of items it contributes:
// sequences and sets fan out, empty values contribute nothing, and records
// are passed as pointers.
func (e *Encoder) elements(v reflect.Value) []any {
	if isEmpty(v) {
		return nil
	}
	switch {
	case v.Type() == schema.UnionType:
		return e.elements(reflect.ValueOf(v.Interface().(schema.Union).Value))
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() != reflect.Uint8:
		var out []any
		for i := 0; i < v.Len(); i++ {
			if item, ok := e.item(v.Index(i)); ok {
				out = append(out, item)
			}
		}
		return out
	case v.Kind() == reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		var out []any
		for _, k := range keys {
			if item, ok := e.item(k); ok {
				out = append(out, item)
			}
		}
		return out
	}
	if item, ok := e.item(v); ok {
		return []any{item}
	}
	return nil
}

func (e *Encoder) item(v reflect.Value) (any, bool) {
	if isEmpty(v) {
		return nil, false
	}
	switch {
	case v.Type() == schema.TypeValueType:
		return e.reg.TypeName(v.Interface().(reflect.Type)), true
	case v.Type() == schema.UnionType:
		return e.item(reflect.ValueOf(v.Interface().(schema.Union).Value))
	case v.Kind() == reflect.Interface:
		return e.item(v.Elem())
	case v.Kind() == reflect.Pointer && !e.reg.IsRecord(v.Type().Elem()):
		return e.item(v.Elem())
	case v.Kind() == reflect.Struct && e.reg.IsRecord(v.Type()):
		if v.CanAddr() {
			return v.Addr().Interface(), true
		}
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		return p.Interface(), true
	}
	return v.Interface(), true
}

// isEmpty reports values that contribute no triples. Numbers and booleans
// are always present.
func isEmpty(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Type() {
	case schema.TimeType:
		return v.Interface().(time.Time).IsZero()
	case schema.DateType:
		return v.Interface().(document.Date).IsZero()
	case schema.UnionType:
		return isEmpty(reflect.ValueOf(v.Interface().(schema.Union).Value))
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map, reflect.String:
		return v.Len() == 0
	}
	return false
}

type countingSink struct {
	sink rdf.Sink
	n    int
}

func (c *countingSink) Add(s rdf.Term, p rdf.IRI, o rdf.Term) {
	c.n++
	c.sink.Add(s, p, o)
}
