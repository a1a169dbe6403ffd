// Package schema holds the record type registry: which Go structs the codecs
// understand, their ordered fields, defaults and graph annotations.
//
// Fields are declared with struct tags:
//
//	type Dataset struct {
//	    Resource                                   // base record type
//	    Keywords []string `codec:"keywords" rdf:"dcat:keyword"`
//	    Issued   string   `codec:"issued,post"`
//	}
//
// and refined with registration options for things tags cannot carry
// (defaults, mapper functions, union members).
package schema

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Registry maps Go struct types to RecordTypes. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byType   map[reflect.Type]*RecordType
	byName   map[string]*RecordType
	pending  map[reflect.Type]string // forward references -> first referencing type
	prefixes map[string]string
	mappers  map[string]Mapper
	logger   *slog.Logger
}

var defaultRegistry = NewRegistry(nil)

// Global returns the process-wide registry used by vocabulary packages.
func Global() *Registry {
	return defaultRegistry
}

// NewRegistry creates a registry with the standard prefixes and mappers.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		byType:   make(map[reflect.Type]*RecordType),
		byName:   make(map[string]*RecordType),
		pending:  make(map[reflect.Type]string),
		prefixes: defaultPrefixes(),
		mappers:  defaultMappers(),
		logger:   logger,
	}
	return r
}

// MustRegister is Register that panics on error. Intended for init().
func (r *Registry) MustRegister(sample any, opts ...Option) *RecordType {
	rt, err := r.Register(sample, opts...)
	if err != nil {
		panic("failed to register record type: " + err.Error())
	}
	return rt
}

// Define registers T.
func Define[T any](r *Registry, opts ...Option) (*RecordType, error) {
	return r.Register((*T)(nil), opts...)
}

// Register adds the struct type of sample (a value or a pointer) to the
// registry. Embedded record types, and record types held by value, must be
// registered first. A pointer field may name a record type registered later;
// Validate reports any that never are.
func (r *Registry) Register(sample any, opts ...Option) (*RecordType, error) {
	t := reflect.TypeOf(sample)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, invalid(fmt.Sprintf("%T", sample), "record types must be structs")
	}

	def := &definition{name: t.Name(), fields: make(map[string][]FieldOption)}
	for _, opt := range opts {
		opt(def)
	}
	if def.name == "" {
		return nil, invalid(t.String(), "anonymous structs need a Name option")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byType[t]; ok {
		return nil, invalid(t.String(), "already registered as %s", existing.name)
	}
	if _, ok := r.byName[def.name]; ok {
		return nil, invalid(t.String(), "name %q already taken", def.name)
	}

	rt := &RecordType{name: def.name, goType: t, classes: def.classes}
	refs := &typeRefs{self: t}
	if err := r.buildFields(rt, def, refs); err != nil {
		return nil, err
	}
	r.byType[t] = rt
	r.byName[rt.name] = rt
	delete(r.pending, t)
	for _, fwd := range refs.forward {
		if _, ok := r.byType[fwd]; ok {
			continue
		}
		if _, ok := r.pending[fwd]; !ok {
			r.pending[fwd] = rt.name
		}
	}

	r.logger.Debug("Registered record type",
		slog.String("type", rt.name),
		slog.Int("fields", len(rt.fields)),
		slog.Int("bases", len(rt.bases)))
	return rt, nil
}

// buildFields resolves the ordered field list: base fields first (least
// derived first), then own fields. A redeclared key replaces the earlier
// spec in place.
func (r *Registry) buildFields(rt *RecordType, def *definition, refs *typeRefs) error {
	t := rt.goType
	var fields []*FieldSpec
	pos := make(map[string]int)
	own := make(map[string]bool)
	put := func(f *FieldSpec) {
		if i, ok := pos[f.Name]; ok {
			fields[i] = f
			return
		}
		pos[f.Name] = len(fields)
		fields = append(fields, f)
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		ft := sf.Type
		if ft.Kind() == reflect.Pointer {
			if _, ok := r.byType[ft.Elem()]; ok {
				return invalid(rt.name, "base %s must be embedded by value", ft.Elem())
			}
			continue
		}
		base, ok := r.byType[ft]
		if !ok {
			if ft.Kind() == reflect.Struct && hasExportedFields(ft) && sf.Tag.Get("codec") != "-" {
				return invalid(rt.name, "embedded struct %s is not a registered record type", ft)
			}
			continue
		}
		rt.bases = append(rt.bases, base)
		for _, bf := range base.fields {
			c := bf.clone()
			c.Index = append([]int{i}, bf.Index...)
			put(c)
		}
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("codec")
		if tag == "-" {
			continue
		}
		name, post, err := parseCodecTag(tag)
		if err != nil {
			return invalid(rt.name, "field %s: %v", sf.Name, err)
		}
		if name == "" {
			name = sf.Name
		}
		if err := r.validateType(sf.Type, refs, false); err != nil {
			return invalid(rt.name, "field %s: %v", sf.Name, err)
		}
		anns, err := r.parseAnnotations(sf.Tag.Get("rdf"))
		if err != nil {
			return invalid(rt.name, "field %s: %v", sf.Name, err)
		}
		own[name] = true
		put(&FieldSpec{
			Name:        name,
			GoName:      sf.Name,
			Index:       []int{i},
			Type:        sf.Type,
			Construct:   !post,
			Annotations: anns,
			Owner:       rt.name,
		})
	}

	for _, key := range def.fieldOrder {
		i, ok := pos[key]
		if !ok {
			return invalid(rt.name, "unknown field %q", key)
		}
		fd := &fieldDef{}
		for _, opt := range def.fields[key] {
			opt(fd)
		}
		f := fields[i].clone()
		f.Owner = rt.name
		if fd.hasDef {
			f.Default, f.hasDefault, f.DefaultFunc = fd.def, true, nil
		}
		if fd.defFunc != nil {
			f.Default, f.hasDefault, f.DefaultFunc = nil, false, fd.defFunc
		}
		if len(fd.annotations) > 0 {
			if own[key] {
				f.Annotations = append(f.Annotations, fd.annotations...)
			} else {
				f.Annotations = fd.annotations
			}
		}
		if len(fd.members) > 0 {
			f.Members = fd.members
		}
		if fd.post {
			f.Construct = false
		}
		fields[i] = f
	}

	for _, f := range fields {
		if err := r.validateField(f, refs); err != nil {
			return invalid(rt.name, "field %s: %v", f.Name, err)
		}
	}

	rt.fields = fields
	rt.byName = make(map[string]*FieldSpec, len(fields))
	for _, f := range fields {
		rt.byName[f.Name] = f
	}
	return nil
}

func (r *Registry) validateField(f *FieldSpec, refs *typeRefs) error {
	if containsUnion(f.Type) && len(f.Members) == 0 {
		return fmt.Errorf("union field needs OneOf members")
	}
	for _, m := range f.Members {
		if m == nil {
			return fmt.Errorf("nil union member")
		}
		if err := r.validateType(m, refs, false); err != nil {
			return fmt.Errorf("union member %s: %w", m, err)
		}
	}
	if f.hasDefault && f.Default != nil && !reflect.TypeOf(f.Default).AssignableTo(f.Type) {
		return fmt.Errorf("default %T is not assignable to %s", f.Default, f.Type)
	}
	return nil
}

// typeRefs collects the record types a registration refers to.
type typeRefs struct {
	self    reflect.Type
	forward []reflect.Type
}

// validateType rejects shapes outside the supported closed set. Structs must
// be record types; behind a pointer an unregistered struct is taken as a
// forward reference.
func (r *Registry) validateType(t reflect.Type, refs *typeRefs, viaPointer bool) error {
	switch t {
	case TypeValueType, UnionType, TimeType, DateType:
		return nil
	}
	switch t.Kind() {
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return fmt.Errorf("pointer to pointer %s is not supported", t)
		}
		return r.validateType(t.Elem(), refs, true)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return nil
		}
		return r.validateType(t.Elem(), refs, viaPointer)
	case reflect.Map:
		if t.Elem() != emptyStruct {
			return fmt.Errorf("map %s is not supported; use map[K]struct{} for sets", t)
		}
		if !t.Key().Comparable() {
			return fmt.Errorf("set key %s is not comparable", t.Key())
		}
		return r.validateType(t.Key(), refs, false)
	case reflect.Struct:
		if _, ok := r.byType[t]; ok || t == refs.self {
			return nil
		}
		if viaPointer {
			refs.forward = append(refs.forward, t)
			return nil
		}
		return fmt.Errorf("struct %s is not a registered record type", t)
	case reflect.Array, reflect.Chan, reflect.Func, reflect.UnsafePointer,
		reflect.Complex64, reflect.Complex128, reflect.Uintptr:
		return fmt.Errorf("type %s is not supported", t)
	}
	return nil
}

// Validate reports record types named by pointer fields that were never
// registered.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.pending) == 0 {
		return nil
	}
	missing := make([]string, 0, len(r.pending))
	for t, owner := range r.pending {
		missing = append(missing, fmt.Sprintf("%s (referenced by %s)", t, owner))
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: unregistered record types: %s", ErrInvalidSchema, strings.Join(missing, ", "))
}

func containsUnion(t reflect.Type) bool {
	if t == UnionType {
		return true
	}
	switch t.Kind() {
	case reflect.Pointer, reflect.Slice:
		return containsUnion(t.Elem())
	}
	return false
}

func hasExportedFields(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

func parseCodecTag(tag string) (name string, post bool, err error) {
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		switch strings.TrimSpace(p) {
		case "post":
			post = true
		case "":
		default:
			return "", false, fmt.Errorf("unknown codec tag option %q", p)
		}
	}
	return name, post, nil
}

// Lookup finds a record type by registered name.
func (r *Registry) Lookup(name string) (*RecordType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.byName[name]
	return rt, ok
}

// ForType finds the record type of t, unwrapping pointers.
func (r *Registry) ForType(t reflect.Type) (*RecordType, bool) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.byType[t]
	return rt, ok
}

// Of finds the record type of a value.
func (r *Registry) Of(v any) (*RecordType, bool) {
	return r.ForType(reflect.TypeOf(v))
}

// IsRecord reports whether t is exactly a registered struct type.
func (r *Registry) IsRecord(t reflect.Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byType[t]
	return ok
}

// Types returns all record types sorted by name.
func (r *Registry) Types() []*RecordType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*RecordType, 0, len(r.byName))
	for _, rt := range r.byName {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Resolve returns the ordered field list of rt, merged over its base chain.
func (r *Registry) Resolve(rt *RecordType) []*FieldSpec {
	return rt.Fields()
}

// ShapeOf classifies a declared type against the current registrations.
func (r *Registry) ShapeOf(t reflect.Type) Shape {
	switch t {
	case TypeValueType:
		return ShapeType
	case UnionType:
		return ShapeUnion
	case TimeType, DateType:
		return ShapeScalar
	}
	switch t.Kind() {
	case reflect.Pointer:
		return ShapeOptional
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ShapeScalar
		}
		return ShapeSequence
	case reflect.Map:
		if t.Elem() == emptyStruct {
			return ShapeSet
		}
	case reflect.Struct:
		if r.IsRecord(t) {
			return ShapeRecord
		}
	}
	return ShapeScalar
}

// RecordReachable reports whether a record type occurs anywhere inside t,
// looking through pointers, sequences, sets and the given union members.
func (r *Registry) RecordReachable(t reflect.Type, members []reflect.Type) bool {
	switch t {
	case UnionType:
		for _, m := range members {
			if r.RecordReachable(m, nil) {
				return true
			}
		}
		return false
	case TypeValueType, TimeType, DateType:
		return false
	}
	switch t.Kind() {
	case reflect.Struct:
		return r.IsRecord(t)
	case reflect.Pointer, reflect.Slice:
		return r.RecordReachable(t.Elem(), members)
	case reflect.Map:
		if t.Elem() == emptyStruct {
			return r.RecordReachable(t.Key(), members)
		}
	}
	return false
}

// TypeName returns the registered name for t, or its Go spelling.
func (r *Registry) TypeName(t reflect.Type) string {
	if rt, ok := r.ForType(t); ok && t.Kind() == reflect.Struct {
		return rt.name
	}
	return t.String()
}
