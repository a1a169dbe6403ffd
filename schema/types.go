package schema

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/c360studio/semcodec/document"
	"github.com/c360studio/semcodec/rdf"
)

// Cardinality is the graph-encode presence policy of an annotation.
// Only Mandatory makes an empty value an error.
type Cardinality uint8

const (
	// Optional values are emitted when present and skipped silently when empty.
	Optional Cardinality = iota
	// Recommended values behave like Optional at encode time.
	Recommended
	// Mandatory values must be non-empty.
	Mandatory
)

// String returns the tag spelling of c.
func (c Cardinality) String() string {
	switch c {
	case Mandatory:
		return "mandatory"
	case Recommended:
		return "recommended"
	default:
		return "optional"
	}
}

// ParseCardinality parses the tag spelling of a cardinality.
func ParseCardinality(s string) (Cardinality, bool) {
	switch strings.ToLower(s) {
	case "mandatory":
		return Mandatory, true
	case "recommended":
		return Recommended, true
	case "optional":
		return Optional, true
	}
	return 0, false
}

// Direction selects which side of the triple the record sits on.
type Direction uint8

const (
	// Forward emits (record, predicate, value).
	Forward Direction = iota
	// Inverse emits (value, predicate, record).
	Inverse
)

// String returns the tag spelling of d.
func (d Direction) String() string {
	if d == Inverse {
		return "inverse"
	}
	return "forward"
}

// Mapper converts one field element into the value placed in a triple.
// It may return an rdf.Term, a record (encoded recursively), a Go scalar
// (converted with rdf.LiteralOf) or nil (nothing is emitted).
// Record elements are passed as pointers.
type Mapper func(v any) (any, error)

// Annotation binds a field to one triple-producing predicate.
type Annotation struct {
	Predicate   rdf.IRI
	Cardinality Cardinality
	Map         Mapper
	Direction   Direction
}

// String renders the annotation in struct-tag form.
func (a Annotation) String() string {
	s := fmt.Sprintf("%s,%s", a.Predicate, a.Cardinality)
	if a.Direction == Inverse {
		s += ",inverse"
	}
	return s
}

// Shape classifies a declared field type.
type Shape uint8

const (
	ShapeScalar Shape = iota
	ShapeRecord
	ShapeOptional
	ShapeSequence
	ShapeSet
	ShapeUnion
	ShapeType
)

var shapeNames = [...]string{"scalar", "record", "optional", "sequence", "set", "union", "type"}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", s)
}

// Union holds the value of a tagged-union field. The candidate member types
// are declared per field with OneOf, in priority order.
type Union struct {
	Value any
}

// Reflected types with special handling.
var (
	UnionType     = reflect.TypeFor[Union]()
	TypeValueType = reflect.TypeFor[reflect.Type]()
	TimeType      = reflect.TypeFor[time.Time]()
	DateType      = reflect.TypeFor[document.Date]()
	emptyStruct   = reflect.TypeFor[struct{}]()
)

// FieldSpec is the resolved metadata of one record field.
type FieldSpec struct {
	// Name is the document key.
	Name string
	// GoName is the struct field name.
	GoName string
	// Index is the reflect index path from the record struct.
	Index []int
	// Type is the declared Go type.
	Type reflect.Type
	// Members lists the union member types, in priority order.
	Members []reflect.Type
	// Construct is false for post-construction fields.
	Construct bool
	// Default is copied into the record when the key is absent.
	Default any
	// DefaultFunc builds a fresh default when the key is absent.
	DefaultFunc func() any
	// Annotations are the graph predicates emitted for the field.
	Annotations []Annotation
	// Owner is the record type that declared the field last.
	Owner string

	hasDefault bool
}

// HasDefault reports whether an absent key can be filled in.
func (f *FieldSpec) HasDefault() bool {
	return f.hasDefault || f.DefaultFunc != nil
}

// Mandatory reports whether any annotation on f is mandatory.
func (f *FieldSpec) Mandatory() (Annotation, bool) {
	for _, a := range f.Annotations {
		if a.Cardinality == Mandatory {
			return a, true
		}
	}
	return Annotation{}, false
}

func (f *FieldSpec) clone() *FieldSpec {
	c := *f
	c.Index = append([]int(nil), f.Index...)
	c.Members = append([]reflect.Type(nil), f.Members...)
	c.Annotations = append([]Annotation(nil), f.Annotations...)
	return &c
}

// RecordType is a registered struct type with its resolved field list.
type RecordType struct {
	name    string
	goType  reflect.Type
	classes []rdf.IRI
	bases   []*RecordType
	fields  []*FieldSpec
	byName  map[string]*FieldSpec
}

// Name returns the registered name.
func (rt *RecordType) Name() string { return rt.name }

// String returns the registered name.
func (rt *RecordType) String() string { return rt.name }

// GoType returns the struct type.
func (rt *RecordType) GoType() reflect.Type { return rt.goType }

// Bases returns the directly embedded record types.
func (rt *RecordType) Bases() []*RecordType {
	return append([]*RecordType(nil), rt.bases...)
}

// Fields returns the ordered field list, base fields first.
func (rt *RecordType) Fields() []*FieldSpec {
	return append([]*FieldSpec(nil), rt.fields...)
}

// Field looks up a field by document key.
func (rt *RecordType) Field(name string) (*FieldSpec, bool) {
	f, ok := rt.byName[name]
	return f, ok
}

// Classes returns the rdf:type tags of the whole base chain, least derived
// first, without duplicates.
func (rt *RecordType) Classes() []rdf.IRI {
	seen := make(map[rdf.IRI]struct{})
	var out []rdf.IRI
	var walk func(*RecordType)
	walk = func(t *RecordType) {
		for _, b := range t.bases {
			walk(b)
		}
		for _, c := range t.classes {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	walk(rt)
	return out
}

// Extends reports whether other appears in rt's base chain.
func (rt *RecordType) Extends(other *RecordType) bool {
	for _, b := range rt.bases {
		if b == other || b.Extends(other) {
			return true
		}
	}
	return false
}

// New allocates a zero record and returns a pointer to it.
func (rt *RecordType) New() reflect.Value {
	return reflect.New(rt.goType)
}
