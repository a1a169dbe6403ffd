package schema

import (
	"reflect"

	"github.com/c360studio/semcodec/rdf"
)

// Option configures a record type at registration.
type Option func(*definition)

type definition struct {
	name       string
	classes    []rdf.IRI
	fields     map[string][]FieldOption
	fieldOrder []string
}

// Name overrides the registered name (default: the Go type name).
func Name(name string) Option {
	return func(d *definition) { d.name = name }
}

// Class adds rdf:type tags emitted for every record of the type.
func Class(iris ...rdf.IRI) Option {
	return func(d *definition) { d.classes = append(d.classes, iris...) }
}

// Field attaches options to the field with the given document key. The key
// may name an inherited field, overriding it for this type only.
func Field(key string, opts ...FieldOption) Option {
	return func(d *definition) {
		if _, ok := d.fields[key]; !ok {
			d.fieldOrder = append(d.fieldOrder, key)
		}
		d.fields[key] = append(d.fields[key], opts...)
	}
}

// FieldOption configures one field.
type FieldOption func(*fieldDef)

type fieldDef struct {
	def         any
	hasDef      bool
	defFunc     func() any
	annotations []Annotation
	members     []reflect.Type
	post        bool
}

// Default sets the value used when the key is absent. It is deep-copied on
// every use.
func Default(v any) FieldOption {
	return func(f *fieldDef) {
		f.def = v
		f.hasDef = true
		f.defFunc = nil
	}
}

// DefaultFunc sets a factory called when the key is absent.
func DefaultFunc(fn func() any) FieldOption {
	return func(f *fieldDef) {
		f.defFunc = fn
		f.hasDef = false
		f.def = nil
	}
}

// Annotate adds a graph annotation.
func Annotate(a Annotation) FieldOption {
	return func(f *fieldDef) { f.annotations = append(f.annotations, a) }
}

// OneOf declares the member types of a Union field, in priority order.
func OneOf(types ...reflect.Type) FieldOption {
	return func(f *fieldDef) { f.members = append(f.members, types...) }
}

// PostConstruct marks the field as assigned after construction.
func PostConstruct() FieldOption {
	return func(f *fieldDef) { f.post = true }
}
