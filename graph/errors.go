package graph

import (
	"errors"
	"fmt"

	"github.com/c360studio/semcodec/rdf"
)

// ErrLiteralSubject is returned when an inverse annotation maps a value to a
// literal, which cannot be a triple subject.
var ErrLiteralSubject = errors.New("literal cannot be a subject")

// MandatoryGraphPropertyError reports an empty value on a field with a
// mandatory annotation.
type MandatoryGraphPropertyError struct {
	Type      string
	Field     string
	Predicate rdf.IRI
}

func (e *MandatoryGraphPropertyError) Error() string {
	return fmt.Sprintf("%s.%s: mandatory property <%s> has no value", e.Type, e.Field, e.Predicate)
}

// MappingFunctionError wraps a failure to turn a field value into a term,
// usually raised by the annotation's mapper.
type MappingFunctionError struct {
	Field     string
	Predicate rdf.IRI
	Err       error
}

func (e *MappingFunctionError) Error() string {
	return fmt.Sprintf("map field %s to <%s>: %v", e.Field, e.Predicate, e.Err)
}

func (e *MappingFunctionError) Unwrap() error { return e.Err }
