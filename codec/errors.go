package codec

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrNotMapping is the cause when a record is decoded from a non-mapping.
	ErrNotMapping = errors.New("document is not a mapping")
	// ErrStructureMismatch is the cause when a mapping does not structurally
	// match a nested record type.
	ErrStructureMismatch = errors.New("mapping does not match record structure")
	// ErrNoWidening is returned by a Widening that does not apply.
	ErrNoWidening = errors.New("no widening applies")
	// ErrNoCandidate is returned by Select when no candidate matches.
	ErrNoCandidate = errors.New("no candidate record type matches")
	// ErrTypeMismatch is returned by Merge for differing record types.
	ErrTypeMismatch = errors.New("record types differ")
)

// DecodeValueError reports a raw value that no coercion rule could resolve
// against the declared type. Err is the last rule's failure.
type DecodeValueError struct {
	Value any
	Type  reflect.Type
	Err   error
}

func (e *DecodeValueError) Error() string {
	msg := fmt.Sprintf("cannot decode %#v (%T) as %s", e.Value, e.Value, e.Type)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeValueError) Unwrap() error { return e.Err }

// MissingRequiredFieldError reports an absent key with no default.
type MissingRequiredFieldError struct {
	Type  string
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("%s: missing required field %q", e.Type, e.Field)
}

// UnresolvedUnionError reports a value no union member accepted.
// Errs holds one failure per member, in member order.
type UnresolvedUnionError struct {
	Value   any
	Members []reflect.Type
	Errs    []error
}

func (e *UnresolvedUnionError) Error() string {
	names := make([]string, len(e.Members))
	for i, m := range e.Members {
		names[i] = m.String()
	}
	return fmt.Sprintf("%#v matches none of [%s]", e.Value, strings.Join(names, ", "))
}

func (e *UnresolvedUnionError) Unwrap() []error { return e.Errs }
