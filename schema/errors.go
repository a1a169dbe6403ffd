package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchema is wrapped by every registration failure.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrNotRegistered is returned when a value's type has no RecordType.
	ErrNotRegistered = errors.New("record type not registered")
)

func invalid(typeName, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidSchema, typeName, fmt.Sprintf(format, args...))
}
