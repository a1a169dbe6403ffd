// Package codec converts registered records to and from Documents and merges
// records field by field.
//
// Decoding resolves every raw value against its declared field type with a
// fixed rule order: exact type, nested record, container, union, widening,
// temporal string, failure. See Codec.Resolve.
package codec

import (
	"log/slog"
	"reflect"

	"github.com/c360studio/semcodec/metrics"
	"github.com/c360studio/semcodec/schema"
)

// Widening converts a raw value into a declared type. It returns
// ErrNoWidening when it does not apply and any other error when it applies
// but fails; both fall through to the next rule.
type Widening func(raw any, to reflect.Type) (reflect.Value, error)

// Initializer is implemented by records that run setup once their
// construction fields are assigned. Post-construction fields are assigned
// after Initialize returns.
type Initializer interface {
	Initialize() error
}

// Codec is a document codec bound to a schema registry.
type Codec struct {
	reg       *schema.Registry
	logger    *slog.Logger
	metrics   *metrics.Metrics
	widenings []Widening
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) { c.logger = logger }
}

// WithMetrics records decode and encode counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Codec) { c.metrics = m }
}

// WithWidening adds a widening rule tried after the built-in ones.
func WithWidening(w Widening) Option {
	return func(c *Codec) { c.widenings = append(c.widenings, w) }
}

// New creates a codec over reg. A nil reg means schema.Global().
func New(reg *schema.Registry, opts ...Option) *Codec {
	if reg == nil {
		reg = schema.Global()
	}
	c := &Codec{reg: reg}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Registry returns the schema registry the codec resolves types against.
func (c *Codec) Registry() *schema.Registry {
	return c.reg
}

var std = New(nil)

// Encode encodes record with the default registry.
func Encode(record any) (any, error) {
	return std.Encode(record)
}

// Decode decodes doc into a new record of rt with the default registry.
func Decode(rt *schema.RecordType, doc any) (any, error) {
	return std.Decode(rt, doc)
}

// Merge copies fields from source into target with the default registry.
func Merge(target, source any, keys ...string) error {
	return std.Merge(target, source, keys...)
}

// StructurallyMatches reports whether doc fits rt, see Codec.StructurallyMatches.
func StructurallyMatches(rt *schema.RecordType, doc any) bool {
	return std.StructurallyMatches(rt, doc)
}
