// Package storage keeps normalized records in a NATS KV bucket.
//
// Records are stored as the JSON rendering of their encoded document, so a
// stored value always decodes back into the same record type.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semcodec/codec"
	"github.com/c360studio/semcodec/document"
	"github.com/c360studio/semcodec/graph"
	"github.com/c360studio/semcodec/rdf"
)

// DefaultBucket is the KV bucket used when none is configured.
const DefaultBucket = "SEMCODEC_RECORDS"

// RecordKey identifies a stored record.
type RecordKey struct {
	Type string
	ID   string
}

// String returns the "Type:ID" form accepted by ParseRecordKey.
func (k RecordKey) String() string {
	return k.Type + ":" + k.ID
}

// ParseRecordKey parses "Type:ID". Only the first colon separates, so IRIs
// are valid ids.
func ParseRecordKey(s string) (RecordKey, error) {
	typ, id, ok := strings.Cut(s, ":")
	if !ok || typ == "" || id == "" {
		return RecordKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return RecordKey{Type: typ, ID: id}, nil
}

// kvKey maps the key onto the KV key alphabet. The id is base64url encoded
// because IRIs contain characters KV keys reject.
func (k RecordKey) kvKey() string {
	return k.Type + "." + base64.RawURLEncoding.EncodeToString([]byte(k.ID))
}

func parseKVKey(s string) (RecordKey, error) {
	typ, enc, ok := strings.Cut(s, ".")
	if !ok {
		return RecordKey{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	id, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return RecordKey{}, fmt.Errorf("%w: %q: %v", ErrInvalidKey, s, err)
	}
	return RecordKey{Type: typ, ID: string(id)}, nil
}

// KeyValue is the part of jetstream.KeyValue the store needs.
type KeyValue interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
	Keys(ctx context.Context, opts ...jetstream.WatchOpt) ([]string, error)
}

// OpenBucket returns the named KV bucket, creating it if it doesn't exist.
func OpenBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, fmt.Errorf("open bucket %s: %w", name, err)
	}
	kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Semcodec normalized records",
		History:     5, // Keep last 5 revisions
	})
	if err != nil {
		return nil, fmt.Errorf("create bucket %s: %w", name, err)
	}
	return kv, nil
}

// Store reads and writes records through a codec.
type Store struct {
	kv     KeyValue
	codec  *codec.Codec
	logger *slog.Logger
}

// NewStore creates a store over kv. Record types are resolved through c's
// registry.
func NewStore(kv KeyValue, c *codec.Codec, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, codec: c, logger: logger}
}

// Put encodes record and stores it. Records whose subject is an IRI are
// keyed by it, so putting the same resource again replaces it; others get a
// fresh UUID.
func (s *Store) Put(ctx context.Context, record any) (RecordKey, error) {
	rt, ok := s.codec.Registry().Of(record)
	if !ok {
		return RecordKey{}, fmt.Errorf("put %T: record type not registered", record)
	}
	doc, err := s.codec.Encode(record)
	if err != nil {
		return RecordKey{}, fmt.Errorf("encode %s: %w", rt.Name(), err)
	}
	data, err := document.Marshal(doc, document.FormatJSON)
	if err != nil {
		return RecordKey{}, fmt.Errorf("marshal %s: %w", rt.Name(), err)
	}

	key := RecordKey{Type: rt.Name(), ID: uuid.NewString()}
	if r, ok := record.(graph.Resource); ok {
		if iri, ok := r.Subject().(rdf.IRI); ok && iri != "" {
			key.ID = string(iri)
		}
	}

	rev, err := s.kv.Put(ctx, key.kvKey(), data)
	if err != nil {
		return RecordKey{}, fmt.Errorf("store %s: %w", key, err)
	}
	s.logger.Debug("Stored record",
		slog.String("key", key.String()),
		slog.Uint64("revision", rev))
	return key, nil
}

// GetDocument returns the stored document for key.
func (s *Store) GetDocument(ctx context.Context, key RecordKey) (any, error) {
	entry, err := s.kv.Get(ctx, key.kvKey())
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	doc, err := document.Parse(entry.Value(), document.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	return doc, nil
}

// Get loads and decodes the record stored under key.
func (s *Store) Get(ctx context.Context, key RecordKey) (any, error) {
	rt, ok := s.codec.Registry().Lookup(key.Type)
	if !ok {
		return nil, fmt.Errorf("get %s: unknown type %q", key, key.Type)
	}
	doc, err := s.GetDocument(ctx, key)
	if err != nil {
		return nil, err
	}
	record, err := s.codec.Decode(rt, doc)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return record, nil
}

// Delete removes the record stored under key.
func (s *Store) Delete(ctx context.Context, key RecordKey) error {
	if err := s.kv.Delete(ctx, key.kvKey()); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// List returns the stored keys sorted by type and id. A non-empty typeName
// keeps only records of that type.
func (s *Store) List(ctx context.Context, typeName string) ([]RecordKey, error) {
	names, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list keys: %w", err)
	}

	keys := make([]RecordKey, 0, len(names))
	for _, name := range names {
		key, err := parseKVKey(name)
		if err != nil {
			s.logger.Warn("Skipping foreign key", slog.String("key", name))
			continue
		}
		if typeName == "" || key.Type == typeName {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Type != keys[j].Type {
			return keys[i].Type < keys[j].Type
		}
		return keys[i].ID < keys[j].ID
	})
	return keys, nil
}
