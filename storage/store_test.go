package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semcodec/codec"
	"github.com/c360studio/semcodec/rdf"
	"github.com/c360studio/semcodec/schema"
)

type entry struct {
	key   string
	value []byte
	rev   uint64
}

func (e *entry) Bucket() string                  { return DefaultBucket }
func (e *entry) Key() string                     { return e.key }
func (e *entry) Value() []byte                   { return e.value }
func (e *entry) Revision() uint64                { return e.rev }
func (e *entry) Created() time.Time              { return time.Time{} }
func (e *entry) Delta() uint64                   { return 0 }
func (e *entry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }

// memoryKV is an in-memory KeyValue.
type memoryKV struct {
	entries map[string]*entry
	rev     uint64
	err     error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{entries: make(map[string]*entry)}
}

func (m *memoryKV) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.entries[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return e, nil
}

func (m *memoryKV) Put(_ context.Context, key string, value []byte) (uint64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.rev++
	m.entries[key] = &entry{key: key, value: value, rev: m.rev}
	return m.rev, nil
}

func (m *memoryKV) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	if m.err != nil {
		return m.err
	}
	delete(m.entries, key)
	return nil
}

func (m *memoryKV) Keys(_ context.Context, _ ...jetstream.WatchOpt) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.entries) == 0 {
		return nil, jetstream.ErrNoKeysFound
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

type Org struct {
	ID      rdf.IRI  `codec:"id"`
	Name    string   `codec:"name"`
	Founded int      `codec:"founded"`
	Tags    []string `codec:"tags"`
}

func (o *Org) Subject() rdf.Term { return o.ID }

type Note struct {
	Text string `codec:"text"`
}

func newTestStore(t *testing.T) (*Store, *memoryKV) {
	t.Helper()
	reg := schema.NewRegistry(nil)
	reg.MustRegister(Org{}, schema.Field("tags", schema.Default([]string(nil))))
	reg.MustRegister(Note{})
	kv := newMemoryKV()
	return NewStore(kv, codec.New(reg), nil), kv
}

func TestRecordKey(t *testing.T) {
	key, err := ParseRecordKey("Org:https://example.org/org/1")
	require.NoError(t, err)
	assert.Equal(t, RecordKey{Type: "Org", ID: "https://example.org/org/1"}, key)
	assert.Equal(t, "Org:https://example.org/org/1", key.String())

	kvKey := key.kvKey()
	assert.NotContains(t, kvKey, ":")
	back, err := parseKVKey(kvKey)
	require.NoError(t, err)
	assert.Equal(t, key, back)

	for _, bad := range []string{"", "Org", ":x", "Org:"} {
		_, err := ParseRecordKey(bad)
		assert.ErrorIs(t, err, ErrInvalidKey, "input %q", bad)
	}
	_, err = parseKVKey("no-dot")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestStorePutGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	org := &Org{ID: "https://example.org/org/1", Name: "Example", Founded: 1999, Tags: []string{"a", "b"}}
	key, err := store.Put(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, RecordKey{Type: "Org", ID: "https://example.org/org/1"}, key)

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, org, got)
}

func TestStorePutReplacesBySubject(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	_, err := store.Put(ctx, &Org{ID: "https://example.org/org/1", Name: "Old"})
	require.NoError(t, err)
	key, err := store.Put(ctx, &Org{ID: "https://example.org/org/1", Name: "New"})
	require.NoError(t, err)
	assert.Len(t, kv.entries, 1)

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "New", got.(*Org).Name)
}

func TestStorePutWithoutSubject(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, err := store.Put(ctx, &Note{Text: "one"})
	require.NoError(t, err)
	b, err := store.Put(ctx, &Note{Text: "one"})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID, "records without an IRI get fresh ids")

	_, err = store.Put(ctx, &struct{ X int }{})
	assert.Error(t, err)
}

func TestStoreList(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = store.Put(ctx, &Org{ID: "https://example.org/org/2", Name: "B"})
	require.NoError(t, err)
	_, err = store.Put(ctx, &Org{ID: "https://example.org/org/1", Name: "A"})
	require.NoError(t, err)
	_, err = store.Put(ctx, &Note{Text: "n"})
	require.NoError(t, err)
	kv.entries["foreign"] = &entry{key: "foreign"}

	keys, err = store.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, "Note", keys[0].Type)
	assert.Equal(t, "https://example.org/org/1", keys[1].ID)

	keys, err = store.List(ctx, "Org")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

func TestStoreDeleteAndNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	key, err := store.Put(ctx, &Org{ID: "https://example.org/org/1", Name: "A"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, key))

	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, RecordKey{Type: "Missing", ID: "x"})
	assert.Error(t, err)
}

func TestStoreBackendErrors(t *testing.T) {
	store, kv := newTestStore(t)
	ctx := context.Background()
	failure := errors.New("bucket unavailable")
	kv.err = failure

	_, err := store.Put(ctx, &Note{Text: "n"})
	assert.ErrorIs(t, err, failure)
	_, err = store.GetDocument(ctx, RecordKey{Type: "Note", ID: "x"})
	assert.ErrorIs(t, err, failure)
	_, err = store.List(ctx, "")
	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, store.Delete(ctx, RecordKey{Type: "Note", ID: "x"}), failure)
}
