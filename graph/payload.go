package graph

import (
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"

	"github.com/c360studio/semcodec/rdf"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "graph",
		Category:    "entity",
		Version:     "v1",
		Description: "Entity payload for graph ingestion with triples",
		Factory:     func() any { return &EntityPayload{} },
	})
	if err != nil {
		panic("failed to register EntityPayload: " + err.Error())
	}
}

// EntityType is the message type for graph entity payloads.
var EntityType = message.Type{Domain: "graph", Category: "entity", Version: "v1"}

// EntityPayload carries the triples of one subject for graph ingestion.
type EntityPayload struct {
	EntityID_  string           `json:"id"`
	TripleData []message.Triple `json:"triples"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func (e *EntityPayload) EntityID() string          { return e.EntityID_ }
func (e *EntityPayload) Triples() []message.Triple { return e.TripleData }
func (e *EntityPayload) Schema() message.Type      { return EntityType }

func (e *EntityPayload) Validate() error {
	if e.EntityID_ == "" {
		return errors.New("entity ID is required")
	}
	if len(e.TripleData) == 0 {
		return errors.New("entity has no triples")
	}
	return nil
}

func (e *EntityPayload) MarshalJSON() ([]byte, error) {
	type Alias EntityPayload
	return json.Marshal((*Alias)(e))
}

func (e *EntityPayload) UnmarshalJSON(data []byte) error {
	type Alias EntityPayload
	return json.Unmarshal(data, (*Alias)(e))
}

// MessageSink is an rdf.Sink collecting semstreams triples, grouped by
// subject for publishing. Duplicate triples are dropped. It is safe for
// concurrent use.
type MessageSink struct {
	source string
	now    func() time.Time

	mu       sync.Mutex
	seen     map[rdf.Triple]struct{}
	order    []string
	entities map[string]*EntityPayload
}

// NewMessageSink creates a sink stamping every triple with source.
func NewMessageSink(source string) *MessageSink {
	return &MessageSink{
		source:   source,
		now:      time.Now,
		seen:     make(map[rdf.Triple]struct{}),
		entities: make(map[string]*EntityPayload),
	}
}

// Add implements rdf.Sink.
func (s *MessageSink) Add(sub rdf.Term, p rdf.IRI, o rdf.Term) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rdf.Triple{S: sub, P: p, O: o}
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}

	now := s.now()
	id := sub.String()
	entity, ok := s.entities[id]
	if !ok {
		entity = &EntityPayload{EntityID_: id}
		s.entities[id] = entity
		s.order = append(s.order, id)
	}
	entity.UpdatedAt = now
	entity.TripleData = append(entity.TripleData, message.Triple{
		Subject:    id,
		Predicate:  string(p),
		Object:     objectValue(o),
		Source:     s.source,
		Timestamp:  now,
		Confidence: 1.0,
	})
}

// Entities returns one payload per subject, in first-seen order.
func (s *MessageSink) Entities() []*EntityPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*EntityPayload, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entities[id])
	}
	return out
}

// Len returns the number of distinct triples collected.
func (s *MessageSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// objectValue converts a term to the native value semstreams stores.
// Typed numeric and boolean literals become Go numbers and bools.
func objectValue(o rdf.Term) any {
	lit, ok := o.(rdf.Literal)
	if !ok {
		return o.String()
	}
	switch lit.Datatype {
	case rdf.XSDInteger:
		if n, err := strconv.ParseInt(lit.Lexical, 10, 64); err == nil {
			return n
		}
	case rdf.XSDDouble:
		if f, err := strconv.ParseFloat(lit.Lexical, 64); err == nil {
			return f
		}
	case rdf.XSDBoolean:
		if b, err := strconv.ParseBool(lit.Lexical); err == nil {
			return b
		}
	}
	return lit.Lexical
}
