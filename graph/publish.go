package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// GraphIngestSubject is the subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends collected entities to the graph ingestion subject.
type Publisher struct {
	conn    Conn
	subject string
	logger  *slog.Logger
}

// NewPublisher creates a publisher. An empty subject means
// GraphIngestSubject. A nil conn makes Publish a no-op.
func NewPublisher(conn Conn, subject string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = GraphIngestSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, subject: subject, logger: logger}
}

// Publish sends one message per entity in sink and returns how many were
// sent. It stops at the first failure or when ctx is done.
func (p *Publisher) Publish(ctx context.Context, sink *MessageSink) (int, error) {
	if p.conn == nil {
		return 0, nil // Skip publishing if no NATS connection (graceful degradation)
	}

	sent := 0
	for _, entity := range sink.Entities() {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := entity.Validate(); err != nil {
			return sent, fmt.Errorf("entity %s: %w", entity.EntityID(), err)
		}
		data, err := json.Marshal(entity)
		if err != nil {
			return sent, fmt.Errorf("marshal entity %s: %w", entity.EntityID(), err)
		}
		if err := p.conn.Publish(p.subject, data); err != nil {
			return sent, fmt.Errorf("publish entity %s: %w", entity.EntityID(), err)
		}
		sent++
	}

	p.logger.Debug("Published graph entities",
		slog.String("subject", p.subject),
		slog.Int("entities", sent))
	return sent, nil
}
