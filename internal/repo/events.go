package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a persisted record of something that happened in the
// marketplace, fanned out to notifiers after commit.
type DomainEvent struct {
	ID          string          `json:"id"`
	Topic       string          `json:"topic"`
	AggregateID string          `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

// InsertDomainEvent persists an event and returns the stored row.
func (s *Store) InsertDomainEvent(ctx context.Context, topic, aggregateID string, payload []byte) (DomainEvent, error) {
	ev := DomainEvent{ID: uuid.NewString(), Topic: topic, AggregateID: aggregateID, Payload: payload}
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO domain_events (id, topic, aggregate_id, payload)
		 VALUES ($1, $2, $3, $4)
		 RETURNING occurred_at`,
		ev.ID, ev.Topic, ev.AggregateID, ev.Payload).
		Scan(&ev.OccurredAt)
	return ev, err
}
