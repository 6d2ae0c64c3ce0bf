package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"gin-auth-core/internal/domain/event"
	"gin-auth-core/internal/infra"
	"gin-auth-core/internal/infra/db"
	"gin-auth-core/internal/pkg/pgconv"
)

// EventRepository appends to and replays the domain_events log. Rows are
// append-only; created_at (insertion time) is stamped by the database and
// kept separate from the event's own occurred_at.
type EventRepository struct{}

func NewEventRepository() *EventRepository {
	return &EventRepository{}
}

func (r *EventRepository) Publish(ctx context.Context, dbtx db.DBTX, e event.DomainEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return infra.WrapRepoErr("failed to encode event payload", err)
	}

	_, err = dbtx.Exec(ctx, `
		INSERT INTO domain_events (id, aggregate_id, event_name, event_data, occurred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		pgconv.UUIDToPgtype(uuid.New()),
		pgconv.UUIDToPgtype(e.AggregateID()),
		string(e.Name()),
		payload,
		pgconv.TimeToPgtype(e.OccurredAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to publish event", err)
	}
	return nil
}

func (r *EventRepository) FindByAggregateID(ctx context.Context, dbtx db.DBTX, aggregateID uuid.UUID) ([]event.DomainEvent, error) {
	rows, err := dbtx.Query(ctx, `
		SELECT event_name, event_data
		FROM domain_events
		WHERE aggregate_id = $1
		ORDER BY occurred_at ASC`,
		pgconv.UUIDToPgtype(aggregateID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query events", err)
	}
	defer rows.Close()

	var events []event.DomainEvent
	for rows.Next() {
		var (
			name    string
			payload []byte
		)
		if err := rows.Scan(&name, &payload); err != nil {
			return nil, infra.WrapRepoErr("failed to scan event row", err)
		}

		decoded, err := event.Decode(event.Name(name), payload)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to decode stored event", err, infra.KindCorruptData)
		}
		events = append(events, decoded)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate event rows", err)
	}
	return events, nil
}
