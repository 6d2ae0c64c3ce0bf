package readstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"gin-auth-core/internal/infra"
	"gin-auth-core/internal/infra/db"
	"gin-auth-core/internal/pkg/pgconv"
	"gin-auth-core/internal/usecase/queries"
)

type EventReadStore struct {
	db db.DBTX
}

func NewEventReadStore(dbtx db.DBTX) *EventReadStore {
	return &EventReadStore{db: dbtx}
}

func (r *EventReadStore) ListByAggregateID(ctx context.Context, aggregateID uuid.UUID) ([]queries.EventView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT event_name, event_data, occurred_at
		FROM domain_events
		WHERE aggregate_id = $1
		ORDER BY occurred_at ASC`,
		pgconv.UUIDToPgtype(aggregateID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to query event log", err)
	}
	defer rows.Close()

	var views []queries.EventView
	for rows.Next() {
		var (
			name       string
			payload    []byte
			occurredAt pgtype.Timestamptz
		)
		if err := rows.Scan(&name, &payload, &occurredAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan event row", err)
		}
		views = append(views, queries.EventView{
			Name:       name,
			OccurredAt: pgconv.TimeFromPgtype(occurredAt),
			Payload:    payload,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate event rows", err)
	}
	return views, nil
}
