package queries

import (
	"context"

	"github.com/google/uuid"
)

type EventQueries interface {
	// ListForUser replays a user's event log, ascending by occurred_at.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]EventView, error)
}

type EventReadStore interface {
	ListByAggregateID(ctx context.Context, aggregateID uuid.UUID) ([]EventView, error)
}

type eventQueriesImpl struct {
	readStore EventReadStore
}

func NewEventQueries(readStore EventReadStore) EventQueries {
	return &eventQueriesImpl{
		readStore: readStore,
	}
}

func (q *eventQueriesImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]EventView, error) {
	return q.readStore.ListByAggregateID(ctx, userID)
}
