package queries

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UserView is the public-safe read projection of a user. No hash.
type UserView struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastLogin *time.Time `json:"last_login"`
}

// EventView is one row of an aggregate's event log, ordered by OccurredAt.
type EventView struct {
	Name       string          `json:"name"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}
