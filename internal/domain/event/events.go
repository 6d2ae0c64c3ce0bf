package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"gin-auth-core/internal/pkg/errs"
)

// Name discriminates the event variants.
type Name string

const (
	NameUserRegistered Name = "user.registered"
	NameUserLoggedIn   Name = "user.logged_in"
)

var ErrUnknownEvent = errs.New("unknown event name")

// DomainEvent is a closed sum over the auth events. Events are immutable
// facts: created once, appended to the log, never mutated.
type DomainEvent interface {
	Name() Name
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

type UserRegistered struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"occurred_at"`
}

func NewUserRegistered(userID uuid.UUID, email string, now time.Time) UserRegistered {
	return UserRegistered{UserID: userID, Email: email, Timestamp: now}
}

func (e UserRegistered) Name() Name             { return NameUserRegistered }
func (e UserRegistered) AggregateID() uuid.UUID { return e.UserID }
func (e UserRegistered) OccurredAt() time.Time  { return e.Timestamp }

type UserLoggedIn struct {
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func NewUserLoggedIn(userID uuid.UUID, now time.Time) UserLoggedIn {
	return UserLoggedIn{UserID: userID, Timestamp: now}
}

func (e UserLoggedIn) Name() Name             { return NameUserLoggedIn }
func (e UserLoggedIn) AggregateID() uuid.UUID { return e.UserID }
func (e UserLoggedIn) OccurredAt() time.Time  { return e.Timestamp }

// Decode rebuilds the tagged variant from a stored row. The payload carries
// the full event JSON, so decoding only needs the discriminant.
func Decode(name Name, payload []byte) (DomainEvent, error) {
	switch name {
	case NameUserRegistered:
		var e UserRegistered
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, errs.Wrap(err, "failed to decode user.registered payload")
		}
		return e, nil
	case NameUserLoggedIn:
		var e UserLoggedIn
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, errs.Wrap(err, "failed to decode user.logged_in payload")
		}
		return e, nil
	default:
		return nil, errs.Mark(errs.New("event name: "+string(name)), ErrUnknownEvent)
	}
}
