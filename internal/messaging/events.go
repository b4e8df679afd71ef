package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	RecipeCreated = "recipe.created"
	RecipeUpdated = "recipe.updated"
	RecipeDeleted = "recipe.deleted"
)

// Event is a recipe lifecycle notification. The routing key is Type.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	RecipeID   uuid.UUID `json:"recipe_id"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType string, recipeID uuid.UUID, actor string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		RecipeID:   recipeID,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher delivers events to subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event. It is used when no broker is configured.
type NoopPublisher struct{}

func NewNoopPublisher() NoopPublisher { return NoopPublisher{} }

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
