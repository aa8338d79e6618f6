package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeRecommendationCreated = "RECOMMENDATION_CREATED"
	TypeProductUpdated        = "PRODUCT_UPDATED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PRODUCT_UPDATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation every publisher uses.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewRecommendationCreated fires after an assistant answer lands on a thread.
func NewRecommendationCreated(threadId, userId uuid.UUID, productCount int) Event {
	return BaseEvent{
		Type: TypeRecommendationCreated,
		Data: map[string]interface{}{
			"thread_id":     threadId.String(),
			"user_id":       userId.String(),
			"product_count": productCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewProductUpdated fires on catalog create/update so interested consumers
// (indexer, storefront caches) can react.
func NewProductUpdated(productId uuid.UUID, category string) Event {
	return BaseEvent{
		Type: TypeProductUpdated,
		Data: map[string]interface{}{
			"product_id": productId.String(),
			"category":   category,
		},
		OccurredAt: time.Now(),
	}
}
