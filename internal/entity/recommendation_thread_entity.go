package entity

import (
	"time"

	"github.com/google/uuid"
)

// RecommendationThread is one shopper conversation. Summary holds the rolling
// collapsed history; IsActive false means soft-deleted.
type RecommendationThread struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Variant      string
	ProjectName  string
	SeedImageURL string
	Summary      string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
