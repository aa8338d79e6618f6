package contract

import (
	"context"

	"ai-marketplace-be/internal/entity"
	"ai-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RecommendationThreadRepository interface {
	Create(ctx context.Context, thread *entity.RecommendationThread) error
	Update(ctx context.Context, thread *entity.RecommendationThread) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RecommendationThread, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RecommendationThread, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
