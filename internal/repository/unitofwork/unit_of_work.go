package unitofwork

import (
	"context"

	"ai-marketplace-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	RecommendationThreadRepository() contract.RecommendationThreadRepository
	ThreadMessageRepository() contract.ThreadMessageRepository
	ProductRepository() contract.ProductRepository
	NotificationRepository() contract.NotificationRepository
}
