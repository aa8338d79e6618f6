package implementation

import (
	"context"

	"ai-marketplace-be/internal/entity"
	"ai-marketplace-be/internal/mapper"
	"ai-marketplace-be/internal/model"
	"ai-marketplace-be/internal/repository/contract"
	"ai-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ThreadMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RecommendationMapper
}

func NewThreadMessageRepository(db *gorm.DB) contract.ThreadMessageRepository {
	return &ThreadMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewRecommendationMapper(),
	}
}

func (r *ThreadMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ThreadMessageRepositoryImpl) Create(ctx context.Context, message *entity.ThreadMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *ThreadMessageRepositoryImpl) CreateBatch(ctx context.Context, messages []*entity.ThreadMessage) error {
	if len(messages) == 0 {
		return nil
	}
	models := make([]*model.ThreadMessage, len(messages))
	for i, msg := range messages {
		models[i] = r.mapper.MessageToModel(msg)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*messages[i] = *r.mapper.MessageToEntity(m)
	}
	return nil
}

func (r *ThreadMessageRepositoryImpl) DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("thread_id = ?", threadId).Delete(&model.ThreadMessage{}).Error
}

func (r *ThreadMessageRepositoryImpl) DeleteByIds(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&model.ThreadMessage{}).Error
}

func (r *ThreadMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ThreadMessage, error) {
	var models []*model.ThreadMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ThreadMessage, len(models))
	for i, m := range models {
		entities[i] = r.mapper.MessageToEntity(m)
	}
	return entities, nil
}

func (r *ThreadMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ThreadMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
