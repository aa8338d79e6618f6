package implementation

import (
	"context"
	"errors"

	"ai-marketplace-be/internal/entity"
	"ai-marketplace-be/internal/mapper"
	"ai-marketplace-be/internal/model"
	"ai-marketplace-be/internal/repository/contract"
	"ai-marketplace-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecommendationThreadRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RecommendationMapper
}

func NewRecommendationThreadRepository(db *gorm.DB) contract.RecommendationThreadRepository {
	return &RecommendationThreadRepositoryImpl{
		db:     db,
		mapper: mapper.NewRecommendationMapper(),
	}
}

func (r *RecommendationThreadRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RecommendationThreadRepositoryImpl) Create(ctx context.Context, thread *entity.RecommendationThread) error {
	m := r.mapper.ThreadToModel(thread)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*thread = *r.mapper.ThreadToEntity(m)
	return nil
}

func (r *RecommendationThreadRepositoryImpl) Update(ctx context.Context, thread *entity.RecommendationThread) error {
	m := r.mapper.ThreadToModel(thread)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*thread = *r.mapper.ThreadToEntity(m)
	return nil
}

// Deactivate soft-deletes a thread by flipping is_active.
func (r *RecommendationThreadRepositoryImpl) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.RecommendationThread{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *RecommendationThreadRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RecommendationThread, error) {
	var m model.RecommendationThread
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ThreadToEntity(&m), nil
}

func (r *RecommendationThreadRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RecommendationThread, error) {
	var models []*model.RecommendationThread
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.RecommendationThread, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ThreadToEntity(m)
	}
	return entities, nil
}

func (r *RecommendationThreadRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.RecommendationThread{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
