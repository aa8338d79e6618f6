package mapper

import (
	"time"

	"ai-marketplace-be/internal/entity"
	"ai-marketplace-be/internal/model"
)

type RecommendationMapper struct{}

func NewRecommendationMapper() *RecommendationMapper {
	return &RecommendationMapper{}
}

// Thread Mappers

func (m *RecommendationMapper) ThreadToEntity(t *model.RecommendationThread) *entity.RecommendationThread {
	if t == nil {
		return nil
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		u := t.UpdatedAt
		updatedAt = &u
	}

	return &entity.RecommendationThread{
		Id:           t.Id,
		UserId:       t.UserId,
		Variant:      t.Variant,
		ProjectName:  t.ProjectName,
		SeedImageURL: t.SeedImageURL,
		Summary:      t.Summary,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *RecommendationMapper) ThreadToModel(t *entity.RecommendationThread) *model.RecommendationThread {
	if t == nil {
		return nil
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.RecommendationThread{
		Id:           t.Id,
		UserId:       t.UserId,
		Variant:      t.Variant,
		ProjectName:  t.ProjectName,
		SeedImageURL: t.SeedImageURL,
		Summary:      t.Summary,
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

// Message Mappers

func (m *RecommendationMapper) MessageToEntity(msg *model.ThreadMessage) *entity.ThreadMessage {
	if msg == nil {
		return nil
	}

	return &entity.ThreadMessage{
		Id:        msg.Id,
		ThreadId:  msg.ThreadId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *RecommendationMapper) MessageToModel(msg *entity.ThreadMessage) *model.ThreadMessage {
	if msg == nil {
		return nil
	}

	return &model.ThreadMessage{
		Id:        msg.Id,
		ThreadId:  msg.ThreadId,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func (m *RecommendationMapper) MessagesToEntities(msgs []model.ThreadMessage) []entity.ThreadMessage {
	entities := make([]entity.ThreadMessage, 0, len(msgs))
	for i := range msgs {
		entities = append(entities, *m.MessageToEntity(&msgs[i]))
	}
	return entities
}
