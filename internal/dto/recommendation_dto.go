package dto

import (
	"time"

	"ai-marketplace-be/pkg/recommend"

	"github.com/google/uuid"
)

type CreateRecommendationRequest struct {
	Message          string     `json:"message" validate:"required"`
	Type             string     `json:"type" validate:"required,oneof=interior_design style_access"`
	ProjectName      string     `json:"project_name,omitempty"`
	ImageURL         string     `json:"image_url,omitempty" validate:"omitempty,url"`
	RecommendationId *uuid.UUID `json:"recommendation_id,omitempty"`
}

type ConversationMessageDTO struct {
	Id        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateRecommendationResponse struct {
	RecommendationId    uuid.UUID                `json:"recommendation_id"`
	Response            string                   `json:"response"`
	ConversationHistory []ConversationMessageDTO `json:"conversation_history"`
	RecommendedProducts []recommend.Candidate    `json:"recommended_products,omitempty"`
	Summary             *recommend.Stats         `json:"summary,omitempty"`
}

type GetThreadsResponse struct {
	Id          uuid.UUID  `json:"id"`
	Variant     string     `json:"variant"`
	ProjectName string     `json:"project_name,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

type GetThreadDetailResponse struct {
	Id                  uuid.UUID                `json:"id"`
	Variant             string                   `json:"variant"`
	ProjectName         string                   `json:"project_name,omitempty"`
	SeedImageURL        string                   `json:"seed_image_url,omitempty"`
	Summary             string                   `json:"summary,omitempty"`
	ConversationHistory []ConversationMessageDTO `json:"conversation_history"`
	CreatedAt           time.Time                `json:"created_at"`
}

type UpdateThreadRequest struct {
	Id          uuid.UUID `json:"-"`
	ProjectName string    `json:"project_name" validate:"required"`
}

type PaginationRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

type PaginatedResponse[T any] struct {
	Items    []T   `json:"items"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}
