package model

import (
	"time"

	"github.com/google/uuid"
)

type RecommendationThread struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;index"` // User ownership for data isolation
	Variant      string    `gorm:"type:varchar(32);not null"`
	ProjectName  string    `gorm:"type:text"`
	SeedImageURL string    `gorm:"type:text"`
	Summary      string    `gorm:"type:text"`
	IsActive     bool      `gorm:"not null;default:true;index"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (RecommendationThread) TableName() string {
	return "recommendation_threads"
}
