package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Product struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `gorm:"type:text;not null"`
	Description string         `gorm:"type:text"`
	Price       float64        `gorm:"type:numeric(12,2);not null"`
	Brand       string         `gorm:"type:text;index"`
	Category    string         `gorm:"type:text;index"`
	Series      string         `gorm:"type:text"`
	Images      datatypes.JSON `gorm:"type:jsonb"`
	Variations  datatypes.JSON `gorm:"type:jsonb"`
	Keywords    datatypes.JSON `gorm:"type:jsonb"` // recomputed by the indexer consumer
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
