package dto

import (
	"time"

	"github.com/google/uuid"
)

type ProductResponse struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Brand       string    `json:"brand,omitempty"`
	Category    string    `json:"category,omitempty"`
	Series      string    `json:"series,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Variations  []string  `json:"variations,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Brand       string   `json:"brand"`
	Category    string   `json:"category" validate:"required"`
	Series      string   `json:"series"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	Variations  []string `json:"variations"`
}

type UpdateProductRequest struct {
	Id          uuid.UUID `json:"-"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category" validate:"required"`
	Series      string    `json:"series"`
	Images      []string  `json:"images" validate:"omitempty,dive,url"`
	Variations  []string  `json:"variations"`
}

// PublishIndexProductMessage is the queue payload asking the indexer to
// recompute a product's search keywords.
type PublishIndexProductMessage struct {
	ProductId uuid.UUID `json:"product_id"`
}

type SearchProductsRequest struct {
	Keyword  string  `query:"keyword"`
	Category string  `query:"category"`
	Brand    string  `query:"brand"`
	MinPrice float64 `query:"min_price"`
	MaxPrice float64 `query:"max_price"`
	Limit    int     `query:"limit"`
}
