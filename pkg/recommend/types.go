package recommend

import (
	"context"

	"github.com/google/uuid"
)

// RequirementSet is the structured filter derived from one user turn.
// It is transient: recomputed per request, never persisted.
type RequirementSet struct {
	Category    string   `json:"category,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Budget      string   `json:"budget,omitempty"`
	RoomType    string   `json:"roomType,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
}

func (r RequirementSet) IsEmpty() bool {
	return r.Category == "" && r.Brand == "" && r.Budget == "" &&
		r.RoomType == "" && len(r.Preferences) == 0
}

// Candidate is a catalog product projected to the fields needed for
// ranking and display. Read-only from the pipeline's perspective.
type Candidate struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	Series      string    `json:"series,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Variations  []string  `json:"variations,omitempty"`
}

// Stats summarizes a candidate list for the API response.
type Stats struct {
	Count    int     `json:"count"`
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
}

func BuildStats(candidates []Candidate) Stats {
	s := Stats{Count: len(candidates)}
	for i, c := range candidates {
		if i == 0 || c.Price < s.MinPrice {
			s.MinPrice = c.Price
		}
		if c.Price > s.MaxPrice {
			s.MaxPrice = c.Price
		}
	}
	return s
}

// CatalogQuery is one filtered lookup against the product catalog.
type CatalogQuery struct {
	Keyword  string
	Category string
	Brand    string
	Limit    int
}

// Catalog is the read-only product search collaborator.
type Catalog interface {
	Search(ctx context.Context, query CatalogQuery) ([]Candidate, error)
}
