package mapper

import (
	"encoding/json"
	"time"

	"ai-marketplace-be/internal/entity"
	"ai-marketplace-be/internal/model"
	"ai-marketplace-be/pkg/recommend"

	"gorm.io/datatypes"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		u := p.UpdatedAt
		updatedAt = &u
	}

	return &entity.Product{
		Id:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Brand:       p.Brand,
		Category:    p.Category,
		Series:      p.Series,
		Images:      jsonToStrings(p.Images),
		Variations:  jsonToStrings(p.Variations),
		Keywords:    jsonToStrings(p.Keywords),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *ProductMapper) ToModel(p *entity.Product) *model.Product {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Product{
		Id:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Brand:       p.Brand,
		Category:    p.Category,
		Series:      p.Series,
		Images:      stringsToJSON(p.Images),
		Variations:  stringsToJSON(p.Variations),
		Keywords:    stringsToJSON(p.Keywords),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

// ToCandidate projects a product into the pipeline's read-only shape.
func (m *ProductMapper) ToCandidate(p *entity.Product) recommend.Candidate {
	return recommend.Candidate{
		ID:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Brand:       p.Brand,
		Category:    p.Category,
		Series:      p.Series,
		Images:      p.Images,
		Variations:  p.Variations,
	}
}

func jsonToStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func stringsToJSON(values []string) datatypes.JSON {
	if len(values) == 0 {
		return datatypes.JSON("[]")
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
