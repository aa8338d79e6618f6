package specification

import (
	"strings"

	"gorm.io/gorm"
)

// KeywordLike matches any of the keyword's words against name, description,
// category and the precomputed keywords column. Words are ORed so a broad
// query still hits partial matches.
type KeywordLike struct {
	Keyword string
}

func (s KeywordLike) Apply(db *gorm.DB) *gorm.DB {
	words := strings.Fields(s.Keyword)
	if len(words) == 0 {
		return db
	}

	var clauses []string
	var args []interface{}
	for _, w := range words {
		clauses = append(clauses, "(name ILIKE ? OR description ILIKE ? OR category ILIKE ? OR keywords::text ILIKE ?)")
		pattern := "%" + w + "%"
		args = append(args, pattern, pattern, pattern, pattern)
	}
	return db.Where(strings.Join(clauses, " OR "), args...)
}

// ByCategory matches the category loosely (substring, case-insensitive).
type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category ILIKE ?", "%"+s.Category+"%")
}

// ByBrand matches the brand loosely.
type ByBrand struct {
	Brand string
}

func (s ByBrand) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("brand ILIKE ?", "%"+s.Brand+"%")
}

// PriceRange bounds the price; zero bounds are ignored.
type PriceRange struct {
	Min float64
	Max float64
}

func (s PriceRange) Apply(db *gorm.DB) *gorm.DB {
	if s.Min > 0 {
		db = db.Where("price >= ?", s.Min)
	}
	if s.Max > 0 {
		db = db.Where("price <= ?", s.Max)
	}
	return db
}
