package entity

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	Id          uuid.UUID
	Name        string
	Description string
	Price       float64
	Brand       string
	Category    string
	Series      string
	Images      []string
	Variations  []string
	Keywords    []string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
