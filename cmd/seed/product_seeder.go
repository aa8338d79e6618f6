package main

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"ai-marketplace-be/internal/model"
	"ai-marketplace-be/pkg/recommend/search"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type seedProduct struct {
	Name        string
	Description string
	Price       float64
	Brand       string
	Category    string
	Series      string
	Images      []string
	Variations  []string
}

var seedProducts = []seedProduct{
	{
		Name:        "AquaGuard Vinyl Plank Oak",
		Description: "Waterproof luxury vinyl plank with a dark oak finish, suited for kitchens and bathrooms.",
		Price:       42.50,
		Brand:       "AquaGuard",
		Category:    "vinyl flooring",
		Series:      "Classic",
		Images:      []string{"https://cdn.example.com/products/aquaguard-oak.jpg"},
		Variations:  []string{"dark oak", "natural oak", "grey oak"},
	},
	{
		Name:        "StoneCore Slate Tile",
		Description: "Porcelain tile with a slate look, frost resistant, works indoors and on patios.",
		Price:       38.00,
		Brand:       "StoneCore",
		Category:    "tile",
		Series:      "Outdoor",
		Images:      []string{"https://cdn.example.com/products/stonecore-slate.jpg"},
		Variations:  []string{"charcoal", "sand"},
	},
	{
		Name:        "Heritage Hickory Hardwood",
		Description: "Solid hickory hardwood flooring with hand-scraped texture for living rooms.",
		Price:       89.99,
		Brand:       "Heritage",
		Category:    "hardwood",
		Series:      "Artisan",
		Images:      []string{"https://cdn.example.com/products/heritage-hickory.jpg"},
		Variations:  []string{"natural", "espresso"},
	},
	{
		Name:        "SoftStep Carpet Tile Dove",
		Description: "Modular carpet tile in dove grey, easy to replace, good for home offices and basements.",
		Price:       19.75,
		Brand:       "SoftStep",
		Category:    "carpet",
		Series:      "Modular",
		Images:      []string{"https://cdn.example.com/products/softstep-dove.jpg"},
		Variations:  []string{"dove", "storm", "linen"},
	},
	{
		Name:        "BrightBath Ceramic Subway Tile",
		Description: "Glossy white ceramic subway tile for bathroom and kitchen walls.",
		Price:       12.30,
		Brand:       "BrightBath",
		Category:    "tile",
		Series:      "Subway",
		Images:      []string{"https://cdn.example.com/products/brightbath-subway.jpg"},
		Variations:  []string{"white", "sage", "navy"},
	},
}

// SeedProducts inserts the demo catalog with precomputed search keywords.
func SeedProducts(db *gorm.DB) {
	for _, p := range seedProducts {
		keywords := extractKeywords(p.Name, p.Brand, p.Category, p.Series, p.Description)

		row := model.Product{
			Id:          uuid.New(),
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Brand:       p.Brand,
			Category:    p.Category,
			Series:      p.Series,
			Images:      toJSON(p.Images),
			Variations:  toJSON(p.Variations),
			Keywords:    toJSON(keywords),
			CreatedAt:   time.Now(),
		}

		var existing model.Product
		err := db.Where("name = ?", p.Name).First(&existing).Error
		if err == nil {
			log.Printf("Skip: product %q already seeded", p.Name)
			continue
		}

		if err := db.Create(&row).Error; err != nil {
			log.Printf("Warn: failed to seed product %q: %v", p.Name, err)
			continue
		}
		log.Printf("Seeded product %q (%d keywords)", p.Name, len(keywords))
	}
}

func extractKeywords(fields ...string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, w := range search.MeaningfulWords(strings.Join(fields, " ")) {
		if seen[w] {
			continue
		}
		seen[w] = true
		keywords = append(keywords, w)
	}
	return keywords
}

func toJSON(values []string) datatypes.JSON {
	if len(values) == 0 {
		return datatypes.JSON("[]")
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
