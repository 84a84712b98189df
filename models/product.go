package models

import (
	"fmt"
	"time"
)

type SpiceLevel string

const (
	SpiceMild     SpiceLevel = "mild"
	SpiceMedium   SpiceLevel = "medium"
	SpiceHot      SpiceLevel = "hot"
	SpiceExtraHot SpiceLevel = "extra_hot"
)

func (s SpiceLevel) Valid() bool {
	switch s {
	case SpiceMild, SpiceMedium, SpiceHot, SpiceExtraHot:
		return true
	}
	return false
}

func ParseSpiceLevel(v string) (*SpiceLevel, error) {
	if v == "" {
		return nil, nil
	}
	level := SpiceLevel(v)
	if !level.Valid() {
		return nil, fmt.Errorf("unknown spice level %q", v)
	}
	return &level, nil
}

type Product struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        float64     `json:"price"`
	ImageURL     *string     `json:"image_url"`
	Category     string      `json:"category"`
	SpiceLevel   *SpiceLevel `json:"spice_level,omitempty"`
	IsVegetarian *bool       `json:"is_vegetarian,omitempty"`
	Stock        int         `json:"stock"`
	CreatedAt    *time.Time  `json:"created_at,omitempty"`
}

// ProductSummary is the compact shape embedded in cart lines and order mails.
type ProductSummary struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url"`
}

// Recommendation is the card shape used by "you may also like" listings.
type Recommendation struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"image_url"`
	Category     string  `json:"category"`
	IsVegetarian bool    `json:"is_vegetarian"`
}

func (p Product) ToSummary() ProductSummary {
	return ProductSummary{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: stringValue(p.ImageURL),
	}
}

func (p Product) ToRecommendation() Recommendation {
	veg := false
	if p.IsVegetarian != nil {
		veg = *p.IsVegetarian
	}
	return Recommendation{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		ImageURL:     stringValue(p.ImageURL),
		Category:     p.Category,
		IsVegetarian: veg,
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
