package model

import (
	"math"

	"github.com/google/uuid"
)

// WeightEpsilon is the tolerance used when two units are compared by value.
const WeightEpsilon = 1e-6

// SizeClass buckets a unit by weight.
type SizeClass string

const (
	Small  SizeClass = "small"
	Medium SizeClass = "medium"
	Large  SizeClass = "large"
)

// Product is an immutable unit of stock. ID distinguishes units that share
// name and weight.
type Product struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Weight   float64  `json:"weight_kg"`
}

// NewProduct builds a unit with a fresh identity.
func NewProduct(c Category, name string, weight float64) Product {
	return Product{ID: uuid.NewString(), Category: c, Name: name, Weight: weight}
}

// Size classifies the unit: small up to 40 kg, medium up to 150 kg.
func (p Product) Size() SizeClass {
	switch {
	case p.Weight <= 40:
		return Small
	case p.Weight <= 150:
		return Medium
	default:
		return Large
	}
}

// Same reports identity equality.
func (p Product) Same(o Product) bool { return p.ID != "" && p.ID == o.ID }

// Matches reports value equality: same category and name, weight within
// WeightEpsilon.
func (p Product) Matches(o Product) bool {
	return p.Category == o.Category && p.Name == o.Name && math.Abs(p.Weight-o.Weight) <= WeightEpsilon
}

// TotalWeight sums the unit weights.
func TotalWeight(ps []Product) float64 {
	var w float64
	for _, p := range ps {
		w += p.Weight
	}
	return w
}

// CategorySummary counts units per category.
func CategorySummary(ps []Product) map[Category]int {
	out := make(map[Category]int)
	for _, p := range ps {
		out[p.Category]++
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
