package catalog

import "math"

const (
	// DefaultMinRating is restored when filters are reset.
	DefaultMinRating = 4.0
	// DefaultMinFeedbacks is restored when filters are reset.
	DefaultMinFeedbacks = 0
)

// Criteria holds the inclusive bounds a product has to satisfy. An exact
// value, when present, replaces the min/max pair for that metric.
type Criteria struct {
	MinPrice       float64  `json:"min_price" schema:"min_price"`
	MaxPrice       float64  `json:"max_price" schema:"max_price"`
	MinRating      float64  `json:"min_rating" schema:"min_rating"`
	MinFeedbacks   int      `json:"min_feedbacks" schema:"min_feedbacks"`
	MaxRating      *float64 `json:"max_rating,omitempty" schema:"max_rating"`
	MaxFeedbacks   *int     `json:"max_feedbacks,omitempty" schema:"max_feedbacks"`
	ExactPrice     *float64 `json:"exact_price,omitempty" schema:"exact_price"`
	ExactRating    *float64 `json:"exact_rating,omitempty" schema:"exact_rating"`
	ExactFeedbacks *int     `json:"exact_feedbacks,omitempty" schema:"exact_feedbacks"`
}

// Everything matches all products.
func Everything() Criteria {
	return Criteria{MaxPrice: math.MaxFloat64}
}

// Defaults returns the reset state of the filter controls: full price
// range up to maxPrice, rating 4.0 and up, any feedback count.
func Defaults(maxPrice float64) Criteria {
	return Criteria{
		MaxPrice:  maxPrice,
		MinRating: DefaultMinRating,
	}
}

func (c Criteria) matchPrice(p Product) bool {
	if c.ExactPrice != nil {
		return p.Price == *c.ExactPrice
	}
	return p.Price >= c.MinPrice && p.Price <= c.MaxPrice
}

func (c Criteria) matchRating(p Product) bool {
	if c.ExactRating != nil {
		return p.Rating == *c.ExactRating
	}
	if c.MaxRating != nil && p.Rating > *c.MaxRating {
		return false
	}
	return p.Rating >= c.MinRating
}

func (c Criteria) matchFeedbacks(p Product) bool {
	if c.ExactFeedbacks != nil {
		return p.Feedbacks == *c.ExactFeedbacks
	}
	if c.MaxFeedbacks != nil && p.Feedbacks > *c.MaxFeedbacks {
		return false
	}
	return p.Feedbacks >= c.MinFeedbacks
}

// Matches reports whether the product satisfies every bound.
func (c Criteria) Matches(p Product) bool {
	return c.matchPrice(p) && c.matchRating(p) && c.matchFeedbacks(p)
}

// Filter returns the products satisfying the criteria, preserving the
// original relative order. The input is never mutated and an empty
// result is valid.
func Filter(products []Product, c Criteria) []Product {
	result := make([]Product, 0, len(products))
	for _, p := range products {
		if c.Matches(p) {
			result = append(result, p)
		}
	}
	return result
}
