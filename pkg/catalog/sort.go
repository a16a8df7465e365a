package catalog

import (
	"slices"
	"strings"

	"github.com/wbpulse/wbpulse/pkg/format"
)

type SortKey string

const (
	SortByName          SortKey = "name"
	SortByPrice         SortKey = "price"
	SortByDiscountPrice SortKey = "discount_price"
	SortByRating        SortKey = "rating"
	SortByFeedbacks     SortKey = "feedbacks"
)

type Order int

const (
	Ascending Order = iota
	Descending
)

// ParseSort splits a selector value like "price_desc" into key and
// order. The boolean is false for empty or unknown selectors, which
// callers treat as "leave the view order unchanged".
func ParseSort(value string) (SortKey, Order, bool) {
	key, ok := strings.CutSuffix(value, "_desc")
	order := Descending
	if !ok {
		key, ok = strings.CutSuffix(value, "_asc")
		order = Ascending
	}
	if !ok {
		return "", Ascending, false
	}
	switch SortKey(key) {
	case SortByName, SortByPrice, SortByDiscountPrice, SortByRating, SortByFeedbacks:
		return SortKey(key), order, true
	}
	return "", Ascending, false
}

func compareNumeric(a, b float64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func compareBy(key SortKey) func(a, b Product) int {
	switch key {
	case SortByName:
		return func(a, b Product) int { return format.CompareNames(a.Name, b.Name) }
	case SortByPrice:
		return func(a, b Product) int { return compareNumeric(a.Price, b.Price) }
	case SortByDiscountPrice:
		return func(a, b Product) int { return compareNumeric(a.DiscountPrice, b.DiscountPrice) }
	case SortByRating:
		return func(a, b Product) int { return compareNumeric(a.Rating, b.Rating) }
	case SortByFeedbacks:
		return func(a, b Product) int { return compareNumeric(float64(a.Feedbacks), float64(b.Feedbacks)) }
	}
	return nil
}

// Sort returns a new slice ordered by the selected field. An unknown key
// returns the input order unchanged, it is not an error.
func Sort(view []Product, key SortKey, order Order) []Product {
	result := slices.Clone(view)
	cmp := compareBy(key)
	if cmp == nil {
		return result
	}
	if order == Descending {
		inner := cmp
		cmp = func(a, b Product) int { return -inner(a, b) }
	}
	slices.SortFunc(result, cmp)
	return result
}
