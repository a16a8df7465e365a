// Package charts derives the dashboard chart series from a product
// view. Both derivations are pure and carry no rendering dependency,
// the consuming frontend feeds the output straight into its chart
// widgets.
package charts

import (
	"fmt"

	"github.com/wbpulse/wbpulse/pkg/catalog"
	"github.com/wbpulse/wbpulse/pkg/format"
)

// HistogramCeiling is the inclusive upper bound of the last price
// bucket. Products priced above it are excluded from every bucket even
// though the listing itself has no such cap.
const HistogramCeiling = 50000

const bucketWidth = 10000

type priceRange struct {
	min float64
	max float64
}

var priceRanges = []priceRange{
	{0, 9999},
	{10000, 19999},
	{20000, 29999},
	{30000, 39999},
	{40000, HistogramCeiling},
}

// Histogram is a fixed-width price histogram, Labels and Counts are
// parallel and always five entries long.
type Histogram struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// PriceHistogram counts products per price range. An empty view yields
// all-zero counts.
func PriceHistogram(view []catalog.Product) Histogram {
	h := Histogram{
		Labels: make([]string, len(priceRanges)),
		Counts: make([]int, len(priceRanges)),
	}
	for i, r := range priceRanges {
		h.Labels[i] = fmt.Sprintf("%s-%s", format.Price(r.min), format.Price(r.max))
	}
	for _, p := range view {
		for i, r := range priceRanges {
			if p.Price >= r.min && p.Price <= r.max {
				h.Counts[i]++
				break
			}
		}
	}
	return h
}
