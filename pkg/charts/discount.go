package charts

import (
	"fmt"
	"math"

	"github.com/wbpulse/wbpulse/pkg/catalog"
)

const (
	ratingStep    = 0.5
	ratingBuckets = 11 // 0.0 .. 5.0 inclusive
)

// DiscountSeries is the average discount percentage per half-step
// rating bucket, ascending. Values holds nil for buckets without any
// contributing product so the renderer shows a gap instead of a
// zero-discount point.
type DiscountSeries struct {
	Labels []string   `json:"labels"`
	Values []*float64 `json:"values"`
}

// DiscountByRating groups the view by rating rounded to the nearest
// half step and averages the discount percentage within each bucket.
// Products with a zero price carry no discount percentage and are
// skipped entirely.
func DiscountByRating(view []catalog.Product) DiscountSeries {
	sums := make([]float64, ratingBuckets)
	counts := make([]int, ratingBuckets)

	for _, p := range view {
		pct, ok := p.DiscountPct()
		if !ok {
			continue
		}
		bucket := int(math.Round(p.Rating / ratingStep))
		if bucket < 0 || bucket >= ratingBuckets {
			continue
		}
		sums[bucket] += pct
		counts[bucket]++
	}

	series := DiscountSeries{
		Labels: make([]string, ratingBuckets),
		Values: make([]*float64, ratingBuckets),
	}
	for i := range ratingBuckets {
		series.Labels[i] = fmt.Sprintf("%.1f", float64(i)*ratingStep)
		if counts[i] > 0 {
			mean := sums[i] / float64(counts[i])
			series.Values[i] = &mean
		}
	}
	return series
}
