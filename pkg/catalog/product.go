package catalog

// Product is a single catalog entry. Fields are read-only once fetched,
// the JSON shape matches the upstream listing payload.
type Product struct {
	Id            int64   `json:"wb_id,omitempty"`
	Name          string  `json:"product_name"`
	Price         float64 `json:"price"`
	DiscountPrice float64 `json:"discount_price"`
	Rating        float64 `json:"rating"`
	Feedbacks     int     `json:"feedbacks"`
}

// DiscountPct returns the discount percentage relative to the listed
// price. The second return value is false when the price is zero and no
// meaningful percentage exists.
func (p Product) DiscountPct() (float64, bool) {
	if p.Price == 0 {
		return 0, false
	}
	return (p.Price - p.DiscountPrice) / p.Price * 100, true
}

// MaxPrice returns the highest listed price in the collection, zero for
// an empty collection.
func MaxPrice(products []Product) float64 {
	max := 0.0
	for _, p := range products {
		if p.Price > max {
			max = p.Price
		}
	}
	return max
}
