package server

import (
	"net/http/httptest"
	"testing"

	"github.com/wbpulse/wbpulse/pkg/store"
)

func TestDecodeListingQueryDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/products", nil)
	query, err := DecodeListingQuery(r, store.Bounds{Max: 100000})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if query.MinPrice != 0 || query.MaxPrice != 100000 {
		t.Errorf("Expected full price range, got %v-%v", query.MinPrice, query.MaxPrice)
	}
	if query.MinRating != 0 || query.MinFeedbacks != 0 {
		t.Errorf("Expected open rating/feedback bounds, got %v/%v", query.MinRating, query.MinFeedbacks)
	}
	if query.Sort != "" {
		t.Errorf("Expected no sort, got %q", query.Sort)
	}
}

func TestDecodeListingQueryParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/products?min_price=100&max_price=5000&min_rating=4.5&min_feedbacks=5&sort=price_desc", nil)
	query, err := DecodeListingQuery(r, store.Bounds{Max: 100000})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if query.MinPrice != 100 || query.MaxPrice != 5000 {
		t.Errorf("Expected 100-5000, got %v-%v", query.MinPrice, query.MaxPrice)
	}
	if query.MinRating != 4.5 || query.MinFeedbacks != 5 {
		t.Errorf("Expected 4.5/5, got %v/%v", query.MinRating, query.MinFeedbacks)
	}
	if query.Sort != "price_desc" {
		t.Errorf("Expected price_desc, got %q", query.Sort)
	}
}

func TestDecodeListingQueryExactValues(t *testing.T) {
	r := httptest.NewRequest("GET", "/products?exact_price=500&exact_rating=4&exact_feedbacks=12", nil)
	query, err := DecodeListingQuery(r, store.Bounds{Max: 100000})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if query.ExactPrice == nil || *query.ExactPrice != 500 {
		t.Errorf("Expected exact price 500, got %v", query.ExactPrice)
	}
	if query.ExactRating == nil || *query.ExactRating != 4 {
		t.Errorf("Expected exact rating 4, got %v", query.ExactRating)
	}
	if query.ExactFeedbacks == nil || *query.ExactFeedbacks != 12 {
		t.Errorf("Expected exact feedbacks 12, got %v", query.ExactFeedbacks)
	}
}

func TestDecodeListingQueryIgnoresUnknownKeys(t *testing.T) {
	r := httptest.NewRequest("GET", "/products?utm_source=banner&min_rating=3", nil)
	query, err := DecodeListingQuery(r, store.Bounds{Max: 100000})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if query.MinRating != 3 {
		t.Errorf("Expected min rating 3, got %v", query.MinRating)
	}
}

func TestCacheKeyVariesWithCriteria(t *testing.T) {
	a := ListingQuery{Sort: "price_asc"}
	b := ListingQuery{Sort: "price_desc"}
	if a.CacheKey() == b.CacheKey() {
		t.Errorf("Expected distinct cache keys")
	}
	if a.CacheKey() == "" {
		t.Errorf("Expected non-empty cache key")
	}
}
