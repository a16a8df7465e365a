package catalog

import (
	"slices"
	"testing"
)

func TestParseSort(t *testing.T) {
	key, order, ok := ParseSort("price_desc")
	if !ok || key != SortByPrice || order != Descending {
		t.Errorf("Expected price descending, got %v %v %v", key, order, ok)
	}
	key, order, ok = ParseSort("discount_price_asc")
	if !ok || key != SortByDiscountPrice || order != Ascending {
		t.Errorf("Expected discount_price ascending, got %v %v %v", key, order, ok)
	}
	if _, _, ok = ParseSort(""); ok {
		t.Errorf("Expected empty selector to be rejected")
	}
	if _, _, ok = ParseSort("popularity_desc"); ok {
		t.Errorf("Expected unknown key to be rejected")
	}
}

func TestSortPriceReversal(t *testing.T) {
	products := []Product{
		{Name: "a", Price: 300},
		{Name: "b", Price: 100},
		{Name: "c", Price: 200},
	}
	asc := Sort(products, SortByPrice, Ascending)
	desc := Sort(products, SortByPrice, Descending)
	for i := range asc {
		if asc[i] != desc[len(desc)-1-i] {
			t.Errorf("Descending is not the reverse of ascending at %d", i)
		}
	}
	if !slices.IsSortedFunc(asc, func(a, b Product) int { return compareNumeric(a.Price, b.Price) }) {
		t.Errorf("Ascending order broken: %v", asc)
	}
}

func TestSortUnknownKeyIsNoop(t *testing.T) {
	products := []Product{
		{Name: "z", Price: 1},
		{Name: "a", Price: 2},
	}
	result := Sort(products, SortKey("unknown"), Ascending)
	for i := range products {
		if result[i] != products[i] {
			t.Errorf("Expected unchanged order at %d", i)
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	products := []Product{
		{Name: "b", Price: 2},
		{Name: "a", Price: 1},
	}
	Sort(products, SortByPrice, Ascending)
	if products[0].Name != "b" {
		t.Errorf("Input order mutated")
	}
}

func TestSortByName(t *testing.T) {
	products := []Product{
		{Name: "яблоко"},
		{Name: "арбуз"},
		{Name: "банан"},
	}
	sorted := Sort(products, SortByName, Ascending)
	expected := []string{"арбуз", "банан", "яблоко"}
	for i, name := range expected {
		if sorted[i].Name != name {
			t.Errorf("Expected %s at %d, got %s", name, i, sorted[i].Name)
		}
	}
}

func TestSortByFeedbacks(t *testing.T) {
	products := []Product{
		{Name: "a", Feedbacks: 5},
		{Name: "b", Feedbacks: 50},
		{Name: "c", Feedbacks: 1},
	}
	sorted := Sort(products, SortByFeedbacks, Descending)
	if sorted[0].Feedbacks != 50 || sorted[2].Feedbacks != 1 {
		t.Errorf("Unexpected order: %v", sorted)
	}
}
