package server

import (
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gorilla/schema"

	"github.com/wbpulse/wbpulse/pkg/catalog"
	"github.com/wbpulse/wbpulse/pkg/store"
)

// ListingQuery is the decoded filter/sort state of the dashboard
// controls.
type ListingQuery struct {
	catalog.Criteria
	Sort string `json:"sort" schema:"sort"`
}

// DecodeListingQuery reads the dashboard controls from the query
// string. Omitted bounds fall back to the full slider range so a bare
// request returns the whole catalog.
func DecodeListingQuery(r *http.Request, bounds store.Bounds) (ListingQuery, error) {
	query := ListingQuery{Criteria: catalog.Criteria{MaxPrice: bounds.Max}}
	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&query, r.URL.Query()); err != nil {
		return query, err
	}
	return query, nil
}

// CacheKey is a stable serialization of the full control state.
func (q ListingQuery) CacheKey() string {
	data, err := sonic.Marshal(q)
	if err != nil {
		return ""
	}
	return string(data)
}
