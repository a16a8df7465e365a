package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wbpulse/wbpulse/pkg/catalog"
	"github.com/wbpulse/wbpulse/pkg/charts"
	"github.com/wbpulse/wbpulse/pkg/store"
	"github.com/wbpulse/wbpulse/pkg/upstream"
)

var (
	noListings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wbpulse_listings_total",
		Help: "The total number of product listing requests",
	})
	noCharts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wbpulse_charts_total",
		Help: "The total number of chart aggregate requests",
	})
	noGenerations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wbpulse_generations_total",
		Help: "The total number of catalog generation requests",
	})
	noGenerationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wbpulse_generation_failures_total",
		Help: "The total number of failed catalog generations",
	})
)

const chartCacheTTL = 5 * time.Minute

type ListingResponse struct {
	Products  []catalog.Product `json:"products"`
	TotalHits int               `json:"totalHits"`
	Bounds    store.Bounds      `json:"bounds"`
}

func (ws *WebServer) GetProducts(w http.ResponseWriter, r *http.Request, sessionId uint32, enc *json.Encoder) error {
	noListings.Inc()
	bounds, err := ws.Store.Bounds()
	if err != nil {
		writeStoreError(w, err)
		return nil
	}
	query, err := DecodeListingQuery(r, bounds)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid filter parameters")
		return nil
	}
	view, err := ws.Store.Apply(query.Criteria, query.Sort)
	if err != nil {
		writeStoreError(w, err)
		return nil
	}
	if ws.Tracking != nil {
		go func() {
			if err := ws.Tracking.TrackListing(sessionId, query.Criteria, query.Sort); err != nil {
				log.Printf("Failed to track listing: %v", err)
			}
		}()
	}
	w.Header().Set("Content-Type", "application/json")
	return enc.Encode(ListingResponse{
		Products:  view,
		TotalHits: len(view),
		Bounds:    bounds,
	})
}

// chartView derives the filtered view for a chart request without
// touching the store's active criteria.
func (ws *WebServer) chartView(r *http.Request) ([]catalog.Product, ListingQuery, error) {
	bounds, err := ws.Store.Bounds()
	if err != nil {
		return nil, ListingQuery{}, err
	}
	query, err := DecodeListingQuery(r, bounds)
	if err != nil {
		return nil, ListingQuery{}, err
	}
	all, err := ws.Store.Products()
	if err != nil {
		return nil, ListingQuery{}, err
	}
	return catalog.Filter(all, query.Criteria), query, nil
}

func writeChartError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotLoaded) || errors.Is(err, store.ErrBusy) {
		writeStoreError(w, err)
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid filter parameters")
}

func (ws *WebServer) GetPriceHistogram(w http.ResponseWriter, r *http.Request, sessionId uint32, enc *json.Encoder) error {
	noCharts.Inc()
	view, query, err := ws.chartView(r)
	if err != nil {
		writeChartError(w, err)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")

	cacheKey := "histogram:" + query.CacheKey()
	if ws.Cache != nil {
		var cached charts.Histogram
		if err := ws.Cache.Get(r.Context(), cacheKey, &cached); err == nil {
			return enc.Encode(cached)
		}
	}
	histogram := charts.PriceHistogram(view)
	if ws.Cache != nil {
		if err := ws.Cache.Set(r.Context(), cacheKey, histogram, chartCacheTTL); err != nil {
			log.Printf("Failed to cache histogram: %v", err)
		}
	}
	ws.trackChart(sessionId, "price-histogram")
	return enc.Encode(histogram)
}

func (ws *WebServer) GetDiscountRating(w http.ResponseWriter, r *http.Request, sessionId uint32, enc *json.Encoder) error {
	noCharts.Inc()
	view, query, err := ws.chartView(r)
	if err != nil {
		writeChartError(w, err)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")

	cacheKey := "discount:" + query.CacheKey()
	if ws.Cache != nil {
		var cached charts.DiscountSeries
		if err := ws.Cache.Get(r.Context(), cacheKey, &cached); err == nil {
			return enc.Encode(cached)
		}
	}
	series := charts.DiscountByRating(view)
	if ws.Cache != nil {
		if err := ws.Cache.Set(r.Context(), cacheKey, series, chartCacheTTL); err != nil {
			log.Printf("Failed to cache discount series: %v", err)
		}
	}
	ws.trackChart(sessionId, "discount-rating")
	return enc.Encode(series)
}

func (ws *WebServer) trackChart(sessionId uint32, chart string) {
	if ws.Tracking == nil {
		return
	}
	go func() {
		if err := ws.Tracking.TrackChart(sessionId, chart); err != nil {
			log.Printf("Failed to track chart: %v", err)
		}
	}()
}

func (ws *WebServer) GetBounds(w http.ResponseWriter, r *http.Request, sessionId uint32, enc *json.Encoder) error {
	bounds, err := ws.Store.Bounds()
	if err != nil {
		writeStoreError(w, err)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	return enc.Encode(bounds)
}

type DefaultsResponse struct {
	Criteria catalog.Criteria `json:"criteria"`
	Bounds   store.Bounds     `json:"bounds"`
}

func (ws *WebServer) GetDefaults(w http.ResponseWriter, r *http.Request, sessionId uint32, enc *json.Encoder) error {
	bounds, err := ws.Store.Bounds()
	if err != nil {
		writeStoreError(w, err)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	return enc.Encode(DefaultsResponse{
		Criteria: catalog.Defaults(bounds.Max),
		Bounds:   bounds,
	})
}

func (ws *WebServer) ResetFilters(w http.ResponseWriter, r *http.Request, sessionId uint32, enc *json.Encoder) error {
	criteria, view, err := ws.Store.Reset()
	if err != nil {
		writeStoreError(w, err)
		return nil
	}
	bounds, err := ws.Store.Bounds()
	if err != nil {
		writeStoreError(w, err)
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	return enc.Encode(struct {
		Criteria catalog.Criteria `json:"criteria"`
		ListingResponse
	}{
		Criteria: criteria,
		ListingResponse: ListingResponse{
			Products:  view,
			TotalHits: len(view),
			Bounds:    bounds,
		},
	})
}

type GenerationRequest struct {
	Query    string `json:"query"`
	Quantity int    `json:"quantity"`
}

type GenerationResponse struct {
	JobId   string `json:"job_id"`
	Added   int    `json:"added"`
	Message string `json:"message"`
}

const defaultGenerationQuantity = 10

// GenerateProducts fetches a fresh collection from the marketplace
// search API and replaces the catalog wholesale. Exactly one generation
// may run at a time.
func (ws *WebServer) GenerateProducts(w http.ResponseWriter, r *http.Request, sessionId uint32, enc *json.Encoder) error {
	noGenerations.Inc()
	var req GenerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "Please enter search query")
		return nil
	}
	if req.Quantity <= 0 {
		req.Quantity = defaultGenerationQuantity
	}

	if err := ws.Store.BeginGeneration(); err != nil {
		writeStoreError(w, err)
		return nil
	}
	defer ws.Store.EndGeneration()

	jobId := uuid.NewString()
	log.Printf("Generation %s: query %q quantity %d", jobId, req.Query, req.Quantity)

	products, err := ws.Upstream.Search(r.Context(), req.Query, req.Quantity)
	if err != nil {
		noGenerationFailures.Inc()
		if errors.Is(err, upstream.ErrEmptyQuery) {
			writeError(w, http.StatusBadRequest, "Please enter search query")
			return nil
		}
		writeUpstreamError(w, err)
		return nil
	}

	if ws.Announce != nil {
		ws.Announce.SetJob(jobId, req.Query)
	}
	ws.Store.ReplaceAll(products)
	if ws.Cache != nil {
		ws.Cache.Invalidate()
	}
	if ws.Storage != nil {
		if err := ws.Storage.SaveCatalog(products); err != nil {
			log.Printf("Failed to persist catalog snapshot: %v", err)
		}
	}
	if ws.Tracking != nil {
		go func() {
			if err := ws.Tracking.TrackGeneration(sessionId, req.Query, req.Quantity); err != nil {
				log.Printf("Failed to track generation: %v", err)
			}
		}()
	}

	w.Header().Set("Content-Type", "application/json")
	return enc.Encode(GenerationResponse{
		JobId:   jobId,
		Added:   len(products),
		Message: "Products loaded successfully!",
	})
}

// SaveCatalog snapshots the current catalog to disk.
func (ws *WebServer) SaveCatalog(w http.ResponseWriter, r *http.Request) {
	products, err := ws.Store.Products()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := ws.Storage.SaveCatalog(products); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ClearCatalog wipes both the in-memory catalog and the snapshot.
func (ws *WebServer) ClearCatalog(w http.ResponseWriter, r *http.Request) {
	ws.Store.Clear()
	if ws.Cache != nil {
		ws.Cache.Invalidate()
	}
	if ws.Storage != nil {
		if err := ws.Storage.ClearCatalog(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReloadCatalog re-reads the listing endpoint and replaces the catalog.
func (ws *WebServer) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	if ws.Upstream == nil || ws.Upstream.CatalogURL == "" {
		writeError(w, http.StatusServiceUnavailable, "No catalog source configured")
		return
	}
	products, err := ws.Upstream.LoadCatalog(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	ws.Store.ReplaceAll(products)
	if ws.Cache != nil {
		ws.Cache.Invalidate()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(GenerationResponse{Added: len(products), Message: "Catalog reloaded"})
}
