package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wbpulse/wbpulse/pkg/catalog"
	"github.com/wbpulse/wbpulse/pkg/charts"
	"github.com/wbpulse/wbpulse/pkg/storage"
	"github.com/wbpulse/wbpulse/pkg/store"
	"github.com/wbpulse/wbpulse/pkg/upstream"
)

var testProducts = []catalog.Product{
	{Name: "Keyboard", Price: 5000, DiscountPrice: 4000, Rating: 4.2, Feedbacks: 10},
	{Name: "Monitor", Price: 15000, DiscountPrice: 15000, Rating: 2.0, Feedbacks: 0},
}

func newTestServer() *WebServer {
	s := store.New()
	s.ReplaceAll(testProducts)
	return &WebServer{Store: s}
}

func TestGetProductsNotLoaded(t *testing.T) {
	ws := &WebServer{Store: store.New()}
	rec := httptest.NewRecorder()
	ws.ClientHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/products", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Expected JSON error body: %v", err)
	}
	if body.Message == "" {
		t.Errorf("Expected a user-visible message")
	}
}

func TestGetProductsFiltersAndSorts(t *testing.T) {
	ws := newTestServer()
	rec := httptest.NewRecorder()
	ws.ClientHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/products?min_rating=4&sort=price_asc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body ListingResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.TotalHits != 1 || len(body.Products) != 1 {
		t.Fatalf("Expected 1 hit, got %d", body.TotalHits)
	}
	if body.Products[0].Name != "Keyboard" {
		t.Errorf("Expected Keyboard, got %s", body.Products[0].Name)
	}
	if body.Bounds.Max != 100000 {
		t.Errorf("Expected slider bound 100000, got %v", body.Bounds.Max)
	}
}

func TestGetPriceHistogram(t *testing.T) {
	ws := newTestServer()
	rec := httptest.NewRecorder()
	ws.ClientHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/charts/price-histogram", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var h charts.Histogram
	if err := json.NewDecoder(rec.Body).Decode(&h); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	expected := []int{1, 1, 0, 0, 0}
	for i, count := range expected {
		if h.Counts[i] != count {
			t.Errorf("Bucket %d: expected %d, got %d", i, count, h.Counts[i])
		}
	}
}

func TestGetDiscountRating(t *testing.T) {
	ws := newTestServer()
	rec := httptest.NewRecorder()
	ws.ClientHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/charts/discount-rating", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var series charts.DiscountSeries
	if err := json.NewDecoder(rec.Body).Decode(&series); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(series.Values) != 11 {
		t.Fatalf("Expected 11 buckets, got %d", len(series.Values))
	}
	if v := series.Values[8]; v == nil || *v != 20 {
		t.Errorf("Bucket 4.0: expected 20, got %v", v)
	}
}

func TestResetFilters(t *testing.T) {
	ws := newTestServer()
	rec := httptest.NewRecorder()
	ws.ClientHandler().ServeHTTP(rec, httptest.NewRequest("POST", "/reset", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Criteria catalog.Criteria `json:"criteria"`
		ListingResponse
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Criteria.MinRating != 4.0 || body.Criteria.MinFeedbacks != 0 {
		t.Errorf("Expected defaults, got %+v", body.Criteria)
	}
	if body.TotalHits != 1 {
		t.Errorf("Expected 1 product with rating >= 4, got %d", body.TotalHits)
	}
}

func TestGenerateProducts(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"products":[{"id":1,"name":"Cable","priceU":50000,"salePriceU":40000,"reviewRating":4.9,"feedbacks":7}]}}`))
	}))
	defer source.Close()

	ws := newTestServer()
	ws.Upstream = upstream.NewClient("", source.URL)
	ws.Storage = storage.NewDiskStorage(t.TempDir())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/products", strings.NewReader(`{"query":"cable","quantity":1}`))
	ws.ClientHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body GenerationResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body.Added != 1 || body.JobId == "" {
		t.Errorf("Unexpected generation response: %+v", body)
	}
	if ws.Store.Len() != 1 {
		t.Errorf("Expected catalog replaced, got %d products", ws.Store.Len())
	}
	if snapshot, err := ws.Storage.LoadCatalog(); err != nil || len(snapshot) != 1 {
		t.Errorf("Expected snapshot persisted, got %v/%v", snapshot, err)
	}
}

func TestGenerateProductsEmptyQuery(t *testing.T) {
	ws := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/products", strings.NewReader(`{"query":"   ","quantity":1}`))
	ws.ClientHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
	if ws.Store.Len() != len(testProducts) {
		t.Errorf("Catalog must stay untouched on validation failure")
	}
}

func TestGenerateProductsBusy(t *testing.T) {
	ws := newTestServer()
	if err := ws.Store.BeginGeneration(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/products", strings.NewReader(`{"query":"cable","quantity":1}`))
	ws.ClientHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", rec.Code)
	}
}

func TestGenerateProductsUpstreamFailure(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer source.Close()

	ws := newTestServer()
	ws.Upstream = upstream.NewClient("", source.URL)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/products", strings.NewReader(`{"query":"cable","quantity":1}`))
	ws.ClientHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}
	var body errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Expected JSON error body: %v", err)
	}
	if body.Message != "rate limited" {
		t.Errorf("Expected server message passthrough, got %q", body.Message)
	}
	if ws.Store.Len() != len(testProducts) {
		t.Errorf("Catalog must stay untouched on upstream failure")
	}
}

func TestAdminRequiresToken(t *testing.T) {
	ws := newTestServer()
	ws.Auth = &Auth{ServerKey: []byte("test-key"), AdminKey: "secret"}
	ws.Storage = storage.NewDiskStorage(t.TempDir())
	mux := ws.AdminHandler()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/save", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("POST", "/login", strings.NewReader(`{"key":"secret"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected login to succeed, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("Expected a token cookie")
	}

	req := httptest.NewRequest("POST", "/save", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 with token, got %d", rec.Code)
	}
}

func TestLoginRejectsWrongKey(t *testing.T) {
	ws := newTestServer()
	ws.Auth = &Auth{ServerKey: []byte("test-key"), AdminKey: "secret"}
	rec := httptest.NewRecorder()
	ws.AdminHandler().ServeHTTP(rec, httptest.NewRequest("POST", "/login", strings.NewReader(`{"key":"wrong"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestClearCatalog(t *testing.T) {
	ws := newTestServer()
	ws.Auth = &Auth{ServerKey: []byte("test-key"), AdminKey: "secret"}
	ws.ClearCatalog(httptest.NewRecorder(), httptest.NewRequest("POST", "/clear", nil))
	if ws.Store.Loaded() {
		t.Errorf("Expected store cleared")
	}
}
