// Package server exposes the dashboard HTTP surface: the filtered and
// sorted product listing, the two chart aggregates and the catalog
// generation trigger. Handlers only decode, delegate and encode, the
// data transformations live in catalog, charts and store.
package server

import (
	"net/http"

	"github.com/wbpulse/wbpulse/pkg/common"
	"github.com/wbpulse/wbpulse/pkg/storage"
	"github.com/wbpulse/wbpulse/pkg/store"
	"github.com/wbpulse/wbpulse/pkg/tracking"
	"github.com/wbpulse/wbpulse/pkg/upstream"
)

// JobAnnouncer receives generation metadata before the catalog replace
// fires the change notification.
type JobAnnouncer interface {
	SetJob(jobId, query string)
}

type WebServer struct {
	Store    *store.Store
	Upstream *upstream.Client
	Storage  *storage.DiskStorage
	Cache    *Cache
	Tracking tracking.Tracking
	Announce JobAnnouncer
	Auth     *Auth
}

// ClientHandler serves the public dashboard API.
func (ws *WebServer) ClientHandler() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", common.JsonHandler(ws.Tracking, ws.GetProducts))
	mux.HandleFunc("POST /products", common.JsonHandler(ws.Tracking, ws.GenerateProducts))
	mux.HandleFunc("OPTIONS /products", common.RespondToOptions)
	mux.HandleFunc("GET /charts/price-histogram", common.JsonHandler(ws.Tracking, ws.GetPriceHistogram))
	mux.HandleFunc("GET /charts/discount-rating", common.JsonHandler(ws.Tracking, ws.GetDiscountRating))
	mux.HandleFunc("GET /bounds", common.JsonHandler(ws.Tracking, ws.GetBounds))
	mux.HandleFunc("GET /defaults", common.JsonHandler(ws.Tracking, ws.GetDefaults))
	mux.HandleFunc("POST /reset", common.JsonHandler(ws.Tracking, ws.ResetFilters))
	return mux
}

// AdminHandler serves the token-guarded maintenance surface.
func (ws *WebServer) AdminHandler() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", ws.Auth.Login)
	mux.HandleFunc("POST /save", ws.Auth.Middleware(ws.SaveCatalog))
	mux.HandleFunc("POST /clear", ws.Auth.Middleware(ws.ClearCatalog))
	mux.HandleFunc("POST /reload", ws.Auth.Middleware(ws.ReloadCatalog))
	return mux
}
