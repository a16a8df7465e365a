// Package store owns the in-memory product collection backing the
// dashboard: the authoritative catalog, the currently filtered view and
// the price slider bounds derived from the latest fetch.
package store

import (
	"errors"
	"math"
	"slices"
	"sync"

	"github.com/wbpulse/wbpulse/pkg/catalog"
)

var (
	// ErrNotLoaded is returned for any view operation issued before the
	// first successful catalog fetch.
	ErrNotLoaded = errors.New("catalog not loaded yet")
	// ErrBusy is returned when a generation request is issued while a
	// previous one is still pending.
	ErrBusy = errors.New("catalog generation already in progress")
)

// Bounds is the price slider range. Max covers the highest observed
// price rounded up to the next thousand, never below 100000, so stale
// bounds cannot hide data.
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

const (
	boundsFloor = 100000
	boundsStep  = 1000
)

// PriceBounds computes slider bounds for a product collection.
func PriceBounds(products []catalog.Product) Bounds {
	max := catalog.MaxPrice(products)
	if max < boundsFloor {
		max = boundsFloor
	}
	return Bounds{Max: math.Ceil(max/boundsStep) * boundsStep}
}

// ChangeHandler is notified after the catalog has been replaced.
type ChangeHandler interface {
	CatalogReplaced(count int)
}

// Store holds the catalog and the derived view. The view is fully
// rederivable from the catalog plus the active criteria, it carries no
// identity of its own.
type Store struct {
	mu        sync.RWMutex
	all       []catalog.Product
	view      []catalog.Product
	criteria  catalog.Criteria
	sortKey   catalog.SortKey
	sortOrder catalog.Order
	hasSort   bool
	bounds    Bounds
	loaded    bool
	busy      bool

	ChangeHandler ChangeHandler
}

func New() *Store {
	return &Store{}
}

// ReplaceAll swaps in a freshly fetched catalog wholesale, recomputes
// the slider bounds and rederives the view with the criteria and sort
// that were active before the fetch.
func (s *Store) ReplaceAll(products []catalog.Product) {
	s.mu.Lock()
	s.all = slices.Clone(products)
	s.loaded = true
	s.bounds = PriceBounds(s.all)
	if s.criteria == (catalog.Criteria{}) {
		s.criteria = catalog.Everything()
	}
	s.rederive()
	handler := s.ChangeHandler
	count := len(s.all)
	s.mu.Unlock()

	if handler != nil {
		handler.CatalogReplaced(count)
	}
}

// rederive recomputes the view. Callers hold the write lock.
func (s *Store) rederive() {
	view := catalog.Filter(s.all, s.criteria)
	if s.hasSort {
		view = catalog.Sort(view, s.sortKey, s.sortOrder)
	}
	s.view = view
}

// Apply sets the active criteria and sort selector and returns the
// resulting view. An empty or unknown selector leaves the filtered
// order untouched.
func (s *Store) Apply(criteria catalog.Criteria, sortValue string) ([]catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	s.criteria = criteria
	s.sortKey, s.sortOrder, s.hasSort = catalog.ParseSort(sortValue)
	s.rederive()
	return slices.Clone(s.view), nil
}

// Reset restores the default filter state (full price range, rating
// 4.0 and up, any feedback count) and returns both the defaults and the
// resulting view.
func (s *Store) Reset() (catalog.Criteria, []catalog.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return catalog.Criteria{}, nil, ErrNotLoaded
	}
	s.criteria = catalog.Defaults(s.bounds.Max)
	s.hasSort = false
	s.rederive()
	return s.criteria, slices.Clone(s.view), nil
}

// View returns the current filtered view.
func (s *Store) View() ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return slices.Clone(s.view), nil
}

// Products returns the full catalog.
func (s *Store) Products() ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNotLoaded
	}
	return slices.Clone(s.all), nil
}

// Bounds returns the current price slider bounds.
func (s *Store) Bounds() (Bounds, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Bounds{}, ErrNotLoaded
	}
	return s.bounds, nil
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.all)
}

// Clear wipes the catalog and drops back to the not-loaded state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = nil
	s.view = nil
	s.loaded = false
	s.bounds = Bounds{}
	s.criteria = catalog.Criteria{}
	s.hasSort = false
}

// BeginGeneration claims the generation busy flag. Exactly one
// generation request may be in flight, overlapping catalog writes are
// rejected with ErrBusy.
func (s *Store) BeginGeneration() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

func (s *Store) EndGeneration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
}

func (s *Store) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}
