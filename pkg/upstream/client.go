// Package upstream talks to the product sources: a catalog-listing
// endpoint serving the already-collected products, and the marketplace
// search API used to (re)generate the collection from a query.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wbpulse/wbpulse/pkg/catalog"
)

// ErrEmptyQuery is returned before any network call when the search
// query is empty after trimming.
var ErrEmptyQuery = errors.New("search query must not be empty")

// ServerError carries a non-success upstream response. Message is the
// server-provided error body when one was present.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream responded %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream responded %d", e.Status)
}

const (
	defaultDest    = -1257786
	defaultRegions = "80,64,38,4,115,83,33,68,70,69,30,86,75,40,1,66,48,110,31,22,71,114"
)

type Client struct {
	// CatalogURL is the listing endpoint returning {"products": [...]}.
	CatalogURL string
	// SearchURL is the marketplace search endpoint used for generation.
	SearchURL string
	Dest      int
	Regions   string

	HTTPClient *http.Client
}

func NewClient(catalogURL, searchURL string) *Client {
	return &Client{
		CatalogURL: catalogURL,
		SearchURL:  searchURL,
		Dest:       defaultDest,
		Regions:    defaultRegions,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		serverErr := &ServerError{Status: res.StatusCode}
		var body struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(res.Body).Decode(&body) == nil {
			serverErr.Message = body.Message
		}
		return serverErr
	}
	return json.NewDecoder(res.Body).Decode(out)
}

type listingResponse struct {
	Products []catalog.Product `json:"products"`
}

// LoadCatalog reads the whole product collection from the listing
// endpoint.
func (c *Client) LoadCatalog(ctx context.Context) ([]catalog.Product, error) {
	var listing listingResponse
	if err := c.get(ctx, c.CatalogURL, &listing); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return listing.Products, nil
}

type searchProduct struct {
	Id           int64   `json:"id"`
	Name         string  `json:"name"`
	PriceU       int64   `json:"priceU"`
	SalePriceU   int64   `json:"salePriceU"`
	ReviewRating float64 `json:"reviewRating"`
	Feedbacks    int     `json:"feedbacks"`
}

type searchResponse struct {
	Data struct {
		Products []searchProduct `json:"products"`
	} `json:"data"`
}

// Search queries the marketplace search API and maps the raw entries to
// catalog products. Prices arrive in kopecks and are converted to whole
// rubles with integer division.
func (c *Client) Search(ctx context.Context, query string, quantity int) ([]catalog.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("resultset", "catalog")
	params.Set("dest", strconv.Itoa(c.Dest))
	params.Set("regions", c.Regions)
	params.Set("limit", strconv.Itoa(quantity))

	var response searchResponse
	if err := c.get(ctx, c.SearchURL+"?"+params.Encode(), &response); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	products := make([]catalog.Product, 0, len(response.Data.Products))
	for _, raw := range response.Data.Products {
		products = append(products, catalog.Product{
			Id:            raw.Id,
			Name:          strings.ToValidUTF8(raw.Name, "�"),
			Price:         float64(raw.PriceU / 100),
			DiscountPrice: float64(raw.SalePriceU / 100),
			Rating:        raw.ReviewRating,
			Feedbacks:     raw.Feedbacks,
		})
	}
	return products, nil
}
