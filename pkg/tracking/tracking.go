package tracking

import (
	"net/http"

	"github.com/wbpulse/wbpulse/pkg/catalog"
)

type Tracking interface {
	TrackSession(sessionId uint32, r *http.Request) error
	TrackListing(sessionId uint32, criteria catalog.Criteria, sort string) error
	TrackChart(sessionId uint32, chart string) error
	TrackGeneration(sessionId uint32, query string, quantity int) error
}
