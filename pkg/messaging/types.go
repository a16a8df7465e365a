package messaging

type ChangeTopic string

const (
	// CatalogUpdatedTopic is published after the product collection has
	// been replaced by a fetch or generation run.
	CatalogUpdatedTopic ChangeTopic = "catalog_updated"
	// TrackingTopic carries dashboard usage events.
	TrackingTopic ChangeTopic = "tracking"
)

// CatalogUpdated tells listening instances to re-fetch their view of
// the catalog.
type CatalogUpdated struct {
	JobId string `json:"job_id,omitempty"`
	Query string `json:"query,omitempty"`
	Count int    `json:"count"`
}
