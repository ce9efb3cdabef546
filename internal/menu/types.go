// Package menu defines core types shared across subsystems.
package menu

import "time"

// Restriction is one member of the closed dietary-restriction enumeration.
type Restriction string

// Restriction values attached to menu items.
const (
	RestrictionGluten     Restriction = "GLUTEN"
	RestrictionLactose    Restriction = "LACTOSE"
	RestrictionVegan      Restriction = "VEGAN"
	RestrictionVegetarian Restriction = "VEGETARIAN"
	RestrictionHalal      Restriction = "HALAL"
	RestrictionKosher     Restriction = "KOSHER"
	RestrictionNut        Restriction = "NUT"
	RestrictionNone       Restriction = "NONE"
)

// MenuItem is one normalized entry of a restaurant menu.
//
// Price 0.0 is the "unknown price" sentinel, not a real zero price.
// Restrictions is never empty: an unclassified or restriction-free item
// carries the explicit NONE member.
type MenuItem struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Price        float64        `json:"price"`
	Category     string         `json:"category"`
	DietaryInfo  []string       `json:"dietary_info,omitempty"`
	Restrictions RestrictionSet `json:"restrictions"`
}

// DefaultCategory is assigned when the source carries no category.
const DefaultCategory = "Uncategorized"

// Restaurant is the unit of work flowing through the discovery pipeline.
// The Locator creates it with identity, rating, price level and website
// populated; the Processor fills MenuItems exactly once.
type Restaurant struct {
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	Rating     float64    `json:"rating"`
	PriceLevel int        `json:"price_level"`
	Website    string     `json:"website"`
	MenuItems  []MenuItem `json:"menu_items"`
}

// IdentityKey is the deduplication key for merged search batches.
type IdentityKey struct {
	Name    string
	Address string
}

// Key returns the restaurant's deduplication identity.
func (r Restaurant) Key() IdentityKey {
	return IdentityKey{Name: r.Name, Address: r.Address}
}

// JobStatus represents the lifecycle state of a discovery job.
type JobStatus string

// Job status values persisted in the job store.
const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// DiscoveryParams captures the coordinate a discovery job searches around.
type DiscoveryParams struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    int     `json:"radius"`
}

// JobCounters tracks per-job pipeline statistics.
type JobCounters struct {
	OffsetsSearched  int `json:"offsets_searched"`
	RestaurantsFound int `json:"restaurants_found"`
	RestaurantsKept  int `json:"restaurants_kept"`
}

// DiscoveryJob is the metadata persisted for each submitted discovery request.
type DiscoveryJob struct {
	ID        string          `json:"id"`
	Status    JobStatus       `json:"status"`
	Submitted time.Time       `json:"submitted_at"`
	Started   *time.Time      `json:"started_at,omitempty"`
	Finished  *time.Time      `json:"finished_at,omitempty"`
	ErrorText string          `json:"error_text,omitempty"`
	Params    DiscoveryParams `json:"parameters"`
	Counters  JobCounters     `json:"counters"`
}

// QueueItem wraps a job ready to run.
type QueueItem struct {
	JobID     string
	Params    DiscoveryParams
	Attempt   int
	Submitted int64
}

// FetchRequest captures everything needed to retrieve one page.
type FetchRequest struct {
	URL     string
	Headers map[string][]string
}

// FetchResponse is the result returned by a page fetcher tier.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
	Rendered   bool
}
