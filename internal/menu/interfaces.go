package menu

import (
	"context"
	"time"
)

// Locator finds restaurants near a coordinate. Provider failures degrade to
// an empty slice; they never surface to the caller.
type Locator interface {
	Locate(ctx context.Context, lat, lon float64, radius int) []Restaurant
}

// ContentFetcher retrieves raw page markup for a URL, returning the empty
// string on any failure.
type ContentFetcher interface {
	Content(ctx context.Context, url string) string
}

// PageFetcher is one retrieval tier inside the layered content fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Extractor condenses raw markup into menu-relevant text.
type Extractor interface {
	Extract(markup string) string
}

// Synthesizer converts text into menu items via the generative provider,
// invents menus when no text exists, and classifies dietary restrictions.
// All three operations degrade internally; none returns an error.
type Synthesizer interface {
	ExtractItems(ctx context.Context, text, restaurantName string) []MenuItem
	SynthesizeMenu(ctx context.Context, restaurantName string, priceLevel int) []MenuItem
	TagItems(ctx context.Context, items []MenuItem) []MenuItem
}

// Processor fills a restaurant's menu items, always terminating with a
// populated (possibly fallback) menu.
type Processor interface {
	Process(ctx context.Context, r Restaurant) Restaurant
}

// JobStore persists discovery-job metadata.
type JobStore interface {
	CreateJob(ctx context.Context, job DiscoveryJob) error
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errText string, counters JobCounters) error
	GetJob(ctx context.Context, jobID string) (DiscoveryJob, error)
}

// CatalogStore persists the deduplicated catalog produced by a job.
type CatalogStore interface {
	SaveCatalog(ctx context.Context, jobID string, restaurants []Restaurant) error
	GetCatalog(ctx context.Context, jobID string) ([]Restaurant, error)
}

// BlobStore archives raw artifacts and returns a URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// Publisher pushes catalog-completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Queue provides enqueue/dequeue semantics for discovery jobs.
type Queue interface {
	Enqueue(ctx context.Context, item QueueItem) error
	Dequeue(ctx context.Context) (QueueItem, error)
}

// Hasher computes digests for snapshot paths.
type Hasher interface {
	Hash(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces job IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}

// Cache is a process-scoped, eviction-free key-value store. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
