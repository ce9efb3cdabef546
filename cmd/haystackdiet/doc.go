// Package main hosts the menu discovery service entrypoint.
//
// Architecture overview:
//   - HTTP API: internal/api.Server exposes health, metrics, discovery-job
//     and game endpoints. Requests are validated, normalized into
//     menu.DiscoveryParams, and persisted via the JobStore before being
//     enqueued for work.
//   - Dispatcher & queue: jobs flow through a bounded in-memory queue sized
//     by config.Discovery.QueueDepth and are fanned out to a fixed worker
//     pool sized by config.Discovery.Workers. Context cancellation stops
//     workers cleanly on shutdown.
//   - Discovery pipeline: each worker runs the geo-fanout coordinator, which
//     searches a constellation of coordinate offsets through the Places
//     locator, processes every restaurant through the chain/scrape/synthesize
//     tier table, and merges batches with (name, address) deduplication.
//   - Retrieval: the layered fetcher escalates plain HTTP, Colly and
//     optionally headless Chrome per menu URL, stripping query strings and
//     sending browser-profile headers on every attempt.
//   - Persistence & events: catalogs go to the configured CatalogStore
//     (memory/local/Postgres); fetched markup is optionally archived to a
//     BlobStore (memory/local/GCS); a completion event is published per
//     successful job (in-memory publisher by default, Pub/Sub when enabled).
//   - Configuration & plumbing: Viper populates config from env/files under
//     the HAYSTACK_ prefix; zap provides structured logging; Prometheus
//     metrics are exported via /metrics.
//
// Operational notes:
//   - Concurrency model: bounded queue + fixed worker pool; offset searches
//     and per-restaurant processing run on bounded executors inside the
//     coordinator, and headless fetches have their own semaphore.
//   - Shutdown is coordinated via context cancellation propagated from main
//     through the dispatcher to workers; in-flight jobs are bounded by the
//     configured per-job timeout.
//
// Run locally: go run ./cmd/haystackdiet -config config.yaml (or rely solely
// on HAYSTACK_* env overrides).
package main
