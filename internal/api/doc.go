// Package api hosts the HTTP server, middleware, and REST handlers for
// operator access. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - POST /v1/discoveries for discovery-job submission, with status,
//     result and cancel subroutes per job.
//   - /v1/games/... for the restaurant game simulation when enabled.
package api
