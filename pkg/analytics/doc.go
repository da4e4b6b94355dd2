// Package analytics answers GET /api/stats by aggregating historical task
// records from the store. Unlike pkg/telemetry/metrics, which tracks live
// Prometheus counters/gauges for the current process, this package
// recomputes each metric from persisted rows on every query — there is no
// running total to scrape, only history to summarize over a requested
// window.
//
// Metrics are split one-per-file the same way pkg/telemetry/metrics splits
// request/provider/cost/cache concerns, and dispatched by name through
// Aggregator.Query. "all" composes every metric into the bundle the
// dashboard renders in one round trip.
package analytics
