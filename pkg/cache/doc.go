// Package cache implements the process-local response cache and dedup
// guard of spec.md's cache-and-dedup section: a 60-second response cache
// keyed by (provider, model, system prompt, messages), and a 5-second
// dedup guard keyed by the last user message text alone. Both maps are
// swept periodically for lazy eviction.
package cache
