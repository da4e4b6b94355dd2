// Package pipeline is the single per-request orchestrator: parse, feedback
// short-circuit, dedup, classify and route, agentic-client upgrade, budget
// check, cache check, compress, provider dispatch, evaluate, and persist.
package pipeline
