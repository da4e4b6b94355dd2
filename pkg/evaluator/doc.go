// Package evaluator scores a completed response and decides whether the
// router should treat it as a success when building historical stats.
package evaluator
