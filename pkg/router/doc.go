// Package router resolves a requested model name plus a classification
// result into a concrete (provider, model) pair. Resolution follows a
// fixed precedence chain — explicit provider:model pin, Claude alias,
// direct catalog match, named tier, legacy model name, auto/unknown — and
// falls through to tier-based selection, which weighs historical success
// stats against an exploration budget before settling on the cheapest
// model in the tier.
package router
