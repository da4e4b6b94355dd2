// Package classifier assigns a task category and a 0-100 complexity score
// to an incoming request, feeding the router's tier selection. Two modes
// are available: a pure heuristic (ordered regex category rules plus a
// weighted complexity formula) and an LLM mode that asks a cheap model to
// classify a truncated abstract of the conversation, falling back to the
// heuristic on any call or parse failure.
package classifier
