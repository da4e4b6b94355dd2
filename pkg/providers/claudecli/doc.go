// Package claudecli implements the subprocess-based provider adapter that
// drives the claude CLI binary instead of an HTTPS API.
//
// Three dispatch modes select how the subprocess is managed, mirroring the
// tradeoff between context reuse and isolation:
//
//   - warm: a per-model long-running process from warmpool.Pool, context
//     tracked so only new turns are replayed into it.
//   - pinned: a single long-lived process for whichever model is
//     currently selected, with the full conversation resent each call.
//   - ephemeral: a fresh process per request, killed after the result
//     event.
//
// All three speak the same NDJSON wire protocol on stdout; this package's
// transform.go turns that into the same CompletionResponse/StreamChunk
// shape the HTTP adapters produce.
package claudecli
