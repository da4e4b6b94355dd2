// Package warmpool manages long-running claude CLI subprocesses.
//
// Three dispatch shapes are provided:
//
//   - Pool: one warm process per enabled model, context-tracked via a log
//     of message digests so only the delta since the last request is
//     replayed into the process before the live turn is sent.
//   - Pinned: a single process tied to whatever model is currently
//     selected, torn down and respawned on model change.
//   - Ephemeral dispatch has no dedicated type here; the claudecli provider
//     spawns and kills a process directly for that mode since there is no
//     state to keep between calls.
//
// All dispatch goes through Process.Send, which enforces one in-flight
// request per process and self-heals on the next acquire if the process
// died mid-request.
package warmpool
