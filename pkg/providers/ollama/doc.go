// Package ollama implements the Ollama provider adapter.
//
// Ollama's /api/chat endpoint speaks newline-delimited JSON rather than
// Server-Sent Events: streaming and non-streaming requests return the same
// message shape, and the stream's final line carries "done": true along
// with the prompt/eval token counts.
package ollama
