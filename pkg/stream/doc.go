// Package stream sits between a provider's raw chunk channel and the HTTP
// SSE writer in pkg/proxy. It tees every chunk to the active-request
// registry, accumulates the full response text and usage for a metadata
// promise that resolves once the stream terminates, and — for the
// subprocess provider, which emits literal <tool_call>...</tool_call> XML
// in its text deltas — detects and extracts those into structured tool
// call deltas before the text reaches the client.
package stream
