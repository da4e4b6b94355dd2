// Package gemini implements the Gemini provider adapter.
//
// It supports Google's generateContent and streamGenerateContent endpoints.
// Gemini's wire format differs from OpenAI's in three ways this adapter
// has to bridge: roles are "user"/"model" rather than "user"/"assistant",
// the system prompt is a dedicated systemInstruction field rather than a
// message in the list, and the SSE stream carries no terminal sentinel —
// it just ends when the response body closes.
package gemini
