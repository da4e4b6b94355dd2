package pipeline

import (
	"github.com/relayhub/gateway/pkg/activity"
	"github.com/relayhub/gateway/pkg/budget"
	"github.com/relayhub/gateway/pkg/cache"
	"github.com/relayhub/gateway/pkg/classifier"
	"github.com/relayhub/gateway/pkg/compressor"
	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/router"
	"github.com/relayhub/gateway/pkg/store"
	"github.com/relayhub/gateway/pkg/stream"
)

// ProviderRegistry resolves a provider id to a live adapter instance. The
// pipeline never constructs providers itself; it only looks them up.
type ProviderRegistry interface {
	Get(providerID string) (providers.Provider, bool)
}

// Pipeline wires every subsystem needed to serve one chat-completion
// request. All fields are required except Activity, which may be nil in
// tests that don't care about the live-activity feed.
type Pipeline struct {
	Store      store.Store
	Classifier classifier.Classifier
	Router     *router.Router
	Cache      *cache.Cache
	Budget     *budget.Guard
	Providers  ProviderRegistry
	Activity   *activity.Registry
	Estimator  stream.CostEstimator
}

// Request is the pipeline's provider-agnostic view of an inbound call,
// already decoded from the wire format by the HTTP layer.
type Request struct {
	RequestID      string
	ClientID       string // user agent or declared client name, for the agentic-upgrade check
	RequestedModel string
	Messages       []providers.Message
	Stream         bool
	Tools          []providers.Tool
	ToolChoice     interface{}
	Temperature    float64
	MaxTokens      int
	Stop           []string
}

// Outcome is what the HTTP layer needs to write a response. Exactly one of
// Response, StreamChunks, or Synthetic is set on success.
type Outcome struct {
	// Synthetic holds a pipeline-generated reply (feedback confirmation)
	// that never reached a provider.
	Synthetic string

	// Response is the full result for a non-streaming dispatch.
	Response *providers.CompletionResponse

	// StreamChunks is the canonical chunk channel for a streaming dispatch;
	// Metadata resolves once the stream terminates.
	StreamChunks <-chan *providers.StreamChunk
	Metadata     *stream.MetadataPromise

	// Headers are the extra response headers spec §4.1/§6 calls for.
	Headers map[string]string

	// CacheHit reports whether Response was served from cache.
	CacheHit bool
}

// Error is returned for every rejected or failed request; Status is the
// HTTP status code the handler should use.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func errStatus(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}
