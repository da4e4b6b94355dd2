package stream

import "github.com/relayhub/gateway/pkg/providers"

// Metadata carries the same fields complete() returns, assembled from the
// accumulated stream once it terminates.
type Metadata struct {
	Content      string
	FinishReason string
	Usage        providers.TokenUsage
	ToolCalls    []providers.ToolCall
	CostUSD      float64
}

// MetadataPromise resolves exactly once, after the stream's terminal chunk
// has been observed (or the channel closed without one).
type MetadataPromise struct {
	ch     chan Metadata
	result *Metadata
}

func newMetadataPromise() *MetadataPromise {
	return &MetadataPromise{ch: make(chan Metadata, 1)}
}

func (p *MetadataPromise) resolve(m Metadata) {
	p.ch <- m
	close(p.ch)
}

// Wait blocks until the metadata is available or ctx is done. Safe to call
// more than once; the result is cached after the first resolution.
func (p *MetadataPromise) Wait(done <-chan struct{}) (Metadata, bool) {
	if p.result != nil {
		return *p.result, true
	}
	select {
	case m, ok := <-p.ch:
		if !ok {
			return Metadata{}, false
		}
		p.result = &m
		return m, true
	case <-done:
		return Metadata{}, false
	}
}

// CostEstimator computes the USD cost of a request from the model catalog.
// Implemented by the router/catalog layer; kept as a narrow interface here
// so this package doesn't import the catalog.
type CostEstimator interface {
	EstimateCost(model string, promptTokens, completionTokens int) float64
}

// ActivityRecorder receives a tee of every chunk as it is produced, powering
// the live-activity registry (pkg/activity). Implementations must not block.
type ActivityRecorder interface {
	OnChunk(requestID string, chunk *providers.StreamChunk)
}

// noopRecorder is used when the caller has no activity registry wired up
// (e.g. in tests).
type noopRecorder struct{}

func (noopRecorder) OnChunk(string, *providers.StreamChunk) {}
