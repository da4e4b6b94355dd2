package activity

import (
	"sync"
	"time"

	"github.com/relayhub/gateway/pkg/providers"
)

// staleAfter is how long an active entry can go without an update before a
// sweep drops it as orphaned (spec §4.11).
const staleAfter = 2 * time.Minute

// feedCapacity bounds the completed-request feed so it doesn't grow without
// bound across a long-lived process.
const feedCapacity = 100

type active struct {
	requestID    string
	provider     string
	model        string
	category     string
	startedAt    time.Time
	lastUpdate   time.Time
	tokensIn     int
	text         []byte
}

// Registry is the concurrent-safe active-request/feed store. It implements
// stream.ActivityRecorder so the stream transformer can tee chunks into it
// directly.
type Registry struct {
	mu     sync.Mutex
	active map[string]*active
	feed   []FeedEntry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{active: make(map[string]*active)}
}

// Register records the start of a dispatched request.
func (r *Registry) Register(requestID, provider, model, category string, tokensIn int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.active[requestID] = &active{
		requestID:  requestID,
		provider:   provider,
		model:      model,
		category:   category,
		startedAt:  now,
		lastUpdate: now,
		tokensIn:   tokensIn,
	}
}

// OnChunk implements stream.ActivityRecorder: it appends the chunk's delta
// text to the request's running buffer, used for the rough tokens-out
// estimate while a stream is in flight.
func (r *Registry) OnChunk(requestID string, chunk *providers.StreamChunk) {
	if chunk == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.active[requestID]
	if !ok {
		return
	}
	a.text = append(a.text, chunk.Delta...)
	a.lastUpdate = time.Now()
}

// Complete moves a request from active into the completed feed.
func (r *Registry) Complete(requestID string, entry FeedEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, requestID)

	r.feed = append(r.feed, entry)
	if len(r.feed) > feedCapacity {
		r.feed = r.feed[len(r.feed)-feedCapacity:]
	}
}

// GetAll returns a snapshot of active and recently completed requests,
// after sweeping active entries that have gone silent for longer than
// staleAfter.
func (r *Registry) GetAll() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-staleAfter)
	for id, a := range r.active {
		if a.lastUpdate.Before(cutoff) {
			delete(r.active, id)
		}
	}

	out := Snapshot{
		Active: make([]ActiveEntry, 0, len(r.active)),
		Feed:   make([]FeedEntry, len(r.feed)),
	}
	for _, a := range r.active {
		out.Active = append(out.Active, ActiveEntry{
			RequestID:    a.requestID,
			Provider:     a.provider,
			Model:        a.model,
			Category:     a.category,
			StartedAt:    a.startedAt,
			TokensIn:     a.tokensIn,
			TokensOutEst: len(a.text) / 4,
		})
	}
	copy(out.Feed, r.feed)
	return out
}
