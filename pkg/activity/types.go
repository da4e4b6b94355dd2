package activity

import "time"

// ActiveEntry describes a request currently dispatched to a provider.
type ActiveEntry struct {
	RequestID    string    `json:"requestId"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Category     string    `json:"category"`
	StartedAt    time.Time `json:"startedAt"`
	TokensIn     int       `json:"tokensIn"`
	TokensOutEst int       `json:"tokensOutEst"`
}

// FeedEntry describes a request that has completed.
type FeedEntry struct {
	RequestID    string    `json:"requestId"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	Category     string    `json:"category"`
	CompletedAt  time.Time `json:"completedAt"`
	TokensIn     int       `json:"tokensIn"`
	TokensOut    int       `json:"tokensOut"`
	CostUSD      float64   `json:"costUsd"`
	Success      bool      `json:"success"`
	FinishReason string    `json:"finishReason"`
}

// Snapshot is the payload a GetAll call and the SSE endpoint both emit.
type Snapshot struct {
	Active []ActiveEntry `json:"active"`
	Feed   []FeedEntry   `json:"feed"`
}
