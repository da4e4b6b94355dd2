package analytics

import (
	"time"

	"github.com/relayhub/gateway/pkg/store"
)

// ProviderStat aggregates task volume, spend, and success rate for one
// provider over the query window.
type ProviderStat struct {
	ProviderID   string  `json:"providerId"`
	Requests     int     `json:"requests"`
	CostUSD      float64 `json:"costUsd"`
	SuccessCount int     `json:"successCount"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

func providerBreakdown(tasks []*store.Task) []ProviderStat {
	order := make([]string, 0)
	byProvider := make(map[string]*ProviderStat)
	latencySum := make(map[string]time.Duration)

	for _, t := range tasks {
		stat, ok := byProvider[t.ProviderID]
		if !ok {
			stat = &ProviderStat{ProviderID: t.ProviderID}
			byProvider[t.ProviderID] = stat
			order = append(order, t.ProviderID)
		}
		stat.Requests++
		stat.CostUSD += t.CostUSD
		latencySum[t.ProviderID] += t.Latency
		if t.CLISuccess {
			stat.SuccessCount++
		}
	}

	out := make([]ProviderStat, 0, len(order))
	for _, id := range order {
		stat := *byProvider[id]
		if stat.Requests > 0 {
			stat.AvgLatencyMs = float64(latencySum[id].Milliseconds()) / float64(stat.Requests)
		}
		out = append(out, stat)
	}
	return out
}
