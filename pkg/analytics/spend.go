package analytics

import "github.com/relayhub/gateway/pkg/store"

// SpendSummary totals cost and token usage over the query window.
type SpendSummary struct {
	TotalCostUSD float64 `json:"totalCostUsd"`
	TotalTasks   int     `json:"totalTasks"`
	TokensIn     int     `json:"tokensIn"`
	TokensOut    int     `json:"tokensOut"`
}

func spendSummary(tasks []*store.Task) SpendSummary {
	var s SpendSummary
	for _, t := range tasks {
		s.TotalCostUSD += t.CostUSD
		s.TokensIn += t.TokensIn
		s.TokensOut += t.TokensOut
		s.TotalTasks++
	}
	return s
}
