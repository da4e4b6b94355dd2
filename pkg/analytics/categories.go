package analytics

import "github.com/relayhub/gateway/pkg/store"

// CategoryStat aggregates task volume, spend, and the classifier's mean
// complexity score for one task category over the query window.
type CategoryStat struct {
	Category      string  `json:"category"`
	Requests      int     `json:"requests"`
	CostUSD       float64 `json:"costUsd"`
	AvgComplexity float64 `json:"avgComplexity"`
}

func categoryBreakdown(tasks []*store.Task) []CategoryStat {
	order := make([]string, 0)
	byCategory := make(map[string]*CategoryStat)
	complexitySum := make(map[string]int)

	for _, t := range tasks {
		stat, ok := byCategory[t.Category]
		if !ok {
			stat = &CategoryStat{Category: t.Category}
			byCategory[t.Category] = stat
			order = append(order, t.Category)
		}
		stat.Requests++
		stat.CostUSD += t.CostUSD
		complexitySum[t.Category] += t.Complexity
	}

	out := make([]CategoryStat, 0, len(order))
	for _, cat := range order {
		stat := *byCategory[cat]
		if stat.Requests > 0 {
			stat.AvgComplexity = float64(complexitySum[cat]) / float64(stat.Requests)
		}
		out = append(out, stat)
	}
	return out
}
