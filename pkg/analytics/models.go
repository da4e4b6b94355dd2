package analytics

import "github.com/relayhub/gateway/pkg/store"

// ModelStat aggregates task volume and spend for one provider/model pair
// over the query window. Unlike store.ModelStat (which the router reads
// for its confidence gate and only tracks success/failure), this includes
// the cost breakdown the dashboard needs.
type ModelStat struct {
	ProviderID string  `json:"providerId"`
	ModelID    string  `json:"modelId"`
	Requests   int     `json:"requests"`
	CostUSD    float64 `json:"costUsd"`
	TokensIn   int     `json:"tokensIn"`
	TokensOut  int     `json:"tokensOut"`
}

func modelBreakdown(tasks []*store.Task) []ModelStat {
	type key struct{ provider, model string }
	order := make([]key, 0)
	byModel := make(map[key]*ModelStat)

	for _, t := range tasks {
		k := key{t.ProviderID, t.SelectedModelID}
		stat, ok := byModel[k]
		if !ok {
			stat = &ModelStat{ProviderID: t.ProviderID, ModelID: t.SelectedModelID}
			byModel[k] = stat
			order = append(order, k)
		}
		stat.Requests++
		stat.CostUSD += t.CostUSD
		stat.TokensIn += t.TokensIn
		stat.TokensOut += t.TokensOut
	}

	out := make([]ModelStat, 0, len(order))
	for _, k := range order {
		out = append(out, *byModel[k])
	}
	return out
}
