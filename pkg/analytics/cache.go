package analytics

import "github.com/relayhub/gateway/pkg/store"

// CacheSummary reports how much of the query window's traffic was served
// from the response cache, and the cost that traffic would otherwise have
// incurred (estimated from the average cost of cache-missed tasks).
type CacheSummary struct {
	Hits     int     `json:"hits"`
	Misses   int     `json:"misses"`
	HitRate  float64 `json:"hitRate"`
	SavedUSD float64 `json:"savedUsd"`
}

func cacheSummary(tasks []*store.Task) CacheSummary {
	var s CacheSummary
	var missCost float64
	for _, t := range tasks {
		if t.CacheHit {
			s.Hits++
			continue
		}
		s.Misses++
		missCost += t.CostUSD
	}
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
	if s.Misses > 0 {
		s.SavedUSD = (missCost / float64(s.Misses)) * float64(s.Hits)
	}
	return s
}
