package analytics

import (
	"time"

	"github.com/relayhub/gateway/pkg/store"
)

// DayCount is the number of tasks and their combined cost on one calendar
// day of the query window.
type DayCount struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Count    int     `json:"count"`
	CostUSD  float64 `json:"costUsd"`
	CacheHit int     `json:"cacheHit"`
}

// requestsByDay buckets tasks into calendar days, oldest first, zero-filling
// every day in the window (today back through today-days+1) that had no
// tasks so the dashboard can plot a continuous series. since is the query
// cutoff used to filter tasks, not necessarily calendar-day aligned, so
// the buckets are built from "now" rather than from since directly.
func requestsByDay(tasks []*store.Task, since time.Time, days int) []DayCount {
	now := since.AddDate(0, 0, days)

	buckets := make(map[string]*DayCount, days)
	order := make([]string, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		buckets[key] = &DayCount{Date: key}
		order = append(order, key)
	}

	for _, t := range tasks {
		key := t.CreatedAt.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			// task lands just outside the zero-filled range due to clock
			// skew between "since" and the task's own timestamp; still
			// worth counting under its own day.
			b = &DayCount{Date: key}
			buckets[key] = b
			order = append(order, key)
		}
		b.Count++
		b.CostUSD += t.CostUSD
		if t.CacheHit {
			b.CacheHit++
		}
	}

	out := make([]DayCount, 0, len(order))
	for _, key := range order {
		out = append(out, *buckets[key])
	}
	return out
}
