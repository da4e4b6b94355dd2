package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/relayhub/gateway/pkg/store"
)

// DefaultWindowDays is used when a query omits ?days= or passes a
// non-positive value.
const DefaultWindowDays = 7

// Aggregator answers named analytics queries over a window of recent task
// records. It holds no state of its own beyond the store handle — every
// call recomputes its result from scratch, since the underlying data
// (task rows) is the only source of truth analytics has.
type Aggregator struct {
	store store.Store
}

// New creates an Aggregator backed by s.
func New(s store.Store) *Aggregator {
	return &Aggregator{store: s}
}

// ErrUnknownMetric is returned by Query for a metric name this package
// does not implement.
type ErrUnknownMetric struct {
	Metric string
}

func (e *ErrUnknownMetric) Error() string {
	return fmt.Sprintf("unknown metric %q", e.Metric)
}

// Query resolves metric over the last days days (clamped to
// DefaultWindowDays when days <= 0). "all" returns a composite bundle of
// every metric this package knows, the shape the dashboard renders in one
// round trip.
func (a *Aggregator) Query(ctx context.Context, metric string, days int) (interface{}, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	since := time.Now().AddDate(0, 0, -days)

	tasks, err := a.store.QueryTasks(ctx, store.TaskFilter{Since: since})
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	switch metric {
	case "all":
		return map[string]interface{}{
			"spend":      spendSummary(tasks),
			"requests":   requestsByDay(tasks, since, days),
			"providers":  providerBreakdown(tasks),
			"models":     modelBreakdown(tasks),
			"categories": categoryBreakdown(tasks),
			"cache":      cacheSummary(tasks),
		}, nil
	case "spend":
		return spendSummary(tasks), nil
	case "requests":
		return requestsByDay(tasks, since, days), nil
	case "providers":
		return providerBreakdown(tasks), nil
	case "models":
		return modelBreakdown(tasks), nil
	case "categories":
		return categoryBreakdown(tasks), nil
	case "cache":
		return cacheSummary(tasks), nil
	default:
		return nil, &ErrUnknownMetric{Metric: metric}
	}
}
