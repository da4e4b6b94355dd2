package budget

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/relayhub/gateway/pkg/store"
)

var periodOrder = []store.BudgetPeriod{store.PeriodDaily, store.PeriodWeekly, store.PeriodMonthly}

// Guard checks request cost against the enabled budget rows before dispatch.
type Guard struct {
	store store.Store
}

// New creates a Guard backed by s.
func New(s store.Store) *Guard {
	return &Guard{store: s}
}

// Check evaluates every enabled budget row against spend since its period
// start and returns the most restrictive decision. Any internal failure
// (loading budgets, summing spend) falls open: the request is allowed with
// unlimited remaining, since visibility into spend matters less than
// keeping the gateway available.
func (g *Guard) Check(ctx context.Context) Decision {
	budgets, err := g.store.ListBudgets(ctx)
	if err != nil {
		return Decision{Allowed: true, Remaining: math.Inf(1)}
	}

	byPeriod := make(map[store.BudgetPeriod]*store.BudgetConfig, len(budgets))
	for _, b := range budgets {
		if b.Enabled {
			byPeriod[b.Period] = b
		}
	}
	if len(byPeriod) == 0 {
		return Decision{Allowed: true, Remaining: math.Inf(1)}
	}

	now := time.Now()
	minRemaining := math.Inf(1)
	minRemainingPeriod := store.BudgetPeriod("")
	anyDowngrade := false
	downgradePeriod := store.BudgetPeriod("")

	for _, period := range periodOrder {
		b, ok := byPeriod[period]
		if !ok {
			continue
		}
		spend, err := g.store.SpendSince(ctx, periodStart(period, now))
		if err != nil {
			return Decision{Allowed: true, Remaining: math.Inf(1)}
		}
		if b.LimitUSD <= 0 {
			continue
		}
		percent := spend / b.LimitUSD

		if percent >= DenyThreshold {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("%s budget exceeded: $%.2f of $%.2f spent", period, spend, b.LimitUSD),
				Period:  period,
			}
		}
		if percent >= DowngradeThreshold && !anyDowngrade {
			anyDowngrade = true
			downgradePeriod = period
		}

		remaining := b.LimitUSD - spend
		if remaining < minRemaining {
			minRemaining = remaining
			minRemainingPeriod = period
		}
	}

	period := minRemainingPeriod
	if anyDowngrade {
		period = downgradePeriod
	}
	return Decision{Allowed: true, Downgrade: anyDowngrade, Remaining: minRemaining, Period: period}
}
