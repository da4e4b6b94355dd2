package budget

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/relayhub/gateway/pkg/store"
	"github.com/relayhub/gateway/pkg/store/storage"
)

func insertTask(t *testing.T, s store.Store, cost float64, when time.Time) {
	t.Helper()
	if err := s.InsertTask(context.Background(), &store.Task{
		ID:        time.Now().Format(time.RFC3339Nano) + "-" + t.Name(),
		CreatedAt: when,
		CostUSD:   cost,
	}); err != nil {
		t.Fatalf("InsertTask: %v", err)
	}
}

func TestCheck_NoBudgetsEnabled_AllowsWithUnlimitedRemaining(t *testing.T) {
	s := storage.NewMemoryStorage()
	g := New(s)

	d := g.Check(context.Background())
	if !d.Allowed {
		t.Fatal("expected allowed with no budgets")
	}
	if !math.IsInf(d.Remaining, 1) {
		t.Errorf("expected unlimited remaining, got %v", d.Remaining)
	}
}

func TestCheck_BelowEightyPercent_AllowsWithRemaining(t *testing.T) {
	s := storage.NewMemoryStorage()
	ctx := context.Background()
	if err := s.UpsertBudget(ctx, &store.BudgetConfig{Period: store.PeriodDaily, LimitUSD: 100, Enabled: true}); err != nil {
		t.Fatalf("UpsertBudget: %v", err)
	}
	insertTask(t, s, 10, time.Now())

	g := New(s)
	d := g.Check(ctx)
	if !d.Allowed || d.Downgrade {
		t.Fatalf("expected plain allow, got %+v", d)
	}
	if d.Remaining != 90 {
		t.Errorf("expected remaining 90, got %v", d.Remaining)
	}
}

func TestCheck_EightyPercentOrAbove_AllowsWithDowngrade(t *testing.T) {
	s := storage.NewMemoryStorage()
	ctx := context.Background()
	if err := s.UpsertBudget(ctx, &store.BudgetConfig{Period: store.PeriodDaily, LimitUSD: 100, Enabled: true}); err != nil {
		t.Fatalf("UpsertBudget: %v", err)
	}
	insertTask(t, s, 85, time.Now())

	g := New(s)
	d := g.Check(ctx)
	if !d.Allowed {
		t.Fatal("expected allow at 85 percent")
	}
	if !d.Downgrade {
		t.Error("expected downgrade to be requested")
	}
}

func TestCheck_HundredPercentOrAbove_Denies(t *testing.T) {
	s := storage.NewMemoryStorage()
	ctx := context.Background()
	if err := s.UpsertBudget(ctx, &store.BudgetConfig{Period: store.PeriodDaily, LimitUSD: 50, Enabled: true}); err != nil {
		t.Fatalf("UpsertBudget: %v", err)
	}
	insertTask(t, s, 50, time.Now())

	g := New(s)
	d := g.Check(ctx)
	if d.Allowed {
		t.Fatal("expected denial at 100 percent spend")
	}
	if d.Reason == "" {
		t.Error("expected a reason for the denial")
	}
}

func TestCheck_DisabledBudgetIsIgnored(t *testing.T) {
	s := storage.NewMemoryStorage()
	ctx := context.Background()
	if err := s.UpsertBudget(ctx, &store.BudgetConfig{Period: store.PeriodDaily, LimitUSD: 1, Enabled: false}); err != nil {
		t.Fatalf("UpsertBudget: %v", err)
	}
	insertTask(t, s, 1000, time.Now())

	g := New(s)
	d := g.Check(ctx)
	if !d.Allowed {
		t.Fatal("expected disabled budget to be ignored")
	}
	if !math.IsInf(d.Remaining, 1) {
		t.Errorf("expected unlimited remaining, got %v", d.Remaining)
	}
}

func TestCheck_SpendOutsidePeriodIsExcluded(t *testing.T) {
	s := storage.NewMemoryStorage()
	ctx := context.Background()
	if err := s.UpsertBudget(ctx, &store.BudgetConfig{Period: store.PeriodDaily, LimitUSD: 10, Enabled: true}); err != nil {
		t.Fatalf("UpsertBudget: %v", err)
	}
	insertTask(t, s, 9, time.Now().AddDate(0, 0, -2))

	g := New(s)
	d := g.Check(ctx)
	if !d.Allowed || d.Downgrade {
		t.Fatalf("expected yesterday's spend to not count today, got %+v", d)
	}
	if d.Remaining != 10 {
		t.Errorf("expected full remaining 10, got %v", d.Remaining)
	}
}

func TestCheck_MostRestrictivePeriodWins(t *testing.T) {
	s := storage.NewMemoryStorage()
	ctx := context.Background()
	if err := s.UpsertBudget(ctx, &store.BudgetConfig{Period: store.PeriodDaily, LimitUSD: 10, Enabled: true}); err != nil {
		t.Fatalf("UpsertBudget daily: %v", err)
	}
	if err := s.UpsertBudget(ctx, &store.BudgetConfig{Period: store.PeriodMonthly, LimitUSD: 1000, Enabled: true}); err != nil {
		t.Fatalf("UpsertBudget monthly: %v", err)
	}
	insertTask(t, s, 10, time.Now())

	g := New(s)
	d := g.Check(ctx)
	if d.Allowed {
		t.Fatal("expected the exhausted daily budget to deny even though monthly has room")
	}
	if d.Period != store.PeriodDaily {
		t.Errorf("expected the daily period to be named, got %v", d.Period)
	}
}
