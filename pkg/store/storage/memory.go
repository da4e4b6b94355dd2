package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/relayhub/gateway/pkg/store"
)

// MemoryStorage implements store.Store using in-memory maps. It is intended
// for tests only and should not be used in production.
type MemoryStorage struct {
	mu sync.RWMutex

	requests map[string]*store.Request
	steps    map[string][]*store.Step // by request ID
	tasks    map[string]*store.Task
	taskIDs  []string // insertion order, for MostRecentTask / QueryTasks
	providers map[string]*store.ProviderConfig
	models    map[int64]*store.ModelConfig
	nextModelID int64
	budgets   map[store.BudgetPeriod]*store.BudgetConfig
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		requests:  make(map[string]*store.Request),
		steps:     make(map[string][]*store.Step),
		tasks:     make(map[string]*store.Task),
		providers: make(map[string]*store.ProviderConfig),
		models:    make(map[int64]*store.ModelConfig),
		budgets:   make(map[store.BudgetPeriod]*store.BudgetConfig),
	}
}

// InsertRequest implements store.Store.
func (s *MemoryStorage) InsertRequest(ctx context.Context, r *store.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.requests[r.ID] = &cp
	return nil
}

// UpdateRequestStatus implements store.Store.
func (s *MemoryStorage) UpdateRequestStatus(ctx context.Context, id string, status store.RequestStatus, httpStatus int, errMsg string, completedAt time.Time, latency time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return &store.ErrNotFound{Kind: "request", ID: id}
	}
	r.Status = status
	r.HTTPStatus = httpStatus
	r.Error = errMsg
	r.CompletedAt = completedAt
	r.TotalLatency = latency
	return nil
}

// GetRequest implements store.Store.
func (s *MemoryStorage) GetRequest(ctx context.Context, id string) (*store.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, &store.ErrNotFound{Kind: "request", ID: id}
	}
	cp := *r
	return &cp, nil
}

// InsertStep implements store.Store.
func (s *MemoryStorage) InsertStep(ctx context.Context, st *store.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.steps[st.RequestID] = append(s.steps[st.RequestID], &cp)
	return nil
}

// StepsForRequest implements store.Store.
func (s *MemoryStorage) StepsForRequest(ctx context.Context, requestID string) ([]*store.Step, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	steps := s.steps[requestID]
	out := make([]*store.Step, len(steps))
	for i, st := range steps {
		cp := *st
		out[i] = &cp
	}
	return out, nil
}

// InsertTask implements store.Store.
func (s *MemoryStorage) InsertTask(ctx context.Context, t *store.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tasks[t.ID] = &cp
	s.taskIDs = append(s.taskIDs, t.ID)
	return nil
}

// GetTask implements store.Store.
func (s *MemoryStorage) GetTask(ctx context.Context, id string) (*store.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, &store.ErrNotFound{Kind: "task", ID: id}
	}
	cp := *t
	return &cp, nil
}

// FindTaskByIDPrefix implements store.Store.
func (s *MemoryStorage) FindTaskByIDPrefix(ctx context.Context, prefix string) (*store.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.taskIDs) - 1; i >= 0; i-- {
		id := s.taskIDs[i]
		if strings.HasPrefix(id, prefix) {
			cp := *s.tasks[id]
			return &cp, nil
		}
	}
	return nil, &store.ErrNotFound{Kind: "task", ID: prefix}
}

// MostRecentTask implements store.Store.
func (s *MemoryStorage) MostRecentTask(ctx context.Context) (*store.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.taskIDs) == 0 {
		return nil, &store.ErrNotFound{Kind: "task", ID: "<most recent>"}
	}
	cp := *s.tasks[s.taskIDs[len(s.taskIDs)-1]]
	return &cp, nil
}

// UpdateTaskRating implements store.Store.
func (s *MemoryStorage) UpdateTaskRating(ctx context.Context, id string, rating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return &store.ErrNotFound{Kind: "task", ID: id}
	}
	t.UserRating = rating
	return nil
}

// QueryTasks implements store.Store.
func (s *MemoryStorage) QueryTasks(ctx context.Context, f store.TaskFilter) ([]*store.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*store.Task
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if !f.Since.IsZero() && t.CreatedAt.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && t.CreatedAt.After(f.Until) {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.Provider != "" && t.ProviderID != f.Provider {
			continue
		}
		if f.Model != "" && t.SelectedModelID != f.Model {
			continue
		}
		cp := *t
		matched = append(matched, &cp)
	}

	// Newest first, matching the SQLite implementation's ORDER BY created_at DESC.
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	start := f.Offset
	if start > len(matched) {
		return []*store.Task{}, nil
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

// SpendSince implements store.Store.
func (s *MemoryStorage) SpendSince(ctx context.Context, since time.Time) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, t := range s.tasks {
		if !t.CreatedAt.Before(since) {
			total += t.CostUSD
		}
	}
	return total, nil
}

// ModelStatsSince implements store.Store.
func (s *MemoryStorage) ModelStatsSince(ctx context.Context, since time.Time, category string) ([]store.ModelStat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct{ provider, model, category string }
	grouped := make(map[key][]*store.Task)
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if t.CreatedAt.Before(since) {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		k := key{t.ProviderID, t.SelectedModelID, t.Category}
		grouped[k] = append(grouped[k], t)
	}

	var stats []store.ModelStat
	for k, tasks := range grouped {
		ms := store.ModelStat{ProviderID: k.provider, ModelID: k.model, Category: k.category, SampleCount: len(tasks)}
		for _, t := range tasks {
			if t.CLISuccess && (t.UserRating == 0 || t.UserRating >= 3) {
				ms.SuccessCount++
			}
		}
		// tasks are in insertion (oldest-first) order; walk from the end for "most recent".
		for i := len(tasks) - 1; i >= 0 && len(ms.RecentOutcomes) < 3; i-- {
			t := tasks[i]
			ms.RecentOutcomes = append(ms.RecentOutcomes, t.CLISuccess && (t.UserRating == 0 || t.UserRating >= 3))
		}
		stats = append(stats, ms)
	}
	return stats, nil
}

// UpsertProvider implements store.Store.
func (s *MemoryStorage) UpsertProvider(ctx context.Context, p *store.ProviderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.providers[p.ID] = &cp
	return nil
}

// DeleteProvider implements store.Store.
func (s *MemoryStorage) DeleteProvider(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.providers, id)
	return nil
}

// ListProviders implements store.Store.
func (s *MemoryStorage) ListProviders(ctx context.Context) ([]*store.ProviderConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*store.ProviderConfig, 0, len(s.providers))
	for _, p := range s.providers {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

// UpsertModel implements store.Store.
func (s *MemoryStorage) UpsertModel(ctx context.Context, m *store.ModelConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.models {
		if existing.ProviderID == m.ProviderID && existing.ModelID == m.ModelID {
			cp := *m
			cp.ID = id
			s.models[id] = &cp
			return nil
		}
	}

	s.nextModelID++
	cp := *m
	cp.ID = s.nextModelID
	s.models[cp.ID] = &cp
	return nil
}

// DeleteModel implements store.Store.
func (s *MemoryStorage) DeleteModel(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.models, id)
	return nil
}

// ListModels implements store.Store.
func (s *MemoryStorage) ListModels(ctx context.Context) ([]*store.ModelConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*store.ModelConfig, 0, len(s.models))
	for _, m := range s.models {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProviderID != out[j].ProviderID {
			return out[i].ProviderID < out[j].ProviderID
		}
		return out[i].ModelID < out[j].ModelID
	})
	return out, nil
}

// EnabledModelsByTier implements store.Store.
func (s *MemoryStorage) EnabledModelsByTier(ctx context.Context, tier store.ModelTier) ([]*store.ModelConfig, error) {
	all, _ := s.ListModels(ctx)
	var out []*store.ModelConfig
	for _, m := range all {
		if m.Tier == tier && m.Enabled {
			out = append(out, m)
		}
	}
	return out, nil
}

// UpsertBudget implements store.Store.
func (s *MemoryStorage) UpsertBudget(ctx context.Context, b *store.BudgetConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.budgets[b.Period] = &cp
	return nil
}

// ListBudgets implements store.Store.
func (s *MemoryStorage) ListBudgets(ctx context.Context) ([]*store.BudgetConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*store.BudgetConfig, 0, len(s.budgets))
	for _, b := range s.budgets {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

// Close implements store.Store. It clears all in-memory state.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = make(map[string]*store.Request)
	s.steps = make(map[string][]*store.Step)
	s.tasks = make(map[string]*store.Task)
	s.taskIDs = nil
	s.providers = make(map[string]*store.ProviderConfig)
	s.models = make(map[int64]*store.ModelConfig)
	s.budgets = make(map[store.BudgetPeriod]*store.BudgetConfig)
	return nil
}
