package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/relayhub/gateway/pkg/store"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/relayhub.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements store.Store using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "store.sqlite")

	db, err := sql.Open(sqlDriverName, config.Path)
	if err != nil {
		return nil, store.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		_, err := s.db.Exec("PRAGMA journal_mode=WAL;")
		if err != nil {
			return store.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs))
	if err != nil {
		return store.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	_, err = s.db.Exec(Schema)
	if err != nil {
		return store.NewStorageError("sqlite", "create_schema", err)
	}
	s.logger.Debug("database schema created")

	_, err = s.db.Exec(InsertSchemaVersion, SchemaVersion)
	if err != nil {
		return store.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err = s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return store.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return store.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// InsertRequest implements store.Store.
func (s *SQLiteStorage) InsertRequest(ctx context.Context, r *store.Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO requests (
			id, received_at, client_id, requested_model, message_count, tool_count,
			streaming, prompt_preview, status, completed_at, total_latency_ms, http_status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ReceivedAt, r.ClientID, r.RequestedModel, r.MessageCount, r.ToolCount,
		r.Streaming, r.PromptPreview, r.Status, nullTime(r.CompletedAt), r.TotalLatency.Milliseconds(), r.HTTPStatus, r.Error,
	)
	if err != nil {
		return store.NewStorageError("sqlite", "insert_request", err)
	}
	return nil
}

// UpdateRequestStatus implements store.Store.
func (s *SQLiteStorage) UpdateRequestStatus(ctx context.Context, id string, status store.RequestStatus, httpStatus int, errMsg string, completedAt time.Time, latency time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE requests SET status = ?, http_status = ?, error = ?, completed_at = ?, total_latency_ms = ?
		WHERE id = ?`,
		status, httpStatus, errMsg, nullTime(completedAt), latency.Milliseconds(), id,
	)
	if err != nil {
		return store.NewStorageError("sqlite", "update_request_status", err)
	}
	return nil
}

// GetRequest implements store.Store.
func (s *SQLiteStorage) GetRequest(ctx context.Context, id string) (*store.Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, received_at, client_id, requested_model, message_count, tool_count,
		       streaming, prompt_preview, status, completed_at, total_latency_ms, http_status, error
		FROM requests WHERE id = ?`, id)

	r := &store.Request{}
	var completedAt sql.NullTime
	var latencyMs int64
	err := row.Scan(
		&r.ID, &r.ReceivedAt, &r.ClientID, &r.RequestedModel, &r.MessageCount, &r.ToolCount,
		&r.Streaming, &r.PromptPreview, &r.Status, &completedAt, &latencyMs, &r.HTTPStatus, &r.Error,
	)
	if err == sql.ErrNoRows {
		return nil, &store.ErrNotFound{Kind: "request", ID: id}
	}
	if err != nil {
		return nil, store.NewStorageError("sqlite", "get_request", err)
	}
	if completedAt.Valid {
		r.CompletedAt = completedAt.Time
	}
	r.TotalLatency = time.Duration(latencyMs) * time.Millisecond
	return r, nil
}

// InsertStep implements store.Store.
func (s *SQLiteStorage) InsertStep(ctx context.Context, st *store.Step) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO steps (id, request_id, created_at, name, status, duration_ms, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.RequestID, st.CreatedAt, st.Name, st.Status, st.Duration.Milliseconds(), st.Detail,
	)
	if err != nil {
		return store.NewStorageError("sqlite", "insert_step", err)
	}
	return nil
}

// StepsForRequest implements store.Store.
func (s *SQLiteStorage) StepsForRequest(ctx context.Context, requestID string) ([]*store.Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, created_at, name, status, duration_ms, detail
		FROM steps WHERE request_id = ? ORDER BY created_at ASC`, requestID)
	if err != nil {
		return nil, store.NewStorageError("sqlite", "steps_for_request", err)
	}
	defer rows.Close()

	steps := []*store.Step{}
	for rows.Next() {
		st := &store.Step{}
		var durationMs int64
		if err := rows.Scan(&st.ID, &st.RequestID, &st.CreatedAt, &st.Name, &st.Status, &durationMs, &st.Detail); err != nil {
			return nil, store.NewStorageError("sqlite", "scan_step", err)
		}
		st.Duration = time.Duration(durationMs) * time.Millisecond
		steps = append(steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStorageError("sqlite", "steps_for_request", err)
	}
	return steps, nil
}

// InsertTask implements store.Store.
func (s *SQLiteStorage) InsertTask(ctx context.Context, t *store.Task) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (
			id, request_id, created_at, category, complexity, prompt_summary, message_count,
			requested_model, provider_id, selected_model_id, router_reason,
			tokens_in, tokens_out, cost_usd, latency_ms, streaming,
			tokens_before_compr, tokens_after_compr, cache_hit, remaining_budget,
			dispatch_mode, cli_success, heuristic_score, user_rating, error, full_prompt, full_response
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.RequestID, t.CreatedAt, t.Category, t.Complexity, t.PromptSummary, t.MessageCount,
		t.RequestedModel, t.ProviderID, t.SelectedModelID, t.RouterReason,
		t.TokensIn, t.TokensOut, t.CostUSD, t.Latency.Milliseconds(), t.Streaming,
		t.TokensBeforeCompr, t.TokensAfterCompr, t.CacheHit, t.RemainingBudget,
		t.DispatchMode, t.CLISuccess, t.HeuristicScore, t.UserRating, t.Error, t.FullPrompt, t.FullResponse,
	)
	if err != nil {
		return store.NewStorageError("sqlite", "insert_task", err)
	}
	return nil
}

const taskColumns = `id, request_id, created_at, category, complexity, prompt_summary, message_count,
	requested_model, provider_id, selected_model_id, router_reason,
	tokens_in, tokens_out, cost_usd, latency_ms, streaming,
	tokens_before_compr, tokens_after_compr, cache_hit, remaining_budget,
	dispatch_mode, cli_success, heuristic_score, user_rating, error, full_prompt, full_response`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*store.Task, error) {
	t := &store.Task{}
	var latencyMs int64
	err := row.Scan(
		&t.ID, &t.RequestID, &t.CreatedAt, &t.Category, &t.Complexity, &t.PromptSummary, &t.MessageCount,
		&t.RequestedModel, &t.ProviderID, &t.SelectedModelID, &t.RouterReason,
		&t.TokensIn, &t.TokensOut, &t.CostUSD, &latencyMs, &t.Streaming,
		&t.TokensBeforeCompr, &t.TokensAfterCompr, &t.CacheHit, &t.RemainingBudget,
		&t.DispatchMode, &t.CLISuccess, &t.HeuristicScore, &t.UserRating, &t.Error, &t.FullPrompt, &t.FullResponse,
	)
	if err != nil {
		return nil, err
	}
	t.Latency = time.Duration(latencyMs) * time.Millisecond
	return t, nil
}

// GetTask implements store.Store.
func (s *SQLiteStorage) GetTask(ctx context.Context, id string) (*store.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, &store.ErrNotFound{Kind: "task", ID: id}
	}
	if err != nil {
		return nil, store.NewStorageError("sqlite", "get_task", err)
	}
	return t, nil
}

// FindTaskByIDPrefix implements store.Store.
func (s *SQLiteStorage) FindTaskByIDPrefix(ctx context.Context, prefix string) (*store.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id LIKE ? ORDER BY created_at DESC LIMIT 1", prefix+"%")
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, &store.ErrNotFound{Kind: "task", ID: prefix}
	}
	if err != nil {
		return nil, store.NewStorageError("sqlite", "find_task_by_id_prefix", err)
	}
	return t, nil
}

// MostRecentTask implements store.Store.
func (s *SQLiteStorage) MostRecentTask(ctx context.Context) (*store.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY created_at DESC LIMIT 1")
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, &store.ErrNotFound{Kind: "task", ID: "<most recent>"}
	}
	if err != nil {
		return nil, store.NewStorageError("sqlite", "most_recent_task", err)
	}
	return t, nil
}

// UpdateTaskRating implements store.Store.
func (s *SQLiteStorage) UpdateTaskRating(ctx context.Context, id string, rating int) error {
	res, err := s.db.ExecContext(ctx, "UPDATE tasks SET user_rating = ? WHERE id = ?", rating, id)
	if err != nil {
		return store.NewStorageError("sqlite", "update_task_rating", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return &store.ErrNotFound{Kind: "task", ID: id}
	}
	return nil
}

// QueryTasks implements store.Store.
func (s *SQLiteStorage) QueryTasks(ctx context.Context, f store.TaskFilter) ([]*store.Task, error) {
	var conditions []string
	var args []interface{}

	if !f.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, f.Since)
	}
	if !f.Until.IsZero() {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, f.Until)
	}
	if f.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, f.Category)
	}
	if f.Provider != "" {
		conditions = append(conditions, "provider_id = ?")
		args = append(args, f.Provider)
	}
	if f.Model != "" {
		conditions = append(conditions, "selected_model_id = ?")
		args = append(args, f.Model)
	}

	q := "SELECT " + taskColumns + " FROM tasks"
	if len(conditions) > 0 {
		q += " WHERE " + strings.Join(conditions, " AND ")
	}
	q += " ORDER BY created_at DESC"

	limit := 100
	if f.Limit > 0 {
		limit = f.Limit
	}
	q += fmt.Sprintf(" LIMIT %d", limit)
	if f.Offset > 0 {
		q += fmt.Sprintf(" OFFSET %d", f.Offset)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, store.NewStorageError("sqlite", "query_tasks", err)
	}
	defer rows.Close()

	tasks := []*store.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStorageError("sqlite", "scan_task", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStorageError("sqlite", "query_tasks", err)
	}
	return tasks, nil
}

// SpendSince implements store.Store.
func (s *SQLiteStorage) SpendSince(ctx context.Context, since time.Time) (float64, error) {
	var total sql.NullFloat64
	err := s.db.QueryRowContext(ctx, "SELECT SUM(cost_usd) FROM tasks WHERE created_at >= ?", since).Scan(&total)
	if err != nil {
		return 0, store.NewStorageError("sqlite", "spend_since", err)
	}
	return total.Float64, nil
}

// ModelStatsSince implements store.Store.
func (s *SQLiteStorage) ModelStatsSince(ctx context.Context, since time.Time, category string) ([]store.ModelStat, error) {
	q := `SELECT provider_id, selected_model_id, category,
	             COUNT(*) AS sample_count,
	             SUM(CASE WHEN cli_success = 1 AND (user_rating = 0 OR user_rating >= 3) THEN 1 ELSE 0 END) AS success_count
	      FROM tasks WHERE created_at >= ?`
	args := []interface{}{since}
	if category != "" {
		q += " AND category = ?"
		args = append(args, category)
	}
	q += " GROUP BY provider_id, selected_model_id, category"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, store.NewStorageError("sqlite", "model_stats_since", err)
	}
	defer rows.Close()

	var stats []store.ModelStat
	for rows.Next() {
		var ms store.ModelStat
		if err := rows.Scan(&ms.ProviderID, &ms.ModelID, &ms.Category, &ms.SampleCount, &ms.SuccessCount); err != nil {
			return nil, store.NewStorageError("sqlite", "scan_model_stat", err)
		}
		stats = append(stats, ms)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStorageError("sqlite", "model_stats_since", err)
	}

	// SQLite has no convenient top-N-per-group aggregate, so fetch the
	// 3 most recent outcomes per (provider, model, category) separately.
	for i := range stats {
		recentRows, err := s.db.QueryContext(ctx, `
			SELECT cli_success, user_rating FROM tasks
			WHERE provider_id = ? AND selected_model_id = ? AND category = ? AND created_at >= ?
			ORDER BY created_at DESC LIMIT 3`,
			stats[i].ProviderID, stats[i].ModelID, stats[i].Category, since)
		if err != nil {
			return nil, store.NewStorageError("sqlite", "model_stats_recent", err)
		}
		for recentRows.Next() {
			var cliSuccess bool
			var userRating int
			if err := recentRows.Scan(&cliSuccess, &userRating); err != nil {
				recentRows.Close()
				return nil, store.NewStorageError("sqlite", "scan_recent_outcome", err)
			}
			ok := cliSuccess && (userRating == 0 || userRating >= 3)
			stats[i].RecentOutcomes = append(stats[i].RecentOutcomes, ok)
		}
		recentRows.Close()
	}

	return stats, nil
}

// UpsertProvider implements store.Store.
func (s *SQLiteStorage) UpsertProvider(ctx context.Context, p *store.ProviderConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO providers (id, name, enabled, priority, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, enabled = excluded.enabled, priority = excluded.priority,
			config = excluded.config, updated_at = excluded.updated_at`,
		p.ID, p.Name, p.Enabled, p.Priority, p.Config, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return store.NewStorageError("sqlite", "upsert_provider", err)
	}
	return nil
}

// DeleteProvider implements store.Store.
func (s *SQLiteStorage) DeleteProvider(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM providers WHERE id = ?", id)
	if err != nil {
		return store.NewStorageError("sqlite", "delete_provider", err)
	}
	return nil
}

// ListProviders implements store.Store.
func (s *SQLiteStorage) ListProviders(ctx context.Context) ([]*store.ProviderConfig, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, enabled, priority, config, created_at, updated_at FROM providers ORDER BY priority ASC")
	if err != nil {
		return nil, store.NewStorageError("sqlite", "list_providers", err)
	}
	defer rows.Close()

	providers := []*store.ProviderConfig{}
	for rows.Next() {
		p := &store.ProviderConfig{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Enabled, &p.Priority, &p.Config, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, store.NewStorageError("sqlite", "scan_provider", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStorageError("sqlite", "list_providers", err)
	}
	return providers, nil
}

// UpsertModel implements store.Store.
func (s *SQLiteStorage) UpsertModel(ctx context.Context, m *store.ModelConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO models (
			id, provider_id, model_id, display_name, tier, input_cost_per_m, output_cost_per_m,
			max_context_tokens, supports_stream, supports_tools, supports_vision, enabled
		) VALUES (nullif(?, 0), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider_id, model_id) DO UPDATE SET
			display_name = excluded.display_name, tier = excluded.tier,
			input_cost_per_m = excluded.input_cost_per_m, output_cost_per_m = excluded.output_cost_per_m,
			max_context_tokens = excluded.max_context_tokens, supports_stream = excluded.supports_stream,
			supports_tools = excluded.supports_tools, supports_vision = excluded.supports_vision,
			enabled = excluded.enabled`,
		m.ID, m.ProviderID, m.ModelID, m.DisplayName, m.Tier, m.InputCostPerM, m.OutputCostPerM,
		m.MaxContextTokens, m.SupportsStream, m.SupportsTools, m.SupportsVision, m.Enabled,
	)
	if err != nil {
		return store.NewStorageError("sqlite", "upsert_model", err)
	}
	return nil
}

// DeleteModel implements store.Store.
func (s *SQLiteStorage) DeleteModel(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM models WHERE id = ?", id)
	if err != nil {
		return store.NewStorageError("sqlite", "delete_model", err)
	}
	return nil
}

// ListModels implements store.Store.
func (s *SQLiteStorage) ListModels(ctx context.Context) ([]*store.ModelConfig, error) {
	return s.queryModels(ctx, "SELECT id, provider_id, model_id, display_name, tier, input_cost_per_m, output_cost_per_m, max_context_tokens, supports_stream, supports_tools, supports_vision, enabled FROM models ORDER BY provider_id, model_id")
}

// EnabledModelsByTier implements store.Store.
func (s *SQLiteStorage) EnabledModelsByTier(ctx context.Context, tier store.ModelTier) ([]*store.ModelConfig, error) {
	return s.queryModels(ctx,
		"SELECT id, provider_id, model_id, display_name, tier, input_cost_per_m, output_cost_per_m, max_context_tokens, supports_stream, supports_tools, supports_vision, enabled FROM models WHERE tier = ? AND enabled = 1",
		tier)
}

func (s *SQLiteStorage) queryModels(ctx context.Context, query string, args ...interface{}) ([]*store.ModelConfig, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, store.NewStorageError("sqlite", "query_models", err)
	}
	defer rows.Close()

	models := []*store.ModelConfig{}
	for rows.Next() {
		m := &store.ModelConfig{}
		if err := rows.Scan(&m.ID, &m.ProviderID, &m.ModelID, &m.DisplayName, &m.Tier, &m.InputCostPerM, &m.OutputCostPerM,
			&m.MaxContextTokens, &m.SupportsStream, &m.SupportsTools, &m.SupportsVision, &m.Enabled); err != nil {
			return nil, store.NewStorageError("sqlite", "scan_model", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStorageError("sqlite", "query_models", err)
	}
	return models, nil
}

// UpsertBudget implements store.Store.
func (s *SQLiteStorage) UpsertBudget(ctx context.Context, b *store.BudgetConfig) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (period, limit_usd, enabled, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(period) DO UPDATE SET
			limit_usd = excluded.limit_usd, enabled = excluded.enabled, updated_at = excluded.updated_at`,
		b.Period, b.LimitUSD, b.Enabled, b.UpdatedAt,
	)
	if err != nil {
		return store.NewStorageError("sqlite", "upsert_budget", err)
	}
	return nil
}

// ListBudgets implements store.Store.
func (s *SQLiteStorage) ListBudgets(ctx context.Context) ([]*store.BudgetConfig, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT period, limit_usd, enabled, updated_at FROM budgets")
	if err != nil {
		return nil, store.NewStorageError("sqlite", "list_budgets", err)
	}
	defer rows.Close()

	budgets := []*store.BudgetConfig{}
	for rows.Next() {
		b := &store.BudgetConfig{}
		if err := rows.Scan(&b.Period, &b.LimitUSD, &b.Enabled, &b.UpdatedAt); err != nil {
			return nil, store.NewStorageError("sqlite", "scan_budget", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStorageError("sqlite", "list_budgets", err)
	}
	return budgets, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return store.NewStorageError("sqlite", "close", err)
	}
	s.logger.Info("SQLite storage closed")
	return nil
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
