// Package store persists the proxy's audit trail: one request record per
// inbound HTTP call, many step records per pipeline stage, one task record
// per completed provider dispatch, plus the provider/model/budget catalog
// the router and budget guard read at request time.
package store

import (
	"context"
	"time"
)

// RequestStatus is the terminal status of a Request record. It is set
// exactly once, by the pipeline, when the request finishes.
type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusProcessing RequestStatus = "processing"
	StatusCompleted  RequestStatus = "completed"
	StatusError      RequestStatus = "error"
	StatusCached     RequestStatus = "cached"
	StatusDeduped    RequestStatus = "deduped"
)

// Request is created at request arrival and mutated only by the pipeline
// to advance its terminal status. It is never deleted.
type Request struct {
	ID              string
	ReceivedAt      time.Time
	ClientID        string
	RequestedModel  string
	MessageCount    int
	ToolCount       int
	Streaming       bool
	PromptPreview   string
	Status          RequestStatus
	CompletedAt     time.Time
	TotalLatency    time.Duration
	HTTPStatus      int
	Error           string
}

// StepName enumerates the pipeline stages that each emit a Step record.
type StepName string

const (
	StepParse             StepName = "parse"
	StepFeedback          StepName = "feedback"
	StepDedup             StepName = "dedup"
	StepClassify          StepName = "classify"
	StepRoute             StepName = "route"
	StepBudgetCheck       StepName = "budget_check"
	StepCacheCheck        StepName = "cache_check"
	StepCompress          StepName = "compress"
	StepProviderDispatch  StepName = "provider_dispatch"
	StepProviderStreaming StepName = "provider_streaming"
	StepProviderDone      StepName = "provider_done"
	StepToolParse         StepName = "tool_parse"
	StepResponseSent      StepName = "response_sent"
	StepLogTask           StepName = "log_task"
	StepWarmPoolDispatch  StepName = "warm_pool_dispatch"
)

// StepStatus is the outcome of a single pipeline stage's entry/exit.
type StepStatus string

const (
	StepStarted   StepStatus = "started"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
	StepSkipped   StepStatus = "skipped"
)

// Step is an append-only record of one pipeline stage entry/exit for a
// given request. Many steps belong to one request.
type Step struct {
	ID        string
	RequestID string
	CreatedAt time.Time
	Name      StepName
	Status    StepStatus
	Duration  time.Duration
	Detail    string // free-form, often JSON-encoded
}

// DispatchMode records how the subprocess provider served a task.
type DispatchMode string

const (
	DispatchWarm      DispatchMode = "warm"
	DispatchPinned    DispatchMode = "pinned"
	DispatchEphemeral DispatchMode = "ephemeral"
	DispatchNone      DispatchMode = ""
)

// Task is inserted once per completed provider call. The UserRating field
// is the only one mutated after insertion (via /feedback); everything else
// is immutable.
type Task struct {
	ID                 string
	RequestID          string
	CreatedAt          time.Time
	Category           string
	Complexity         int
	PromptSummary      string
	MessageCount       int
	RequestedModel     string
	ProviderID         string
	SelectedModelID    string
	RouterReason       string
	TokensIn           int
	TokensOut          int
	CostUSD            float64
	Latency            time.Duration
	Streaming          bool
	TokensBeforeCompr  int
	TokensAfterCompr   int
	CacheHit           bool
	RemainingBudget    float64
	DispatchMode       DispatchMode
	CLISuccess         bool
	HeuristicScore     int
	UserRating         int // 0 = unrated, 1-5 otherwise
	Error              string
	FullPrompt         string
	FullResponse       string
}

// ModelTier is the cost class assigned to a model for cross-provider
// comparison.
type ModelTier string

const (
	TierEconomy  ModelTier = "economy"
	TierStandard ModelTier = "standard"
	TierPremium  ModelTier = "premium"
)

// ProviderConfig is one row of the provider catalog.
type ProviderConfig struct {
	ID        string
	Name      string
	Enabled   bool
	Priority  int
	Config    string // opaque JSON: api key, base URL, etc.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ModelConfig is one row of the model catalog. (ProviderID, ModelID) is
// unique.
type ModelConfig struct {
	ID               int64
	ProviderID       string
	ModelID          string
	DisplayName      string
	Tier             ModelTier
	InputCostPerM    float64
	OutputCostPerM   float64
	MaxContextTokens int
	SupportsStream   bool
	SupportsTools    bool
	SupportsVision   bool
	Enabled          bool
}

// BudgetPeriod is the window a BudgetConfig's limit applies over.
type BudgetPeriod string

const (
	PeriodDaily   BudgetPeriod = "daily"
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
)

// BudgetConfig is one row per period kind.
type BudgetConfig struct {
	Period    BudgetPeriod
	LimitUSD  float64
	Enabled   bool
	UpdatedAt time.Time
}

// TaskFilter narrows a task query; zero values mean "unfiltered".
type TaskFilter struct {
	Since      time.Time
	Until      time.Time
	Category   string
	Provider   string
	Model      string
	Limit      int
	Offset     int
}

// ModelStat is an aggregate over historical tasks for a (provider, model,
// category) triple, used by the router's confidence gate.
type ModelStat struct {
	ProviderID   string
	ModelID      string
	Category     string
	SampleCount  int
	SuccessCount int
	// RecentOutcomes holds the success flag of the most recent samples,
	// newest first, capped at 3 — enough for the consecutive-failure skip.
	RecentOutcomes []bool
}

// Store is the persistence interface the rest of the proxy depends on.
// Implementations (SQLite, in-memory) must be safe for concurrent use.
type Store interface {
	InsertRequest(ctx context.Context, r *Request) error
	UpdateRequestStatus(ctx context.Context, id string, status RequestStatus, httpStatus int, errMsg string, completedAt time.Time, latency time.Duration) error
	GetRequest(ctx context.Context, id string) (*Request, error)

	InsertStep(ctx context.Context, s *Step) error
	StepsForRequest(ctx context.Context, requestID string) ([]*Step, error)

	InsertTask(ctx context.Context, t *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	FindTaskByIDPrefix(ctx context.Context, prefix string) (*Task, error)
	MostRecentTask(ctx context.Context) (*Task, error)
	UpdateTaskRating(ctx context.Context, id string, rating int) error
	QueryTasks(ctx context.Context, f TaskFilter) ([]*Task, error)
	SpendSince(ctx context.Context, since time.Time) (float64, error)
	ModelStatsSince(ctx context.Context, since time.Time, category string) ([]ModelStat, error)

	UpsertProvider(ctx context.Context, p *ProviderConfig) error
	DeleteProvider(ctx context.Context, id string) error
	ListProviders(ctx context.Context) ([]*ProviderConfig, error)

	UpsertModel(ctx context.Context, m *ModelConfig) error
	DeleteModel(ctx context.Context, id int64) error
	ListModels(ctx context.Context) ([]*ModelConfig, error)
	EnabledModelsByTier(ctx context.Context, tier ModelTier) ([]*ModelConfig, error)

	UpsertBudget(ctx context.Context, b *BudgetConfig) error
	ListBudgets(ctx context.Context) ([]*BudgetConfig, error)

	Close() error
}
