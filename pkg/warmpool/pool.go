package warmpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/relayhub/gateway/pkg/providers"
	"github.com/relayhub/gateway/pkg/store"
)

// DefaultIdleTimeout is the default warm-pool idle shutdown window.
const DefaultIdleTimeout = 30 * time.Minute

// Pool manages one warm subprocess per enabled claude-cli model. Each
// process carries a log of message digests it has already seen; Dispatch
// computes the backfill delta against that log so only new turns are sent.
type Pool struct {
	spawn       Spawner
	idleTimeout time.Duration
	logger      *slog.Logger

	mu        sync.Mutex
	processes map[string]*Process
	lastUsed  map[string]time.Time

	cron    *cron.Cron
	cronID  cron.EntryID
	started bool
}

// NewPool creates a warm pool. spawn builds the *exec.Cmd for a model;
// idleTimeout of zero uses DefaultIdleTimeout.
func NewPool(spawn Spawner, idleTimeout time.Duration) *Pool {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Pool{
		spawn:       spawn,
		idleTimeout: idleTimeout,
		logger:      slog.Default().With("component", "warmpool.pool"),
		processes:   make(map[string]*Process),
		lastUsed:    make(map[string]time.Time),
		cron:        cron.New(cron.WithSeconds()),
	}
}

// Start launches the idle-sweep cron job. Safe to call once.
func (pool *Pool) Start() error {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.started {
		return nil
	}

	id, err := pool.cron.AddFunc("0 * * * * *", pool.sweepIdle)
	if err != nil {
		return fmt.Errorf("schedule warm pool idle sweep: %w", err)
	}
	pool.cronID = id
	pool.cron.Start()
	pool.started = true
	return nil
}

// Stop kills every warm process and halts the idle-sweep job.
func (pool *Pool) Stop() {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.started {
		pool.cron.Remove(pool.cronID)
		ctx := pool.cron.Stop()
		<-ctx.Done()
		pool.started = false
	}

	for model, proc := range pool.processes {
		if err := proc.Kill(); err != nil {
			pool.logger.Warn("failed to kill warm process", "model", model, "error", err)
		}
		delete(pool.processes, model)
		delete(pool.lastUsed, model)
	}
}

// sweepIdle stops any warm process untouched for longer than idleTimeout.
func (pool *Pool) sweepIdle() {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	cutoff := time.Now().Add(-pool.idleTimeout)
	for model, last := range pool.lastUsed {
		if last.After(cutoff) {
			continue
		}
		if proc, ok := pool.processes[model]; ok {
			pool.logger.Info("stopping idle warm process", "model", model)
			_ = proc.Kill()
			delete(pool.processes, model)
		}
		delete(pool.lastUsed, model)
	}
}

// acquireProcess returns the warm process for model, spawning it on first use.
func (pool *Pool) acquireProcess(ctx context.Context, model string) (*Process, error) {
	pool.mu.Lock()
	proc, ok := pool.processes[model]
	pool.mu.Unlock()

	if ok {
		return proc, nil
	}

	proc, err := NewProcess(ctx, model, pool.spawn)
	if err != nil {
		return nil, err
	}

	pool.mu.Lock()
	pool.processes[model] = proc
	pool.mu.Unlock()

	return proc, nil
}

// Dispatch sends messages to the warm process for model. All but the last
// message are treated as context to backfill only if the process hasn't
// already seen them (by longest-common-prefix digest comparison); the last
// message is always sent as the live turn. onLine is invoked for every CLI
// event seen during the live turn only — backfill responses are discarded.
func (pool *Pool) Dispatch(ctx context.Context, model string, messages []providers.Message, onLine func(CLIEvent)) (*CLIEvent, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("warmpool: dispatch requires at least one message")
	}

	proc, err := pool.acquireProcess(ctx, model)
	if err != nil {
		return nil, err
	}

	release, err := proc.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	digests := digestMessages(messages)
	backfill := backfillDelta(proc.ContextLog(), digests)

	for _, idx := range backfill {
		if _, err := proc.Send(ctx, messages[idx].Content, nil); err != nil {
			pool.markDeadAndForget(model, proc)
			return nil, fmt.Errorf("warm pool backfill turn %d: %w", idx, err)
		}
	}

	last := messages[len(messages)-1]
	result, err := proc.Send(ctx, last.Content, onLine)
	if err != nil {
		pool.markDeadAndForget(model, proc)
		return nil, err
	}

	proc.SetContextLog(digests)

	pool.mu.Lock()
	pool.lastUsed[model] = time.Now()
	pool.mu.Unlock()

	return result, nil
}

// markDeadAndForget drops a process that failed mid-dispatch so the next
// acquire respawns a clean one, per the self-healing guarantee.
func (pool *Pool) markDeadAndForget(model string, proc *Process) {
	_ = proc.Kill()
	pool.mu.Lock()
	delete(pool.processes, model)
	delete(pool.lastUsed, model)
	pool.mu.Unlock()
}

func digestMessages(messages []providers.Message) []string {
	digests := make([]string, len(messages))
	for i, msg := range messages {
		digests[i] = store.HashString(msg.Role + ":" + msg.Content)
	}
	return digests
}

// backfillDelta returns the indexes (into the new digest list) of messages
// that haven't already been sent to the process, excluding the final
// message, which the caller always sends as the live turn.
func backfillDelta(seen, incoming []string) []int {
	if len(incoming) == 0 {
		return nil
	}

	prefix := 0
	for prefix < len(seen) && prefix < len(incoming)-1 && seen[prefix] == incoming[prefix] {
		prefix++
	}

	var delta []int
	for i := prefix; i < len(incoming)-1; i++ {
		delta = append(delta, i)
	}
	return delta
}
