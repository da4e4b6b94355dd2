package warmpool

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
)

// Spawner creates the underlying *exec.Cmd for a model. Split out so tests
// can substitute a fake binary without touching the real claude CLI.
type Spawner func(ctx context.Context, model string) (*exec.Cmd, error)

// Process wraps one long-running claude CLI subprocess. Only one request
// may be in flight at a time; Acquire enforces that with a mutex, and a
// dead process self-heals on the next Acquire by respawning.
type Process struct {
	model   string
	spawn   Spawner
	logger  *slog.Logger
	mu      sync.Mutex
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	dead    bool

	// contextLog holds the digests of messages already sent to this
	// process, in order, so the pool can compute a backfill delta for
	// the next request's message list.
	contextLog []string
}

// NewProcess creates a process handle and spawns the subprocess immediately.
func NewProcess(ctx context.Context, model string, spawn Spawner) (*Process, error) {
	p := &Process{
		model:  model,
		spawn:  spawn,
		logger: slog.Default().With("component", "warmpool.process", "model", model),
	}
	if err := p.respawn(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Process) respawn(ctx context.Context) error {
	cmd, err := p.spawn(ctx, p.model)
	if err != nil {
		return fmt.Errorf("spawn claude cli for %s: %w", p.model, err)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start claude cli: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	p.cmd = cmd
	p.stdin = stdin
	p.scanner = scanner
	p.dead = false
	p.contextLog = nil

	p.logger.Info("spawned warm cli process", "pid", cmd.Process.Pid)

	return nil
}

// Acquire locks the process for exclusive use, respawning it first if the
// prior occupant observed it die. Callers must call the returned release
// func exactly once.
func (p *Process) Acquire(ctx context.Context) (release func(), err error) {
	p.mu.Lock()

	if p.dead {
		if err := p.respawn(ctx); err != nil {
			p.mu.Unlock()
			return nil, err
		}
	}

	return func() { p.mu.Unlock() }, nil
}

// ContextLog returns the digests of messages this process has already seen.
func (p *Process) ContextLog() []string {
	return append([]string(nil), p.contextLog...)
}

// SetContextLog replaces the process's context log after a successful dispatch.
func (p *Process) SetContextLog(digests []string) {
	p.contextLog = append([]string(nil), digests...)
}

// Send writes message to the process's stdin and reads NDJSON events from
// stdout until a "result" event arrives, invoking onLine for every event
// seen (including the result). It must be called while holding Acquire.
func (p *Process) Send(ctx context.Context, message string, onLine func(CLIEvent)) (*CLIEvent, error) {
	if _, err := fmt.Fprintln(p.stdin, message); err != nil {
		p.markDead()
		return nil, fmt.Errorf("write to claude cli stdin: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !p.scanner.Scan() {
			p.markDead()
			if err := p.scanner.Err(); err != nil {
				return nil, fmt.Errorf("read claude cli stdout: %w", err)
			}
			return nil, fmt.Errorf("claude cli process closed stdout unexpectedly")
		}

		line := p.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event CLIEvent
		if err := json.Unmarshal(line, &event); err != nil {
			p.logger.Warn("skipping malformed cli line", "error", err)
			continue
		}
		event.Raw = append(json.RawMessage(nil), line...)

		if onLine != nil {
			onLine(event)
		}

		if event.IsResult() {
			return &event, nil
		}
	}
}

func (p *Process) markDead() {
	p.dead = true
}

// IsDead reports whether the process is known to have exited.
func (p *Process) IsDead() bool {
	return p.dead
}

// Kill terminates the subprocess immediately.
func (p *Process) Kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}
