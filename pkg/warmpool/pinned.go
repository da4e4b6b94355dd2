package warmpool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/relayhub/gateway/pkg/providers"
)

// Pinned manages a single long-lived process tied to one model, with no
// context-log tracking. When the pinned model changes, the old process is
// torn down and a fresh one spawned for the new model.
type Pinned struct {
	spawn Spawner

	mu    sync.Mutex
	model string
	proc  *Process
}

// NewPinned creates a pinned-mode dispatcher.
func NewPinned(spawn Spawner) *Pinned {
	return &Pinned{spawn: spawn}
}

// Dispatch sends messages to the pinned process for model, respawning it
// first if the pinned model changed since the last call.
func (p *Pinned) Dispatch(ctx context.Context, model string, messages []providers.Message, onLine func(CLIEvent)) (*CLIEvent, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("warmpool: dispatch requires at least one message")
	}

	proc, err := p.processFor(ctx, model)
	if err != nil {
		return nil, err
	}

	release, err := proc.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	last := messages[len(messages)-1]
	result, err := proc.Send(ctx, last.Content, onLine)
	if err != nil {
		p.teardown()
		return nil, err
	}

	return result, nil
}

func (p *Pinned) processFor(ctx context.Context, model string) (*Process, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.proc != nil && p.model == model && !p.proc.IsDead() {
		return p.proc, nil
	}

	if p.proc != nil {
		slog.Info("pinned model changed, respawning", "from", p.model, "to", model)
		_ = p.proc.Kill()
	}

	proc, err := NewProcess(ctx, model, p.spawn)
	if err != nil {
		return nil, err
	}

	p.model = model
	p.proc = proc
	return proc, nil
}

func (p *Pinned) teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.proc != nil {
		_ = p.proc.Kill()
		p.proc = nil
	}
}

// Stop kills the pinned process.
func (p *Pinned) Stop() {
	p.teardown()
}
