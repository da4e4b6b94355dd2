package warmpool

import (
	"context"
	"os/exec"
	"testing"
	"time"
)

// echoSpawner returns a Spawner that runs a tiny shell loop: for every line
// written to its stdin, it emits one NDJSON "result" event carrying that
// line back, simulating a claude CLI turn without needing the real binary.
func echoSpawner() Spawner {
	return func(ctx context.Context, model string) (*exec.Cmd, error) {
		script := `while IFS= read -r line; do printf '{"type":"result","result":"%s"}\n' "$line"; done`
		return exec.CommandContext(ctx, "sh", "-c", script), nil
	}
}

func TestProcess_SendReceivesResult(t *testing.T) {
	ctx := context.Background()
	proc, err := NewProcess(ctx, "claude-3-opus", echoSpawner())
	if err != nil {
		t.Fatalf("NewProcess failed: %v", err)
	}

	release, err := proc.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer release()

	var seen []CLIEvent
	result, err := proc.Send(ctx, "hello", func(e CLIEvent) {
		seen = append(seen, e)
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if result.Type != "result" {
		t.Errorf("expected result event, got %q", result.Type)
	}
	if result.Result != "hello" {
		t.Errorf("expected echoed result %q, got %q", "hello", result.Result)
	}
	if len(seen) != 1 {
		t.Errorf("expected exactly 1 event delivered to onLine, got %d", len(seen))
	}
}

func TestProcess_ContextLogRoundTrip(t *testing.T) {
	ctx := context.Background()
	proc, err := NewProcess(ctx, "claude-3-opus", echoSpawner())
	if err != nil {
		t.Fatalf("NewProcess failed: %v", err)
	}

	if len(proc.ContextLog()) != 0 {
		t.Fatalf("expected empty context log on fresh process")
	}

	proc.SetContextLog([]string{"a", "b", "c"})
	log := proc.ContextLog()
	if len(log) != 3 || log[2] != "c" {
		t.Errorf("unexpected context log: %v", log)
	}

	// mutating the returned slice must not affect internal state
	log[0] = "mutated"
	if proc.ContextLog()[0] != "a" {
		t.Error("ContextLog should return a defensive copy")
	}
}

func TestProcess_DeadProcessRespawnsOnAcquire(t *testing.T) {
	ctx := context.Background()
	proc, err := NewProcess(ctx, "claude-3-opus", echoSpawner())
	if err != nil {
		t.Fatalf("NewProcess failed: %v", err)
	}

	release, err := proc.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if err := proc.Kill(); err != nil {
		t.Fatalf("Kill failed: %v", err)
	}
	proc.markDead()
	release()

	// give the killed process a moment to actually exit before respawn
	time.Sleep(50 * time.Millisecond)

	release, err = proc.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire after death should respawn, got error: %v", err)
	}
	defer release()

	if proc.IsDead() {
		t.Error("expected process to be alive after respawn")
	}
	if len(proc.ContextLog()) != 0 {
		t.Error("expected context log to reset on respawn")
	}
}
