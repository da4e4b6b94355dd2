package warmpool

import (
	"context"
	"reflect"
	"testing"

	"github.com/relayhub/gateway/pkg/providers"
)

func TestBackfillDelta(t *testing.T) {
	tests := []struct {
		name     string
		seen     []string
		incoming []string
		want     []int
	}{
		{
			name:     "fresh process backfills nothing but the live turn",
			seen:     nil,
			incoming: []string{"a", "b", "c"},
			want:     []int{0, 1},
		},
		{
			name:     "full prefix match backfills nothing",
			seen:     []string{"a", "b"},
			incoming: []string{"a", "b", "c"},
			want:     nil,
		},
		{
			name:     "new turns beyond the seen log backfill the delta",
			seen:     []string{"a", "b", "c"},
			incoming: []string{"a", "b", "c", "d", "e"},
			want:     []int{3},
		},
		{
			name:     "single message has nothing to backfill",
			seen:     nil,
			incoming: []string{"a"},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := backfillDelta(tt.seen, tt.incoming)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("backfillDelta(%v, %v) = %v, want %v", tt.seen, tt.incoming, got, tt.want)
			}
		})
	}
}

func TestPool_DispatchSendsOnlyDeltaOnSecondCall(t *testing.T) {
	pool := NewPool(echoSpawner(), 0)
	defer pool.Stop()

	ctx := context.Background()

	msgs := []providers.Message{
		{Role: providers.RoleUser, Content: "A"},
	}
	result, err := pool.Dispatch(ctx, "claude-3-opus", msgs, nil)
	if err != nil {
		t.Fatalf("first dispatch failed: %v", err)
	}
	if result.Result != "A" {
		t.Errorf("expected live turn A, got %q", result.Result)
	}

	msgs2 := []providers.Message{
		{Role: providers.RoleUser, Content: "A"},
		{Role: providers.RoleAssistant, Content: "B"},
		{Role: providers.RoleUser, Content: "C"},
	}
	var backfilled []string
	result, err = pool.Dispatch(ctx, "claude-3-opus", msgs2, func(e CLIEvent) {
		backfilled = append(backfilled, e.Result)
	})
	if err != nil {
		t.Fatalf("second dispatch failed: %v", err)
	}
	if result.Result != "C" {
		t.Errorf("expected live turn C, got %q", result.Result)
	}
	// onLine is only invoked for the live turn, not backfilled turns
	if len(backfilled) != 1 || backfilled[0] != "C" {
		t.Errorf("expected onLine to see only the live turn [C], got %v", backfilled)
	}
}

func TestPool_DispatchRequiresMessages(t *testing.T) {
	pool := NewPool(echoSpawner(), 0)
	defer pool.Stop()

	_, err := pool.Dispatch(context.Background(), "claude-3-opus", nil, nil)
	if err == nil {
		t.Fatal("expected error for empty message list")
	}
}
