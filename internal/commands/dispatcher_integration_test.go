package commands

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type rebuildMessage struct {
	Root string
}

func (rebuildMessage) Type() string { return "codex.test.rebuild" }

func (rebuildMessage) Validate() error { return nil }

func TestDispatchedHandlerRetriesFlakyRun(t *testing.T) {
	var attempts atomic.Int32
	var outcomes []Status
	h := NewHandler(func(ctx context.Context, msg rebuildMessage) error {
		if attempts.Add(1) < 3 {
			return errors.New("database is locked")
		}
		return nil
	},
		WithTimeout[rebuildMessage](time.Second),
		WithTelemetry(func(_ context.Context, _ rebuildMessage, o Outcome) { outcomes = append(outcomes, o.Status) }),
	)

	sub := dispatcher.SubscribeCommand(h, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), rebuildMessage{Root: "content"}); err != nil {
		t.Fatalf("dispatch: expected success on third attempt, got %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
	if len(outcomes) != 3 || outcomes[2] != StatusSucceeded {
		t.Fatalf("expected two failures then success, got %v", outcomes)
	}
}
