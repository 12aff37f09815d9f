package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type pingMessage struct {
	Target string
}

func (pingMessage) Type() string { return "codex.test.ping" }

func (m pingMessage) Validate() error {
	if m.Target == "" {
		return errors.New("target is required")
	}
	return nil
}

func TestHandlerRunsValidMessage(t *testing.T) {
	var seen string
	h := NewHandler(func(ctx context.Context, msg pingMessage) error {
		seen = msg.Target
		return nil
	})

	if err := h.Execute(context.Background(), pingMessage{Target: "catalog"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if seen != "catalog" {
		t.Fatalf("expected handler to receive the message, got %q", seen)
	}
}

func TestHandlerErrorCategories(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	boom := errors.New("boom")

	cases := []struct {
		name     string
		ctx      context.Context
		msg      pingMessage
		run      func(context.Context, pingMessage) error
		opts     []HandlerOption[pingMessage]
		category goerrors.Category
		ran      bool
	}{
		{
			name:     "invalid message",
			ctx:      context.Background(),
			msg:      pingMessage{},
			category: goerrors.CategoryValidation,
		},
		{
			name:     "canceled before run",
			ctx:      canceled,
			msg:      pingMessage{Target: "x"},
			category: goerrors.CategoryCommand,
		},
		{
			name: "run failure",
			ctx:  context.Background(),
			msg:  pingMessage{Target: "x"},
			run: func(context.Context, pingMessage) error {
				return boom
			},
			category: goerrors.CategoryCommand,
			ran:      true,
		},
		{
			name: "deadline",
			ctx:  context.Background(),
			msg:  pingMessage{Target: "x"},
			run: func(ctx context.Context, _ pingMessage) error {
				<-ctx.Done()
				return ctx.Err()
			},
			opts:     []HandlerOption[pingMessage]{WithTimeout[pingMessage](10 * time.Millisecond)},
			category: goerrors.CategoryCommand,
			ran:      true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ran := false
			h := NewHandler(func(ctx context.Context, msg pingMessage) error {
				ran = true
				if tc.run != nil {
					return tc.run(ctx, msg)
				}
				return nil
			}, tc.opts...)

			err := h.Execute(tc.ctx, tc.msg)
			if err == nil {
				t.Fatal("expected error")
			}
			if !goerrors.IsCategory(err, tc.category) {
				t.Fatalf("expected category %v, got %v", tc.category, err)
			}
			if ran != tc.ran {
				t.Fatalf("expected ran=%v, got %v", tc.ran, ran)
			}
		})
	}
}

func TestHandlerTelemetryReceivesOutcome(t *testing.T) {
	var got Outcome
	h := NewHandler(func(ctx context.Context, msg pingMessage) error {
		return errors.New("boom")
	},
		WithOperation[pingMessage]("catalog.sync"),
		WithMessageFields(func(m pingMessage) map[string]any { return map[string]any{"target": m.Target} }),
		WithTelemetry(func(_ context.Context, _ pingMessage, outcome Outcome) { got = outcome }),
	)

	if err := h.Execute(context.Background(), pingMessage{Target: "content"}); err == nil {
		t.Fatal("expected execution error")
	}
	if got.Status != StatusFailed || got.Operation != "catalog.sync" {
		t.Fatalf("unexpected outcome %+v", got)
	}
	if got.Fields["target"] != "content" || got.Fields["command"] != "codex.test.ping" {
		t.Fatalf("expected message fields in outcome, got %v", got.Fields)
	}
}

type commandObservations struct {
	calls []string
}

func (c *commandObservations) ObserveCommand(command, status string, _ time.Duration) {
	c.calls = append(c.calls, command+":"+status)
}

func TestObservedTelemetryRecordsStatus(t *testing.T) {
	obs := &commandObservations{}
	h := NewHandler(func(ctx context.Context, msg pingMessage) error {
		if msg.Target == "fail" {
			return errors.New("boom")
		}
		return nil
	}, WithTelemetry(ObservedTelemetry[pingMessage](obs)))

	_ = h.Execute(context.Background(), pingMessage{Target: "ok"})
	_ = h.Execute(context.Background(), pingMessage{Target: "fail"})

	want := []string{"codex.test.ping:succeeded", "codex.test.ping:failed"}
	if len(obs.calls) != len(want) {
		t.Fatalf("expected %v, got %v", want, obs.calls)
	}
	for i := range want {
		if obs.calls[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, obs.calls)
		}
	}
}

func TestStatusOf(t *testing.T) {
	if statusOf(nil) != StatusSucceeded {
		t.Fatal("nil should map to succeeded")
	}
	if statusOf(context.DeadlineExceeded) != StatusCanceled {
		t.Fatal("deadline should map to canceled")
	}
	if statusOf(errors.New("x")) != StatusFailed {
		t.Fatal("plain error should map to failed")
	}
}
