package commands

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-codex/internal/logging"
	"github.com/goliatone/go-codex/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// Status classifies how a command run ended.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

func statusOf(err error) Status {
	switch {
	case err == nil:
		return StatusSucceeded
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	default:
		return StatusFailed
	}
}

// Outcome describes one finished run.
type Outcome struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Err       error
	Status    Status
	// Logger already carries Fields.
	Logger interfaces.Logger
}

// Telemetry is invoked once per run, after the command function returns.
type Telemetry[T command.Message] func(ctx context.Context, msg T, outcome Outcome)

// CommandMetrics records run durations. metrics.Recorder implements it.
type CommandMetrics interface {
	ObserveCommand(command, status string, duration time.Duration)
}

// LogTelemetry writes one entry per run: info on success, error otherwise.
func LogTelemetry[T command.Message]() Telemetry[T] {
	return func(_ context.Context, _ T, outcome Outcome) {
		logOutcome(outcome)
	}
}

// ObservedTelemetry logs like LogTelemetry and also feeds metrics. A nil
// metrics degrades to LogTelemetry.
func ObservedTelemetry[T command.Message](metrics CommandMetrics) Telemetry[T] {
	if metrics == nil {
		return LogTelemetry[T]()
	}
	return func(_ context.Context, _ T, outcome Outcome) {
		metrics.ObserveCommand(outcome.Command, string(outcome.Status), outcome.Duration)
		logOutcome(outcome)
	}
}

func logOutcome(outcome Outcome) {
	logger := outcome.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	ms := outcome.Duration.Milliseconds()
	switch outcome.Status {
	case StatusSucceeded:
		logger.Info("command.completed", "duration_ms", ms)
	case StatusCanceled:
		logger.Warn("command.canceled", "duration_ms", ms, "error", outcome.Err)
	default:
		logger.Error("command.failed", "duration_ms", ms, "error", outcome.Err)
	}
}
