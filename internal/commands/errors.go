package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to command failures. Callers match on the go-errors
// category; the code is for logs and API payloads.
const (
	CodeInvalid  = "CODEX_COMMAND_INVALID"
	CodeCanceled = "CODEX_COMMAND_CANCELED"
	CodeTimeout  = "CODEX_COMMAND_TIMEOUT"
	CodeFailed   = "CODEX_COMMAND_FAILED"
)

// rejected tags a message that failed validation. Errors already carrying a
// go-errors envelope pass through.
func rejected(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command message rejected").
		WithTextCode(CodeInvalid)
}

// failed tags an error returned by a run, separating context expiry from
// ordinary failures.
func failed(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command canceled").
			WithTextCode(CodeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command timed out").
			WithTextCode(CodeTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command failed").
			WithTextCode(CodeFailed)
	}
}
