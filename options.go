package fncall

import (
	"context"
	"log/slog"
	"time"
)

// Option configures the Metadata attached by Annotate.
type Option func(*Metadata)

// WithName overrides the advertised function name (defaults to the Go
// function's own name).
func WithName(name string) Option {
	return func(m *Metadata) {
		m.Name = name
	}
}

// WithDescription sets the description advertised to the model. A candidate
// without a description fails registration with ErrMissingDescription.
func WithDescription(desc string) Option {
	return func(m *Metadata) {
		m.Description = desc
	}
}

// WithAutoRetry marks the function as safe to retry by re-prompting the
// model. The flag is metadata only; this package never retries.
func WithAutoRetry() Option {
	return func(m *Metadata) {
		m.AutoRetry = true
	}
}

// WithWaitForResponse sets whether the orchestrator should wait for the
// function's result before continuing the conversation (default true).
func WithWaitForResponse(wait bool) Option {
	return func(m *Metadata) {
		m.WaitForResponse = wait
	}
}

// RegistryOption configures a Registry at construction time.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	logger         *slog.Logger
	maxConcurrency int
	recoverPanics  bool
	onBefore       func(context.Context, *ToolCall)
	onAfter        func(context.Context, *ToolCall, error, time.Duration)
}

// WithLogger sets the logger used for non-fatal diagnostics (e.g. a skipped
// candidate without metadata). Defaults to slog.Default().
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		o.logger = logger
	}
}

// WithMaxConcurrency limits concurrent function executions (semaphore).
// Pass 0 or negative to disable the limit (the default).
func WithMaxConcurrency(n int) RegistryOption {
	return func(o *registryOptions) {
		o.maxConcurrency = n
	}
}

// WithRecoverPanics controls whether Execute recovers panics inside the
// function and captures them as an ExecutionError on the handle (default
// true). Disable only in tests that want panics to crash.
func WithRecoverPanics(enable bool) RegistryOption {
	return func(o *registryOptions) {
		o.recoverPanics = enable
	}
}

// WithOnBeforeExecute sets a hook called on the execution goroutine just
// before the function runs.
func WithOnBeforeExecute(fn func(context.Context, *ToolCall)) RegistryOption {
	return func(o *registryOptions) {
		o.onBefore = fn
	}
}

// WithOnAfterExecute sets a hook called when an execution finishes (success
// or error), before the handle is marked done.
func WithOnAfterExecute(fn func(context.Context, *ToolCall, error, time.Duration)) RegistryOption {
	return func(o *registryOptions) {
		o.onAfter = fn
	}
}
