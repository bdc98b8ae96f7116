package coordinator

import "time"

// RetryPolicy bounds step retries under the retry error-handling policy.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts per step, including
	// the first.
	MaxAttempts int
	// InitialBackoff is the delay before the second attempt; it doubles
	// after each failure.
	InitialBackoff time.Duration
}

// DefaultRetryPolicy returns the standard policy: 3 attempts with
// exponential backoff starting at 100ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
	}
}

// Option configures a Coordinator. Use With* functions to create Options.
type Option func(*coordinatorOptions)

// coordinatorOptions holds all optional configuration.
type coordinatorOptions struct {
	logger       *DebugLogger
	executor     StepExecutor
	retry        RetryPolicy
	historyLimit int
	sink         HistorySink
	eventBuffer  int
}

func defaultOptions() *coordinatorOptions {
	return &coordinatorOptions{
		logger:      NopLogger(),
		executor:    NewStubExecutor(),
		retry:       DefaultRetryPolicy(),
		eventBuffer: 100,
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *coordinatorOptions) { o.logger = l }
}

// WithExecutor sets the step executor.
func WithExecutor(e StepExecutor) Option {
	return func(o *coordinatorOptions) { o.executor = e }
}

// WithRetryPolicy sets the step retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *coordinatorOptions) { o.retry = p }
}

// WithHistoryLimit bounds the in-memory execution history to the most
// recent n results. Zero means unbounded.
func WithHistoryLimit(n int) Option {
	return func(o *coordinatorOptions) { o.historyLimit = n }
}

// WithHistorySink sets an external sink receiving every finished result.
func WithHistorySink(s HistorySink) Option {
	return func(o *coordinatorOptions) { o.sink = s }
}

// WithEventBuffer sets the event channel buffer size.
func WithEventBuffer(n int) Option {
	return func(o *coordinatorOptions) { o.eventBuffer = n }
}
