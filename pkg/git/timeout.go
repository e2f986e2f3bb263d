package git

import (
	"context"
	"fmt"
	"time"
)

// DefaultOperationTimeout bounds git operations whose context carries no
// deadline of its own.
const DefaultOperationTimeout = 2 * time.Minute

// GitTimeoutError reports a git operation cut off by its context.
type GitTimeoutError struct {
	Operation string
	Timeout   time.Duration
	Err       error
}

func (e *GitTimeoutError) Error() string {
	return fmt.Sprintf("git %s did not finish within %s: %v", e.Operation, e.Timeout, e.Err)
}

func (e *GitTimeoutError) Unwrap() error {
	return e.Err
}

// runWithTimeout executes fn under a bounded context. go-git offers no
// cancellation for purely local operations, so on timeout the goroutine
// running fn is abandoned and a GitTimeoutError returned.
func (r *Repository) runWithTimeout(ctx context.Context, operation string, fn func(context.Context) error) error {
	timeout := DefaultOperationTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			timeout = remaining
		} else {
			timeout = 0
		}
	} else {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := ctx.Err(); err != nil {
		return &GitTimeoutError{Operation: operation, Timeout: timeout, Err: err}
	}

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return &GitTimeoutError{Operation: operation, Timeout: timeout, Err: ctx.Err()}
	}
}
