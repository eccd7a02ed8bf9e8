package sageerr

import (
	"fmt"
	"time"
)

// RetryMode describes how a caller should react to an error.
type RetryMode int

const (
	// RetryNever indicates the operation must not be retried.
	RetryNever RetryMode = iota
	// RetryImmediately indicates the operation can be retried right away.
	RetryImmediately
	// RetryAfter indicates the operation can be retried after Delay.
	RetryAfter
	// RetryAfterUserAction indicates retry only makes sense once the user
	// has acted on Hint (re-authenticated, re-recorded, etc).
	RetryAfterUserAction
)

// String returns a human-readable retry mode.
func (m RetryMode) String() string {
	switch m {
	case RetryNever:
		return "never"
	case RetryImmediately:
		return "immediately"
	case RetryAfter:
		return "after-delay"
	case RetryAfterUserAction:
		return "after-user-action"
	default:
		return "unknown"
	}
}

// RetryPolicy tells callers whether, and when, an operation may be retried.
type RetryPolicy struct {
	Mode RetryMode

	// Delay is the suggested wait before retrying. Only set for RetryAfter.
	Delay time.Duration

	// Hint describes the user action required before a retry makes sense.
	// Only set for RetryAfterUserAction.
	Hint string
}

// Never returns a policy that forbids retries.
func Never() RetryPolicy {
	return RetryPolicy{Mode: RetryNever}
}

// Immediately returns a policy that allows an immediate retry.
func Immediately() RetryPolicy {
	return RetryPolicy{Mode: RetryImmediately}
}

// After returns a policy that allows a retry after the given delay.
func After(delay time.Duration) RetryPolicy {
	return RetryPolicy{Mode: RetryAfter, Delay: delay}
}

// AfterUserAction returns a policy that requires a user action first.
func AfterUserAction(hint string) RetryPolicy {
	return RetryPolicy{Mode: RetryAfterUserAction, Hint: hint}
}

// Retryable returns true if the policy permits any retry at all.
func (p RetryPolicy) Retryable() bool {
	return p.Mode == RetryImmediately || p.Mode == RetryAfter
}

// String returns a human-readable policy description.
func (p RetryPolicy) String() string {
	switch p.Mode {
	case RetryAfter:
		return fmt.Sprintf("retry after %s", p.Delay)
	case RetryAfterUserAction:
		return fmt.Sprintf("retry after user action: %s", p.Hint)
	default:
		return "retry " + p.Mode.String()
	}
}
