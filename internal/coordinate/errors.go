package coordinate

import (
	"errors"
	"fmt"
	"time"
)

// Coordination errors.
//
// Design decision: We use package-level sentinel errors so callers can
// branch with errors.Is() — a not-ready aggregation attempt is retried
// cheaply while a wait timeout is surfaced as a hard failure of the
// summary step.
var (
	// ErrWaitTimeout is returned when a project does not produce its
	// expected report count within the wait deadline. This is the
	// coordination layer failing, not a finding about the site.
	ErrWaitTimeout = errors.New("timed out waiting for project reports")

	// ErrNotReady is returned when an aggregation attempt finds a
	// sibling project still incomplete within the short attempt window.
	// The attempt is abandoned rather than blocking so racing workers
	// can retry without deadlocking on each other.
	ErrNotReady = errors.New("aggregation not ready: sibling project incomplete")
)

// TimeoutError carries the details of an exhausted wait deadline.
// It matches ErrWaitTimeout under errors.Is.
type TimeoutError struct {
	// Project is the project that was waited on.
	Project string

	// Expected is the report count the waiter was asked for.
	Expected int

	// Have is the count of matching reports at the deadline.
	Have int

	// Elapsed is the wall-clock time spent waiting.
	Elapsed time.Duration
}

// Error returns a message naming the expected count, per the waiter
// contract.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("project %q: expected %d reports, have %d after %s: %s",
		e.Project, e.Expected, e.Have, e.Elapsed.Round(time.Millisecond), ErrWaitTimeout)
}

// Is makes the error match ErrWaitTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrWaitTimeout
}
