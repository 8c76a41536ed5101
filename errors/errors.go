package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed request data. All of them are input
// errors: the request fails before any solving starts.
var (
	ErrInvalidTimeStep   = fmt.Errorf("time step must be positive")
	ErrInvalidWindow     = fmt.Errorf("window end must be after start")
	ErrInvalidInterval   = fmt.Errorf("busy interval end precedes start")
	ErrConflictingPolicy = fmt.Errorf("schedule_on_same_day and require_distinct_days are mutually exclusive")
	ErrEmptyPool         = fmt.Errorf("empty eligible-interviewer pool")
	ErrNoStages          = fmt.Errorf("no stages provided")
	ErrNoWindows         = fmt.Errorf("no availability windows provided")
	ErrInvalidDuration   = fmt.Errorf("stage duration must be positive")
	ErrInvalidRole       = fmt.Errorf("unknown role")
	ErrInvalidDailyBound = fmt.Errorf("invalid daily availability bound")
	ErrNotEnoughDays     = fmt.Errorf("availability spans fewer distinct days than there are stages")
)

// ErrTooManyOrderings is the capacity error: the free-stage factorial
// exceeds the configured ceiling.
var ErrTooManyOrderings = fmt.Errorf("too many orderings")

// Per-ordering outcomes. Neither is a request-level error: an infeasible
// ordering contributes zero schedules, an invalid model means the
// builder caught malformed input that validation should have rejected.
var (
	ErrInfeasible   = fmt.Errorf("ordering is infeasible")
	ErrInvalidModel = fmt.Errorf("invalid model")
)

// InputError wraps a sentinel with context about which part of the
// request was malformed.
type InputError struct {
	Field  string
	Detail string
	Err    error
}

func (e *InputError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid input %q: %v (%s)", e.Field, e.Err, e.Detail)
	}
	return fmt.Sprintf("invalid input %q: %v", e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// CapacityError reports that the enumerator refused to expand the
// permutation space.
type CapacityError struct {
	Count int
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: %d orderings exceeds cap %d", ErrTooManyOrderings, e.Count, e.Limit)
}

func (e *CapacityError) Unwrap() error {
	return ErrTooManyOrderings
}

// IsBadRequest reports whether err should surface to the caller as a
// request problem (HTTP 400) rather than a server failure.
func IsBadRequest(err error) bool {
	var in *InputError
	var cap *CapacityError
	return errors.As(err, &in) || errors.As(err, &cap)
}
