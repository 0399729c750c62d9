package linesquare

import (
	"errors"
	"fmt"
	"time"
)

// ErrApproachTimedOut matches a TimeoutError raised by the approach phase.
var ErrApproachTimedOut = errors.New("approach timed out")

// TimeoutError reports a phase that ran past its time limit.
type TimeoutError struct {
	// Phase is the phase that timed out.
	Phase Phase
	// Limit is the configured time limit.
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Phase, e.Limit)
}

// Is reports whether target is ErrApproachTimedOut for an approach timeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrApproachTimedOut && e.Phase == PhaseApproach
}

// ValidationError reports an invalid setting or request parameter.
type ValidationError struct {
	// Field is the settings key that failed validation.
	Field string
	// Message explains the failure.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
