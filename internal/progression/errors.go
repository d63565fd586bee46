package progression

import (
	"errors"
	"fmt"
)

// ErrInvalidAmount is returned for a negative XP amount when negative
// amounts are not allowed.
var ErrInvalidAmount = errors.New("invalid xp amount")

// ValidationError reports input rejected before any state was touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PartialApplicationError reports that an operation changed some state and
// then failed. The changed part is durable, so the operation must not be
// blindly retried: re-running an award would grant the XP twice.
type PartialApplicationError struct {
	Op      string
	Applied string
	Failed  string
	Err     error
}

func (e *PartialApplicationError) Error() string {
	return fmt.Sprintf("%s: partial application (%s applied, %s failed): %v", e.Op, e.Applied, e.Failed, e.Err)
}

func (e *PartialApplicationError) Unwrap() error { return e.Err }

// IsPartial reports whether err is or wraps a PartialApplicationError.
func IsPartial(err error) bool {
	var pe *PartialApplicationError
	return errors.As(err, &pe)
}

// IsValidation reports whether err was caused by rejected input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrInvalidAmount) || errors.As(err, &ve)
}
