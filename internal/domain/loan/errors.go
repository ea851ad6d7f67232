package loan

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("loan not found")
	ErrVersionConflict   = errors.New("version conflict")
	ErrIllegalTransition = errors.New("illegal transition")
	ErrGateBlocked       = errors.New("gate blocked")
	ErrExhausted         = errors.New("retries exhausted")
	ErrUnavailable       = errors.New("loan store unavailable")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyGranted    = errors.New("gate already granted")
)

// TransitionError describes a rejected status change. Kind is one of the sentinels above.
// Actual is -1 when the conflict was detected by the store rather than the pre-check.
type TransitionError struct {
	Kind     error
	LoanID   string
	From     Status
	To       Status
	Expected int64
	Actual   int64
	Gate     GateFlag
	Reason   string
}

func (e *TransitionError) Error() string {
	switch e.Kind {
	case ErrVersionConflict:
		if e.Actual < 0 {
			return fmt.Sprintf("loan %s: version conflict (expected %d, concurrent write won)", e.LoanID, e.Expected)
		}
		return fmt.Sprintf("loan %s: version conflict (expected %d, found %d)", e.LoanID, e.Expected, e.Actual)
	case ErrIllegalTransition:
		return fmt.Sprintf("loan %s: illegal transition %s -> %s", e.LoanID, e.From, e.To)
	case ErrGateBlocked:
		return fmt.Sprintf("loan %s: %s -> %s blocked: %s", e.LoanID, e.From, e.To, e.Reason)
	case ErrExhausted:
		return fmt.Sprintf("loan %s: %s", e.LoanID, e.Reason)
	}
	if e.Reason != "" {
		return fmt.Sprintf("loan %s: %v: %s", e.LoanID, e.Kind, e.Reason)
	}
	return fmt.Sprintf("loan %s: %v", e.LoanID, e.Kind)
}

func (e *TransitionError) Unwrap() error { return e.Kind }

// Exhausted also matches ErrVersionConflict so callers treating conflicts uniformly keep working.
func (e *TransitionError) Is(target error) bool {
	return e.Kind == ErrExhausted && target == ErrVersionConflict
}
