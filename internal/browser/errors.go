package browser

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrStaleElement    = errors.New("stale element reference")
	ErrNotInteractable = errors.New("element not interactable")
	ErrSessionClosed   = errors.New("browser session closed")
	ErrTimeout         = errors.New("wait timed out")
	ErrInvalidWait     = errors.New("invalid wait configuration")
)

// TimeoutError is returned when a bounded wait reaches its deadline.
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
	Interval  time.Duration
	Attempts  int
	Message   string
	// Last is the most recent ignored error, if any.
	Last error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s (tried %d times every %s)",
		e.Timeout, e.Condition, e.Attempts, e.Interval)
	if e.Message != "" {
		msg = e.Message + ": " + msg
	}
	if e.Last != nil {
		msg += ": last error: " + e.Last.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrTimeout) hold for every TimeoutError.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Unwrap() error {
	return e.Last
}

// IsTransient reports whether err is a lookup error expected while the page
// is still rendering.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrElementNotFound) || errors.Is(err, ErrStaleElement)
}

func notFound(sel Selector) error {
	return fmt.Errorf("%w: %s", ErrElementNotFound, sel)
}
