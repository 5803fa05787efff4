package scenario

import (
	"errors"
	"fmt"

	"github.com/themizzi/shopflow/internal/browser"
)

// AssertionError reports an expected end state that did not hold
type AssertionError struct {
	Step     string
	Message  string
	Expected any
	Actual   any
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: %s (expected %v, got %v)", e.Step, e.Message, e.Expected, e.Actual)
}

// StepError attributes a failure to the phase that raised it
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ErrorKind distinguishes why a case failed
type ErrorKind string

// Failure kinds
const (
	KindNone      ErrorKind = ""
	KindLookup    ErrorKind = "lookup"
	KindAssertion ErrorKind = "assertion"
	KindSession   ErrorKind = "session"
	KindOther     ErrorKind = "other"
)

// Classify returns the kind of a scenario failure
func Classify(err error) ErrorKind {
	var assertion *AssertionError
	switch {
	case err == nil:
		return KindNone
	case errors.As(err, &assertion):
		return KindAssertion
	case errors.Is(err, browser.ErrTimeout),
		errors.Is(err, browser.ErrElementNotFound),
		errors.Is(err, browser.ErrStaleElement),
		errors.Is(err, browser.ErrNotInteractable):
		return KindLookup
	case errors.Is(err, browser.ErrSessionClosed), errors.Is(err, ErrNoSession):
		return KindSession
	default:
		return KindOther
	}
}
