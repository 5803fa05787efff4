package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// Clock lets waits run against simulated time in tests.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

// RealClock returns the wall clock
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Condition is evaluated repeatedly by a Wait. Check returns a nil element
// and nil error while the condition does not hold yet.
type Condition struct {
	Description string
	Check       func(ctx context.Context, s Session) (Element, error)
}

// VisibilityOf holds once the element is located and visible.
func VisibilityOf(sel Selector) Condition {
	return Condition{
		Description: "visibility of " + sel.String(),
		Check: func(ctx context.Context, s Session) (Element, error) {
			el, err := s.Find(ctx, sel)
			if err != nil {
				return nil, err
			}
			visible, err := el.IsVisible(ctx)
			if err != nil || !visible {
				return nil, err
			}
			return el, nil
		},
	}
}

// PresenceOf holds once the element is attached to the page.
func PresenceOf(sel Selector) Condition {
	return Condition{
		Description: "presence of " + sel.String(),
		Check: func(ctx context.Context, s Session) (Element, error) {
			return s.Find(ctx, sel)
		},
	}
}

// Wait is a bounded poll wait: it re-evaluates a condition every Interval
// until it holds or Timeout elapses.
type Wait struct {
	Timeout  time.Duration
	Interval time.Duration
	// Ignoring lists the errors swallowed between attempts. When empty,
	// transient lookup errors are ignored.
	Ignoring []error
	// Message prefixes the timeout error.
	Message string
	Clock   Clock
	Logger  logrus.FieldLogger
}

// Validate checks that the wait can make progress
func (w Wait) Validate() error {
	if w.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidWait, w.Timeout)
	}
	if w.Interval <= 0 {
		return fmt.Errorf("%w: polling interval must be positive, got %s", ErrInvalidWait, w.Interval)
	}
	if w.Interval >= w.Timeout {
		return fmt.Errorf("%w: polling interval %s must be shorter than timeout %s",
			ErrInvalidWait, w.Interval, w.Timeout)
	}
	return nil
}

// Until blocks until cond holds and returns the element it produced.
// Ignored errors are retried; any other error is returned immediately.
// The last attempt happens at the deadline, so a TimeoutError is never
// returned before Timeout has elapsed.
func (w Wait) Until(ctx context.Context, s Session, cond Condition) (Element, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	clock := w.Clock
	if clock == nil {
		clock = RealClock()
	}
	log := w.logger().WithField("condition", cond.Description)

	start := clock.Now()
	deadline := start.Add(w.Timeout)
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("waiting for %s: %w", cond.Description, err)
		}

		el, err := cond.Check(ctx, s)
		switch {
		case err == nil && el != nil:
			log.WithFields(logrus.Fields{
				"attempt": attempt,
				"elapsed": clock.Now().Sub(start),
			}).Debug("Condition met")
			return el, nil
		case err != nil && !w.ignores(err):
			return nil, fmt.Errorf("waiting for %s: %w", cond.Description, err)
		case err != nil:
			lastErr = err
			log.WithError(err).WithField("attempt", attempt).Debug("Ignoring error while polling")
		}

		remaining := deadline.Sub(clock.Now())
		if remaining <= 0 {
			return nil, &TimeoutError{
				Condition: cond.Description,
				Timeout:   w.Timeout,
				Interval:  w.Interval,
				Attempts:  attempt,
				Message:   w.Message,
				Last:      lastErr,
			}
		}

		pause := w.Interval
		if remaining < pause {
			pause = remaining
		}
		if err := clock.Sleep(ctx, pause); err != nil {
			return nil, fmt.Errorf("waiting for %s: %w", cond.Description, err)
		}
	}
}

// UntilVisible is shorthand for Until with VisibilityOf.
func (w Wait) UntilVisible(ctx context.Context, s Session, sel Selector) (Element, error) {
	return w.Until(ctx, s, VisibilityOf(sel))
}

func (w Wait) ignores(err error) bool {
	if len(w.Ignoring) == 0 {
		return IsTransient(err)
	}
	for _, target := range w.Ignoring {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (w Wait) logger() logrus.FieldLogger {
	if w.Logger != nil {
		return w.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
