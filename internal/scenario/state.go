package scenario

import (
	"errors"
	"fmt"
)

// State is the scenario's position in the linear flow
type State int

// Scenario states, in the only order they can be reached
const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateCartPopulated
	StateCheckoutFormFilled
	// StateOrderNotSubmitted is terminal: the order form is complete but the
	// submit control is never activated.
	StateOrderNotSubmitted
)

// ErrInvalidStateTransition is returned when a phase runs out of order
var ErrInvalidStateTransition = errors.New("invalid scenario state transition")

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "Unauthenticated"
	case StateAuthenticated:
		return "Authenticated"
	case StateCartPopulated:
		return "CartPopulated"
	case StateCheckoutFormFilled:
		return "CheckoutFormFilled"
	case StateOrderNotSubmitted:
		return "OrderNotSubmitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsTerminal returns true if no transition leaves s
func (s State) IsTerminal() bool {
	return s == StateOrderNotSubmitted
}

// next returns the only state reachable from s
func (s State) next() (State, bool) {
	if s < StateUnauthenticated || s >= StateOrderNotSubmitted {
		return s, false
	}
	return s + 1, true
}

// Transition moves s to the given state if it is the next one in the flow
func (s *State) Transition(to State) error {
	next, ok := s.next()
	if !ok || next != to {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidStateTransition, *s, to)
	}
	*s = to
	return nil
}

// Require returns an error unless the scenario is in state want
func (s State) Require(want State) error {
	if s != want {
		return fmt.Errorf("%w: step needs %s but scenario is %s", ErrInvalidStateTransition, want, s)
	}
	return nil
}
