package scenario

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themizzi/shopflow/internal/browser"
)

func TestState_TransitionsFollowTheFlow(t *testing.T) {
	s := StateUnauthenticated
	for _, to := range []State{StateAuthenticated, StateCartPopulated, StateCheckoutFormFilled, StateOrderNotSubmitted} {
		require.NoError(t, s.Transition(to))
		assert.Equal(t, to, s)
	}
	assert.True(t, s.IsTerminal())
	assert.ErrorIs(t, s.Transition(StateUnauthenticated), ErrInvalidStateTransition)
}

func TestState_RejectsSkipsAndBacktracking(t *testing.T) {
	tests := []struct {
		from State
		to   State
	}{
		{StateUnauthenticated, StateCartPopulated},
		{StateUnauthenticated, StateOrderNotSubmitted},
		{StateAuthenticated, StateUnauthenticated},
		{StateCartPopulated, StateCartPopulated},
		{StateCheckoutFormFilled, StateAuthenticated},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s to %s", tt.from, tt.to), func(t *testing.T) {
			s := tt.from
			assert.ErrorIs(t, s.Transition(tt.to), ErrInvalidStateTransition)
			assert.Equal(t, tt.from, s)
		})
	}
}

func TestState_Require(t *testing.T) {
	assert.NoError(t, StateCartPopulated.Require(StateCartPopulated))
	err := StateAuthenticated.Require(StateCartPopulated)
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.Contains(t, err.Error(), "needs CartPopulated but scenario is Authenticated")
	assert.Equal(t, "State(9)", State(9).String())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: KindNone},
		{name: "assertion", err: &StepError{Step: "verify outcome", Err: &AssertionError{Message: "Your order was not placed."}}, want: KindAssertion},
		{name: "timeout", err: &browser.TimeoutError{Condition: "visibility of id=x"}, want: KindLookup},
		{name: "not found", err: fmt.Errorf("x: %w", browser.ErrElementNotFound), want: KindLookup},
		{name: "not interactable", err: browser.ErrNotInteractable, want: KindLookup},
		{name: "closed", err: browser.ErrSessionClosed, want: KindSession},
		{name: "no session", err: ErrNoSession, want: KindSession},
		{name: "other", err: errors.New("boom"), want: KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestAssertionError_Message(t *testing.T) {
	err := &AssertionError{Step: "verify outcome", Message: "Your order was not placed.", Expected: "a", Actual: "b"}
	assert.Equal(t, "verify outcome: Your order was not placed. (expected a, got b)", err.Error())
}
