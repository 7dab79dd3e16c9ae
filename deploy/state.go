package deploy

import (
	"fmt"

	"github.com/movedeploy/aptos-resource-publish/pkg/logger"
)

// State is the progress of a run.
type State int

const (
	Start State = iota
	AccountCreationSubmitted
	AccountCreationConfirmed
	PublishSubmitted
	PublishConfirmed
	Failed
)

func (s State) String() string {
	switch s {
	case Start:
		return "Start"
	case AccountCreationSubmitted:
		return "AccountCreationSubmitted"
	case AccountCreationConfirmed:
		return "AccountCreationConfirmed"
	case PublishSubmitted:
		return "PublishSubmitted"
	case PublishConfirmed:
		return "PublishConfirmed"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == PublishConfirmed || s == Failed
}

// validTransitions lists the allowed successors of each non terminal state. The shortcuts
// to a confirmed state are taken when a step is skipped because a previous run completed it.
var validTransitions = map[State][]State{
	Start:                    {AccountCreationSubmitted, AccountCreationConfirmed, Failed},
	AccountCreationSubmitted: {AccountCreationConfirmed, Failed},
	AccountCreationConfirmed: {PublishSubmitted, PublishConfirmed, Failed},
	PublishSubmitted:         {PublishConfirmed, Failed},
}

// TransitionFunc observes state changes.
type TransitionFunc func(from, to State)

type stateMachine struct {
	state        State
	lggr         logger.Logger
	onTransition TransitionFunc
}

func newStateMachine(lggr logger.Logger, onTransition TransitionFunc) *stateMachine {
	return &stateMachine{state: Start, lggr: lggr, onTransition: onTransition}
}

func (m *stateMachine) current() State {
	return m.state
}

func (m *stateMachine) transition(to State) error {
	from := m.state
	allowed := false
	for _, s := range validTransitions[from] {
		if s == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("invalid state transition from %s to %s", from, to)
	}

	m.state = to
	m.lggr.Infow("State transition", "from", from.String(), "to", to.String())
	if m.onTransition != nil {
		m.onTransition(from, to)
	}

	return nil
}

// fail moves the machine to Failed and wraps err with the state it failed in.
func (m *stateMachine) fail(err error) error {
	failedIn := m.state
	if !failedIn.Terminal() {
		_ = m.transition(Failed)
	}

	return &StepError{State: failedIn, Err: err}
}
