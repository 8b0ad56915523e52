// Package form models the lifecycle of a modal entry form as an explicit
// state machine:
//
//	Idle --open--> Open
//	Open, Error --submit--> Submitting     (Error when the guard rejects)
//	Submitting --success--> Idle
//	Submitting --failure--> Error(message)
//	Open, Error --close--> Idle
package form

import (
	"errors"
	"fmt"
	"sync"
)

type State string

const (
	StateIdle       State = "idle"
	StateOpen       State = "open"
	StateSubmitting State = "submitting"
	StateError      State = "error"
)

type Event string

const (
	EventOpen    Event = "open"
	EventSubmit  Event = "submit"
	EventSuccess Event = "success"
	EventFailure Event = "failure"
	EventClose   Event = "close"
)

var ErrInvalidTransition = errors.New("invalid form transition")

var transitions = map[State]map[Event]State{
	StateIdle: {
		EventOpen: StateOpen,
	},
	StateOpen: {
		EventSubmit: StateSubmitting,
		EventClose:  StateIdle,
	},
	StateSubmitting: {
		EventSuccess: StateIdle,
		EventFailure: StateError,
	},
	StateError: {
		EventSubmit: StateSubmitting,
		EventClose:  StateIdle,
	},
}

// Next returns the state reached from s on e.
func Next(s State, e Event) (State, error) {
	if to, ok := transitions[s][e]; ok {
		return to, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}

// Form is one form instance. It is safe for concurrent use.
type Form struct {
	mu      sync.Mutex
	name    string
	state   State
	message string
}

func New(name string) *Form {
	return &Form{name: name, state: StateIdle}
}

func (f *Form) Name() string {
	return f.name
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Message is the error shown while the form is in StateError.
func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *Form) fire(e Event, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	to, err := Next(f.state, e)
	if err != nil {
		return err
	}
	f.state = to
	f.message = message
	return nil
}

func (f *Form) Open() error {
	return f.fire(EventOpen, "")
}

// Submit runs guard first. A guard error moves the form to StateError with
// the guard's message and is returned; nothing reaches Submitting.
func (f *Form) Submit(guard func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := Next(f.state, EventSubmit); err != nil {
		return err
	}
	if guard != nil {
		if err := guard(); err != nil {
			f.state = StateError
			f.message = err.Error()
			return err
		}
	}
	f.state = StateSubmitting
	f.message = ""
	return nil
}

func (f *Form) Succeed() error {
	return f.fire(EventSuccess, "")
}

func (f *Form) Fail(cause error) error {
	msg := "submission failed"
	if cause != nil {
		msg = cause.Error()
	}
	return f.fire(EventFailure, msg)
}

func (f *Form) Close() error {
	return f.fire(EventClose, "")
}

// Run drives a full open/submit cycle: guard validates input, action
// performs the side effect. On success the form ends Idle. Otherwise it ends
// in StateError and the guard or action error is returned.
func Run(name string, guard, action func() error) (*Form, error) {
	f := New(name)
	if err := f.Open(); err != nil {
		return f, err
	}
	if err := f.Submit(guard); err != nil {
		return f, err
	}
	if err := action(); err != nil {
		if ferr := f.Fail(err); ferr != nil {
			return f, ferr
		}
		return f, err
	}
	return f, f.Succeed()
}
