package onboarding

import (
	"errors"
	"sync"
)

var (
	// ErrBusy is returned by Machine.Begin while another external call is in flight.
	ErrBusy = errors.New("another action is in progress")

	// ErrStaleCall is returned by Machine.Settle when the session was reset
	// after the call began. The result is discarded.
	ErrStaleCall = errors.New("call began before the last reset")
)

// Ticket identifies the busy bracket opened by Machine.Begin.
type Ticket struct {
	epoch uint64
}

// Observer is notified after every accepted event.
type Observer func(e Event, s Session)

// Machine holds the current Session and serialises access to it.
type Machine struct {
	mu        sync.Mutex
	session   Session
	observers []Observer
	// epoch counts accepted resets.
	epoch uint64
}

func NewMachine() *Machine {
	return &Machine{session: Initial()}
}

// Session returns a copy of the current session.
func (m *Machine) Session() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Subscribe registers o for all subsequent accepted events.
func (m *Machine) Subscribe(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Dispatch applies e. On error the current session is returned unchanged.
func (m *Machine) Dispatch(e Event) (Session, []Reaction, error) {
	m.mu.Lock()
	next, err := Transition(m.session, e)
	if err != nil {
		current := m.session
		m.mu.Unlock()
		return current, nil, err
	}
	m.session = next
	if _, ok := e.(Reset); ok {
		m.epoch++
	}
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	m.notify(observers, e, next)
	return next, Reactions(next, e), nil
}

// Begin applies BeginBusy unless the session is already busy, in which
// case it returns ErrBusy. The check and the update are atomic.
func (m *Machine) Begin() (Ticket, error) {
	m.mu.Lock()
	if m.session.Busy {
		m.mu.Unlock()
		return Ticket{}, ErrBusy
	}
	e := BeginBusy{}
	next, _ := Transition(m.session, e)
	m.session = next
	t := Ticket{epoch: m.epoch}
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	m.notify(observers, e, next)
	return t, nil
}

// Settle applies the result e of the call opened with t, then EndBusy, in
// one step. If a Reset was accepted since Begin, neither is applied: the
// busy flag may already belong to a newer call. EndBusy is applied even
// when e itself is rejected; that error is returned.
func (m *Machine) Settle(t Ticket, e Event) (Session, []Reaction, error) {
	m.mu.Lock()
	if t.epoch != m.epoch {
		current := m.session
		m.mu.Unlock()
		return current, nil, ErrStaleCall
	}

	result, err := Transition(m.session, e)
	if err != nil {
		result = m.session
	}
	end := EndBusy{}
	next, _ := Transition(result, end)
	m.session = next
	observers := append([]Observer(nil), m.observers...)
	m.mu.Unlock()

	if err != nil {
		m.notify(observers, end, next)
		return next, nil, err
	}
	m.notify(observers, e, result)
	m.notify(observers, end, next)
	return next, Reactions(result, e), nil
}

func (m *Machine) notify(observers []Observer, e Event, s Session) {
	for _, o := range observers {
		o(e, s)
	}
}
