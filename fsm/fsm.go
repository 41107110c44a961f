// Package fsm provides a minimal generic finite-state machine keyed by a
// closed, comparable identifier set. The machine owns the state table,
// constructed once at setup, and runs a per-tick decide-then-act protocol.
package fsm

import "fmt"

// State is the contract every state implements. T identifies the state within
// its machine; C is the collider payload delivered with physical-overlap
// events. States hold whatever shared context they need by reference.
type State[T comparable, C any] interface {
	ID() T
	Enter()
	Exit()
	Update(dt float64)
	// Next returns the identifier of the state that should be active after
	// this tick. Returning the state's own identifier means stay.
	Next() T
	OnOverlapBegin(c C)
	OnOverlapStay(c C)
	OnOverlapEnd(c C)
}

// Machine runs the per-tick transition protocol over a fixed state table.
type Machine[T comparable, C any] struct {
	states        map[T]State[T, C]
	current       State[T, C]
	transitioning bool
}

// New builds a machine from the given states and enters the initial one.
// Duplicate identifiers and an unmapped initial identifier are configuration
// errors.
func New[T comparable, C any](initial T, states ...State[T, C]) (*Machine[T, C], error) {
	m := &Machine[T, C]{states: make(map[T]State[T, C], len(states))}
	for _, s := range states {
		if _, dup := m.states[s.ID()]; dup {
			return nil, fmt.Errorf("fsm: duplicate state %v", s.ID())
		}
		m.states[s.ID()] = s
	}
	cur, ok := m.states[initial]
	if !ok {
		return nil, fmt.Errorf("fsm: initial state %v not in table", initial)
	}
	m.current = cur
	m.current.Enter()
	return m, nil
}

// Current returns the identifier of the active state.
func (m *Machine[T, C]) Current() T {
	return m.current.ID()
}

// Tick asks the active state for its decision, then either updates it in
// place or performs a transition.
func (m *Machine[T, C]) Tick(dt float64) {
	next := m.current.Next()
	if next == m.current.ID() && !m.transitioning {
		m.current.Update(dt)
		return
	}
	m.transition(next)
}

// transition swaps the active state, guarding against re-entrant transitions
// triggered from within Exit or Enter. A target missing from the table is a
// host bug, never expected at run time.
func (m *Machine[T, C]) transition(to T) {
	if m.transitioning {
		return
	}
	target, ok := m.states[to]
	if !ok {
		panic(fmt.Sprintf("fsm: transition to unmapped state %v", to))
	}
	m.transitioning = true
	m.current.Exit()
	m.current = target
	m.current.Enter()
	m.transitioning = false
}

// OverlapBegin forwards a begin event to whichever state is active now.
func (m *Machine[T, C]) OverlapBegin(c C) {
	m.current.OnOverlapBegin(c)
}

// OverlapStay forwards a stay event to whichever state is active now.
func (m *Machine[T, C]) OverlapStay(c C) {
	m.current.OnOverlapStay(c)
}

// OverlapEnd forwards an end event to whichever state is active now.
func (m *Machine[T, C]) OverlapEnd(c C) {
	m.current.OnOverlapEnd(c)
}
