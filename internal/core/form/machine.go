package form

import "sync"

// Event describes one applied transition.
type Event struct {
	Prev   State
	Next   State
	Action Action
}

// Machine serialises dispatches over Reduce and fans out events to subscribers.
// Listeners run synchronously in dispatch order and must not call Dispatch.
type Machine struct {
	mu    sync.Mutex
	state State

	notifyMu  sync.Mutex
	listeners map[int]func(Event)
	nextID    int
}

// NewMachine seeds a Machine with initial.
func NewMachine(initial State) *Machine {
	return &Machine{state: initial, listeners: map[int]func(Event){}}
}

// State returns the current snapshot.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Dispatch applies a and notifies listeners with the resulting transition.
func (m *Machine) Dispatch(a Action) (State, error) {
	// notifyMu is held across apply and fan-out so listeners see events in
	// dispatch order while State stays readable from inside a listener.
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	prev := m.state
	next, err := Apply(prev, a)
	if err != nil {
		m.mu.Unlock()
		return prev, err
	}
	m.state = next
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	ev := Event{Prev: prev, Next: next, Action: a}
	for _, fn := range listeners {
		fn(ev)
	}
	return next, nil
}

// Subscribe registers fn and returns a function that removes it.
func (m *Machine) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// snapshotListeners must be called with mu held. Order follows registration.
func (m *Machine) snapshotListeners() []func(Event) {
	out := make([]func(Event), 0, len(m.listeners))
	for id := 0; id < m.nextID; id++ {
		if fn, ok := m.listeners[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
