package input

import "slices"

// HistoryCapacity is the number of transitions retained in history.
const HistoryCapacity = 64

// Code identifies a key.
type Code uint32

// Event is one recorded key transition.
type Event struct {
	Code    Code
	Pressed bool
}

// Pack encodes the event for the guest: bit 32 is set for a press and the
// low 32 bits carry the key code.
func (e Event) Pack() uint64 {
	v := uint64(e.Code)
	if e.Pressed {
		v |= 1 << 32
	}
	return v
}

type edge struct {
	pressed  bool
	released bool
}

// Tracker owns level, edge and history state for one session.
// It is not safe for concurrent use; the scheduler's thread is its only writer.
type Tracker struct {
	down  map[Code]bool
	edges map[Code]edge

	ring  [HistoryCapacity]Event
	head  int // index of the oldest live entry
	count int
	total uint64
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		down:  make(map[Code]bool),
		edges: make(map[Code]edge),
	}
}

// Press records a key going down. Pressing a held key is not a transition.
func (t *Tracker) Press(code Code) bool {
	if t.down[code] {
		return false
	}
	t.down[code] = true
	e := t.edges[code]
	e.pressed = true
	t.edges[code] = e
	t.record(Event{Code: code, Pressed: true})
	return true
}

// Release records a key going up. Releasing a key that is not held is ignored.
func (t *Tracker) Release(code Code) bool {
	if !t.down[code] {
		return false
	}
	delete(t.down, code)
	e := t.edges[code]
	e.released = true
	t.edges[code] = e
	t.record(Event{Code: code, Pressed: false})
	return true
}

func (t *Tracker) record(ev Event) {
	if t.count < HistoryCapacity {
		t.ring[(t.head+t.count)%HistoryCapacity] = ev
		t.count++
	} else {
		t.ring[t.head] = ev
		t.head = (t.head + 1) % HistoryCapacity
	}
	t.total++
}

// EndTick clears every edge flag. Level state and history are kept.
func (t *Tracker) EndTick() {
	clear(t.edges)
}

// IsDown reports whether code is held.
func (t *Tracker) IsDown(code Code) bool {
	return t.down[code]
}

// IsPressed reports whether code went down during the current tick.
func (t *Tracker) IsPressed(code Code) bool {
	return t.edges[code].pressed
}

// IsReleased reports whether code went up during the current tick.
func (t *Tracker) IsReleased(code Code) bool {
	return t.edges[code].released
}

// Held returns the codes currently held, in code order.
func (t *Tracker) Held() []Code {
	out := make([]Code, 0, len(t.down))
	for c := range t.down {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// HistoryLen returns the number of live history entries, at most HistoryCapacity.
func (t *Tracker) HistoryLen() int {
	return t.count
}

// Transitions returns the number of transitions recorded since creation,
// including those already evicted from history.
func (t *Tracker) Transitions() uint64 {
	return t.total
}

// HistoryAt returns the entry at index i, where 0 is the oldest live entry.
func (t *Tracker) HistoryAt(i int) (Event, bool) {
	if i < 0 || i >= t.count {
		return Event{}, false
	}
	return t.ring[(t.head+i)%HistoryCapacity], true
}

// History returns the live entries, oldest first.
func (t *Tracker) History() []Event {
	out := make([]Event, t.count)
	for i := range out {
		out[i] = t.ring[(t.head+i)%HistoryCapacity]
	}
	return out
}
