package input

import (
	"slices"
	"testing"
)

func TestTracker_PressedForOneTick(t *testing.T) {
	tr := NewTracker()
	tr.Press(KeySpace)

	if !tr.IsPressed(KeySpace) || !tr.IsDown(KeySpace) {
		t.Fatal("press should set pressed edge and level")
	}
	tr.EndTick()

	if tr.IsPressed(KeySpace) {
		t.Error("pressed edge should clear at tick boundary")
	}
	if !tr.IsDown(KeySpace) {
		t.Error("level should persist across ticks")
	}
	tr.EndTick()
	if tr.IsPressed(KeySpace) {
		t.Error("pressed edge should stay clear without a new press")
	}
}

func TestTracker_ReleaseEdge(t *testing.T) {
	tr := NewTracker()
	tr.Press(KeyA)
	tr.EndTick()
	tr.Release(KeyA)

	if !tr.IsReleased(KeyA) {
		t.Error("release should set released edge")
	}
	if tr.IsDown(KeyA) {
		t.Error("release should clear level")
	}
	tr.EndTick()
	if tr.IsReleased(KeyA) {
		t.Error("released edge should clear at tick boundary")
	}
}

func TestTracker_RepeatedPressesWithinTick(t *testing.T) {
	tr := NewTracker()
	tr.Press(KeyW)
	tr.Release(KeyW)
	tr.Press(KeyW)

	if !tr.IsPressed(KeyW) || !tr.IsReleased(KeyW) || !tr.IsDown(KeyW) {
		t.Error("edges and level should reflect every transition in the tick")
	}
	if tr.HistoryLen() != 3 {
		t.Errorf("HistoryLen = %d, want 3", tr.HistoryLen())
	}
}

func TestTracker_NonTransitions(t *testing.T) {
	tr := NewTracker()
	if tr.Release(KeyQ) {
		t.Error("releasing an idle key is not a transition")
	}
	if !tr.Press(KeyQ) {
		t.Error("first press is a transition")
	}
	if tr.Press(KeyQ) {
		t.Error("pressing a held key is not a transition")
	}
	if tr.HistoryLen() != 1 {
		t.Errorf("HistoryLen = %d, want 1", tr.HistoryLen())
	}
}

func TestTracker_HistoryEviction(t *testing.T) {
	tr := NewTracker()
	// 65 transitions: press/release pairs across distinct codes
	for i := 0; i < 65; i++ {
		code := Code(i/2 + 1)
		if i%2 == 0 {
			tr.Press(code)
		} else {
			tr.Release(code)
		}
	}

	if tr.HistoryLen() != HistoryCapacity {
		t.Fatalf("HistoryLen = %d, want %d", tr.HistoryLen(), HistoryCapacity)
	}
	if tr.Transitions() != 65 {
		t.Errorf("Transitions = %d, want 65", tr.Transitions())
	}

	first, ok := tr.HistoryAt(0)
	if !ok {
		t.Fatal("HistoryAt(0) should exist")
	}
	if first == (Event{Code: 1, Pressed: true}) {
		t.Error("oldest original entry should be evicted")
	}
	if first != (Event{Code: 1, Pressed: false}) {
		t.Errorf("HistoryAt(0) = %+v, want release of 1", first)
	}

	last, _ := tr.HistoryAt(HistoryCapacity - 1)
	if last != (Event{Code: 33, Pressed: true}) {
		t.Errorf("newest entry = %+v, want press of 33", last)
	}

	if _, ok := tr.HistoryAt(HistoryCapacity); ok {
		t.Error("index past live entries should fail")
	}
	if _, ok := tr.HistoryAt(-1); ok {
		t.Error("negative index should fail")
	}

	h := tr.History()
	if len(h) != HistoryCapacity || h[0] != first || h[len(h)-1] != last {
		t.Error("History should list live entries oldest first")
	}
}

func TestTracker_EdgesClearedForAllKeys(t *testing.T) {
	tr := NewTracker()
	tr.Press(KeyLeft)
	tr.Press(KeyRight)
	tr.Release(KeyRight)
	tr.EndTick()

	for _, c := range []Code{KeyLeft, KeyRight} {
		if tr.IsPressed(c) || tr.IsReleased(c) {
			t.Errorf("edge for %d survived EndTick", c)
		}
	}
	if held := tr.Held(); len(held) != 1 || held[0] != KeyLeft {
		t.Errorf("Held = %v, want [%d]", held, KeyLeft)
	}

	tr.Press(KeyZ)
	tr.Press(KeyA)
	if held := tr.Held(); !slices.Equal(held, []Code{KeyA, KeyZ, KeyLeft}) {
		t.Errorf("Held = %v, want code order", held)
	}
}

func TestEvent_Pack(t *testing.T) {
	tests := []struct {
		ev   Event
		want uint64
	}{
		{Event{Code: KeyA, Pressed: true}, 1<<32 | 30},
		{Event{Code: KeyA, Pressed: false}, 30},
		{Event{Code: 0xffffffff, Pressed: true}, 1<<32 | 0xffffffff},
	}
	for _, tt := range tests {
		if got := tt.ev.Pack(); got != tt.want {
			t.Errorf("Pack(%+v) = %#x, want %#x", tt.ev, got, tt.want)
		}
	}
}

func TestRuneCode(t *testing.T) {
	tests := []struct {
		r     rune
		code  Code
		shift bool
		ok    bool
	}{
		{'a', KeyA, false, true},
		{'A', KeyA, true, true},
		{' ', KeySpace, false, true},
		{'?', KeySlash, true, true},
		{'1', Key1, false, true},
		{'é', 0, false, false},
	}
	for _, tt := range tests {
		code, shift, ok := RuneCode(tt.r)
		if code != tt.code || shift != tt.shift || ok != tt.ok {
			t.Errorf("RuneCode(%q) = %d, %v, %v; want %d, %v, %v", tt.r, code, shift, ok, tt.code, tt.shift, tt.ok)
		}
	}
}
