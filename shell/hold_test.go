package shell

import (
	"slices"
	"testing"
	"time"

	"github.com/wippyai/framehost/input"
)

func TestHoldTracker(t *testing.T) {
	base := time.Unix(100, 0)
	h := newHoldTracker(100 * time.Millisecond)

	if !h.press(input.KeyA, base) {
		t.Fatal("first press should report the key as newly down")
	}
	if h.press(input.KeyA, base.Add(50*time.Millisecond)) {
		t.Fatal("repeat should not report a new press")
	}
	h.press(input.KeyUp, base.Add(20*time.Millisecond))

	if got := h.expire(base.Add(120 * time.Millisecond)); len(got) != 1 || got[0] != input.KeyUp {
		t.Fatalf("expire = %v, want [KeyUp]", got)
	}
	if len(h.last) != 1 {
		t.Fatalf("held = %d, want 1", len(h.last))
	}

	h.press(input.KeyZ, base.Add(130*time.Millisecond))
	got := h.expire(base.Add(time.Second))
	if !slices.Equal(got, []input.Code{input.KeyA, input.KeyZ}) {
		t.Fatalf("expire = %v, want sorted [KeyA KeyZ]", got)
	}
	if len(h.last) != 0 {
		t.Fatalf("held = %d after expiry", len(h.last))
	}
	if !h.press(input.KeyA, base.Add(2*time.Second)) {
		t.Error("press after release should be new again")
	}
}
