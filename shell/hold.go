package shell

import (
	"slices"
	"time"

	"github.com/wippyai/framehost/input"
)

// holdTracker synthesizes releases for terminals, which only report
// presses and auto-repeats.
type holdTracker struct {
	hold time.Duration
	last map[input.Code]time.Time
}

func newHoldTracker(hold time.Duration) *holdTracker {
	return &holdTracker{hold: hold, last: make(map[input.Code]time.Time)}
}

// press records a press or repeat and reports whether the key was up.
func (h *holdTracker) press(code input.Code, now time.Time) bool {
	_, held := h.last[code]
	h.last[code] = now
	return !held
}

// expire returns the keys whose last press is older than the hold window,
// in code order, and forgets them.
func (h *holdTracker) expire(now time.Time) []input.Code {
	var out []input.Code
	for code, t := range h.last {
		if now.Sub(t) >= h.hold {
			out = append(out, code)
			delete(h.last, code)
		}
	}
	slices.Sort(out)
	return out
}
