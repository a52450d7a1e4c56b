// Package input tracks keyboard state on behalf of the guest.
//
// A Tracker holds three views of the keyboard:
//
//   - level: whether a key is currently held
//   - edges: whether a key went down or up since the last tick boundary
//   - history: the last HistoryCapacity transitions in arrival order
//
// Shells feed transitions with Press and Release between ticks; the
// scheduler calls EndTick after the guest's update returns, which clears
// every edge flag. Several presses of one key within a tick therefore
// surface as a single pressed edge, while each one still lands in history.
//
// Key codes follow the Linux input event numbering (KEY_A = 30), which is
// what guests built against the agave library expect.
package input
