// Package shell provides the front ends that own the display and input
// devices around a runtime.Session.
//
// The terminal shell is a bubbletea program. It renders the surface with
// upper half blocks, two surface rows per terminal row, coloured through
// termenv at whatever profile the terminal supports. Key presses are queued
// on the session; terminals report no releases, so a key is released once
// it has not repeated for the configured hold window. Mouse motion sets the
// pointer passed to update.
//
// The headless runner ticks a fixed number of frames as fast as allowed and
// can write the final surface as PNG.
package shell
