// Package capability implements the agave host namespace: drawing on the
// session surface, the session clock, memory growth and input queries.
//
// The table is declared in agave.wit and lowered to core signatures at
// start-up; kebab-case WIT names become snake_case import names. Every
// declaration must have a handler or registration fails.
//
// Coordinates and colour channels arrive as i32. Channels are clamped to
// 0..255. Calls with no guest-visible error code (blit_rgba,
// get_dimensions) abort the current tick on a bad pointer by panicking with
// an *errors.Error in the capability phase; wazero surfaces it as the
// error of the export call that was running.
package capability
