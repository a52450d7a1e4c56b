// Package memory provides the bounds-checked view over guest linear memory.
//
// A View is created per host call from the calling module's memory, so its
// bound always reflects the current size, including growth granted earlier
// in the same call. Every access either covers a range that lies fully
// inside memory or fails with an out_of_bounds error and leaves memory
// untouched.
package memory
