// Package runtime hosts one guest per Session and drives it frame by frame.
//
// # Quick Start
//
//	ctx := context.Background()
//	sess, err := runtime.New(ctx, runtime.Options{Width: 320, Height: 200})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close(ctx)
//
//	if err := sess.Load(ctx, wasmBytes); err != nil {
//	    log.Fatal(err) // *errors.MissingImportsError for unresolved imports
//	}
//	if err := sess.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	err = sess.Run(ctx, time.Second/60)
//
// # Lifecycle
//
// A session moves through three states:
//
//	Loading  - created; Load and Start are allowed
//	Running  - the start export returned; each Tick calls update
//	Stopped  - proc_exit or a trap; terminal, further ticks do nothing
//
// A load failure leaves the session in Loading with the cause in Err.
//
// # Ticks
//
// Tick applies queued input, calls update(pointer_x, pointer_y) when the
// guest exports it, then clears every key edge. A capability fault (a bad
// pointer passed to blit_rgba or get_dimensions) aborts only that tick: the
// error is returned and counted, and the session keeps running. A trap or
// any other failure stops the session with exit code 1.
//
// # Threading
//
// Load, Start, Tick, Run and Close must be called from one goroutine.
// PressKey, ReleaseKey and SetPointer may be called from any goroutine;
// they queue input that the next tick applies.
package runtime
