// Package framehost hosts a single sandboxed WebAssembly guest and drives it
// once per display frame.
//
// The guest sees a narrow, statically declared import surface: a subset of
// wasi_snapshot_preview1 that lets ordinary toolchain output start and log,
// and the "agave" capability namespace for drawing, time, input queries and
// memory growth. Nothing else links.
//
// # Architecture Overview
//
//	framehost/          Root package with the guest Memory interfaces
//	├── memory/         Bounds-checked view over guest linear memory
//	├── surface/        RGBA drawing surface and raster primitives
//	├── input/          Key level, edge and history tracking
//	├── wasi/preview1/  Syscall emulation subset (wasi_snapshot_preview1)
//	├── capability/     Drawing, clock, input and memory growth (agave)
//	├── engine/         wazero integration, import table, module loading
//	├── runtime/        Session aggregate and per-frame scheduler
//	├── config/         YAML configuration
//	├── shell/          Terminal and headless embedding shells
//	├── errors/         Structured error types
//	└── cmd/framehost/  Command line host
//
// # Quick Start
//
//	sess, err := runtime.New(ctx, runtime.Options{Width: 320, Height: 200})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sess.Close(ctx)
//
//	if err := sess.Load(ctx, wasmBytes); err != nil {
//	    log.Fatal(err)
//	}
//	if err := sess.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	sess.Run(ctx, time.Second/60)
//
// # Execution Model
//
// A session is strictly single-threaded. The guest's update export is the
// only execution window per tick. Input reported between ticks is queued and
// applied at the start of the next one, so key levels and pressed/released
// edges are stable for the whole update call; edges are cleared when the
// tick ends.
//
// # Memory Model
//
// Guest memory grows through the grow_memory capability or the guest's own
// memory.grow and never shrinks, so an offset that was valid once stays
// valid for the session.
package framehost
