// Package errors provides structured error types for the frame host.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes context: the guest import involved, a detail
// message and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCapability, errors.KindOutOfBounds).
//		Import("agave", "blit_rgba").
//		Detail("pixel buffer at %d exceeds memory", ptr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseMemory, offset, length, size)
//	err := errors.GuestExit(1)
//
// A guest binary that requests imports the host does not declare fails with
// a MissingImportsError listing every offender at once.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
