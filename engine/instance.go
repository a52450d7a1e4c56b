package engine

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/framehost/errors"
	"github.com/wippyai/framehost/memory"
)

// Instance is an instantiated guest. It is NOT thread-safe and should be
// used by a single goroutine.
type Instance struct {
	module *Module
	mod    api.Module
}

// Module returns the compiled module this instance was created from.
func (i *Instance) Module() *Module {
	return i.module
}

// Call invokes an exported function.
func (i *Instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseSchedule, "export", name)
	}
	return fn.Call(ctx, args...)
}

// Memory returns the guest's linear memory, or nil when it has none.
func (i *Instance) Memory() api.Memory {
	return memory.Linear(i.mod)
}

// Closed reports whether the instance was closed, for example by proc_exit.
func (i *Instance) Closed() bool {
	return i.mod.IsClosed()
}

// Close releases the instance.
func (i *Instance) Close(ctx context.Context) error {
	return i.mod.Close(ctx)
}
