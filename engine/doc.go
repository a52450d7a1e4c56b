// Package engine loads a single guest module against a static import table.
//
// Host capabilities are registered up front as HostModule values; each one
// is instantiated as a wazero host module and its functions are recorded in
// the ImportTable with their core signatures. Load then compiles the guest
// and checks every import it declares:
//
//   - a function import that is not in the table is missing
//   - a function import whose params or results differ is a mismatch
//   - any memory import is missing, since the host exports none
//
// All offenders are reported together in one *errors.MissingImportsError
// and no instance is created. There is no lazy binding.
//
// Instantiate never runs the guest's start function. The caller invokes
// exports explicitly through Instance.Call, which keeps the scheduler in
// control of when _start and update execute.
//
// # Usage
//
//	eng, err := engine.New(ctx, &engine.Config{MemoryLimitPages: 256})
//	if err != nil {
//	    return err
//	}
//	defer eng.Close(ctx)
//
//	if err := eng.Register(ctx, wasiHost); err != nil {
//	    return err
//	}
//	mod, err := eng.Load(ctx, wasmBytes)
//	if err != nil {
//	    return err // *errors.MissingImportsError lists every bad import
//	}
//	inst, err := mod.Instantiate(ctx, nil)
//
// # Logging
//
// The package logs through a zap logger that is a no-op until SetLogger
// is called.
package engine
