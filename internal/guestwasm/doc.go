// Package guestwasm assembles small WebAssembly core modules in memory.
//
// It covers the subset a frame guest needs: function imports, one linear
// memory, exported functions with locals, and active data segments. Tests
// use it to build guests with exactly the imports and exports they exercise,
// and the CLI uses it for the built-in demo guest.
//
//	b := guestwasm.New()
//	fill := b.Import("agave", "fill_rectangle", guestwasm.I32s(8), nil)
//	b.Memory(1, 0)
//	b.Func("update", guestwasm.I32s(2), nil, nil, guestwasm.NewCode().
//		LocalGet(0).LocalGet(1).I32Const(4).I32Const(4).
//		I32Const(255).I32Const(0).I32Const(0).I32Const(255).
//		Call(fill))
//	bin := b.Bytes()
package guestwasm
