package preview1

import (
	"context"
	"io"
	"math"
	"time"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/framehost/errors"
	"github.com/wippyai/framehost/memory"
)

const (
	clockRealtime  = 0
	clockMonotonic = 1
	clockProcess   = 2
	clockThread    = 3
)

func view(mod api.Module) *memory.View {
	return memory.Of(mod, errors.PhaseSyscall)
}

func success(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = uint64(ErrnoSuccess)
}

func badf(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = uint64(ErrnoBadf)
}

// zeroResult writes a u32 zero through the pointer parameter at index ptr.
func zeroResult(ptr int) api.GoModuleFunc {
	return func(_ context.Context, mod api.Module, stack []uint64) {
		if view(mod).WriteU32(api.DecodeU32(stack[ptr]), 0) != nil {
			stack[0] = uint64(ErrnoFault)
			return
		}
		stack[0] = uint64(ErrnoSuccess)
	}
}

// zeroResult64 writes a u64 zero through the pointer parameter at index ptr.
func zeroResult64(ptr int) api.GoModuleFunc {
	return func(_ context.Context, mod api.Module, stack []uint64) {
		if view(mod).WriteU64(api.DecodeU32(stack[ptr]), 0) != nil {
			stack[0] = uint64(ErrnoFault)
			return
		}
		stack[0] = uint64(ErrnoSuccess)
	}
}

// zeroRecord fills size bytes at the pointer parameter at index ptr with zeros.
func zeroRecord(ptr int, size uint32) api.GoModuleFunc {
	return func(_ context.Context, mod api.Module, stack []uint64) {
		if view(mod).Write(api.DecodeU32(stack[ptr]), make([]byte, size)) != nil {
			stack[0] = uint64(ErrnoFault)
			return
		}
		stack[0] = uint64(ErrnoSuccess)
	}
}

func (h *Host) argsGet(_ context.Context, mod api.Module, stack []uint64) {
	stack[0] = uint64(h.args.WriteTo(view(mod), api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
}

func (h *Host) argsSizesGet(_ context.Context, mod api.Module, stack []uint64) {
	stack[0] = uint64(h.args.WriteSizes(view(mod), api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
}

func (h *Host) environGet(_ context.Context, mod api.Module, stack []uint64) {
	stack[0] = uint64(h.env.WriteTo(view(mod), api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
}

func (h *Host) environSizesGet(_ context.Context, mod api.Module, stack []uint64) {
	stack[0] = uint64(h.env.WriteSizes(view(mod), api.DecodeU32(stack[0]), api.DecodeU32(stack[1])))
}

func (h *Host) clockResGet(_ context.Context, mod api.Module, stack []uint64) {
	id, resultPtr := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	if id > clockThread {
		stack[0] = uint64(ErrnoInval)
		return
	}
	if view(mod).WriteU64(resultPtr, uint64(time.Millisecond)) != nil {
		stack[0] = uint64(ErrnoFault)
		return
	}
	stack[0] = uint64(ErrnoSuccess)
}

func (h *Host) clockTimeGet(_ context.Context, mod api.Module, stack []uint64) {
	id, resultPtr := api.DecodeU32(stack[0]), api.DecodeU32(stack[2])
	if id > clockThread {
		stack[0] = uint64(ErrnoInval)
		return
	}
	if view(mod).WriteU64(resultPtr, uint64(h.clock().Nanoseconds())) != nil {
		stack[0] = uint64(ErrnoFault)
		return
	}
	stack[0] = uint64(ErrnoSuccess)
}

func (h *Host) randomGet(_ context.Context, mod api.Module, stack []uint64) {
	buf, length := api.DecodeU32(stack[0]), api.DecodeU32(stack[1])
	v := view(mod)
	if !fits(v, buf, length) {
		stack[0] = uint64(ErrnoFault)
		return
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(h.random, data); err != nil {
		stack[0] = uint64(ErrnoIo)
		return
	}
	if v.Write(buf, data) != nil {
		stack[0] = uint64(ErrnoFault)
		return
	}
	stack[0] = uint64(ErrnoSuccess)
}

func (h *Host) fdWrite(_ context.Context, mod api.Module, stack []uint64) {
	fd := api.DecodeU32(stack[0])
	iovs, count := api.DecodeU32(stack[1]), api.DecodeU32(stack[2])
	resultPtr := api.DecodeU32(stack[3])
	h.write(mod, fd, iovs, count, resultPtr)
	stack[0] = uint64(ErrnoSuccess)
}

func (h *Host) fdPwrite(_ context.Context, mod api.Module, stack []uint64) {
	fd := api.DecodeU32(stack[0])
	iovs, count := api.DecodeU32(stack[1]), api.DecodeU32(stack[2])
	resultPtr := api.DecodeU32(stack[4])
	h.write(mod, fd, iovs, count, resultPtr)
	stack[0] = uint64(ErrnoSuccess)
}

// write gathers the iovecs and routes them by descriptor. It stops at the
// first unreadable iovec and reports what was consumed up to there.
func (h *Host) write(mod api.Module, fd, iovs, count, resultPtr uint32) {
	v := view(mod)

	var out *lineWriter
	switch fd {
	case fdStdout:
		out = h.stdout
	case fdStderr:
		out = h.stderr
	}

	var written uint32
	for i := uint32(0); i < count; i++ {
		iovPtr, ok := iovecAt(iovs, i)
		if !ok {
			break
		}
		offset, err := v.ReadU32(iovPtr)
		if err != nil {
			break
		}
		length, err := v.ReadU32(iovPtr + 4)
		if err != nil {
			break
		}
		data, err := v.Read(offset, length)
		if err != nil {
			break
		}
		if out != nil {
			out.Write(data)
		}
		written = addSaturating(written, length)
	}
	if out == nil && written > 0 {
		Logger().Debug("discarded write", zap.Uint32("fd", fd), zap.Uint32("bytes", written))
	}

	if err := v.WriteU32(resultPtr, written); err != nil {
		Logger().Debug("fd_write result pointer out of bounds", zap.Uint32("fd", fd), zap.Error(err))
	}
}

// iovecAt returns the address of the i-th iovec, or false when the 8-byte
// record would extend past the 32-bit address space.
func iovecAt(iovs, i uint32) (uint32, bool) {
	ptr := uint64(iovs) + uint64(i)*8
	if ptr+8 > math.MaxUint32+1 {
		return 0, false
	}
	return uint32(ptr), true
}

func addSaturating(a, b uint32) uint32 {
	if sum := uint64(a) + uint64(b); sum <= math.MaxUint32 {
		return uint32(sum)
	}
	return math.MaxUint32
}

func (h *Host) pathOpen(_ context.Context, mod api.Module, stack []uint64) {
	pathPtr, pathLen := api.DecodeU32(stack[2]), api.DecodeU32(stack[3])
	resultPtr := api.DecodeU32(stack[8])
	v := view(mod)

	if ce := Logger().Check(zap.DebugLevel, "path_open"); ce != nil {
		path, _ := v.ReadString(pathPtr, pathLen)
		ce.Write(zap.String("path", path), zap.Int("fd", OpenHandle))
	}

	if v.WriteU32(resultPtr, OpenHandle) != nil {
		stack[0] = uint64(ErrnoFault)
		return
	}
	stack[0] = uint64(ErrnoSuccess)
}

func (h *Host) procExit(ctx context.Context, mod api.Module, stack []uint64) {
	code := api.DecodeU32(stack[0])
	h.Flush()
	Logger().Info("guest exit", zap.Uint32("code", code))

	_ = mod.CloseWithExitCode(ctx, code)
	// nothing after proc_exit may run; toolchains emit unreachable after it
	panic(sys.NewExitError(code))
}
