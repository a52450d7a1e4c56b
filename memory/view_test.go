package memory

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/framehost"
	"github.com/wippyai/framehost/errors"
)

// memoryWASM is a minimal module with 1 page of memory (max 2) exported as "memory"
var memoryWASM = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x04, 0x01, 0x01, 0x01, 0x02, // memory section: min 1, max 2
	0x07, 0x0a, 0x01, // export section: 10 bytes, 1 export
	0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, // "memory"
	0x02, 0x00, // kind: memory, index 0
}

func newTestMemory(t *testing.T) api.Memory {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, memoryWASM)
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}
	return mod.Memory()
}

var outOfBounds = &errors.Error{Phase: errors.PhaseMemory, Kind: errors.KindOutOfBounds}

func TestView_ReadWriteRoundTrip(t *testing.T) {
	v := New(newTestMemory(t))

	tests := []struct {
		name   string
		offset uint32
		data   []byte
	}{
		{"start", 0, []byte{1, 2, 3, 4}},
		{"middle", 1000, []byte("hello, guest")},
		{"last byte", framehost.PageSize - 1, []byte{0xff}},
		{"tail", framehost.PageSize - 8, []byte{8, 7, 6, 5, 4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.Write(tt.offset, tt.data); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			got, err := v.Read(tt.offset, uint32(len(tt.data)))
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Errorf("Read = %v, want %v", got, tt.data)
			}
		})
	}
}

func TestView_OutOfBoundsLeavesMemoryUnchanged(t *testing.T) {
	mem := newTestMemory(t)
	v := New(mem)

	edge := uint32(framehost.PageSize - 4)
	if err := v.Write(edge, []byte{9, 9, 9, 9}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	err := v.Write(edge, []byte{1, 2, 3, 4, 5})
	if !stderrors.Is(err, outOfBounds) {
		t.Fatalf("expected out_of_bounds, got %v", err)
	}

	got, _ := v.Read(edge, 4)
	if !bytes.Equal(got, []byte{9, 9, 9, 9}) {
		t.Errorf("memory mutated by failed write: %v", got)
	}

	if _, err := v.Read(edge, 5); !stderrors.Is(err, outOfBounds) {
		t.Errorf("Read past end: expected out_of_bounds, got %v", err)
	}
	if _, err := v.ReadU32(framehost.PageSize - 3); !stderrors.Is(err, outOfBounds) {
		t.Errorf("ReadU32 past end: expected out_of_bounds, got %v", err)
	}
	if err := v.WriteU64(framehost.PageSize - 7, 1); !stderrors.Is(err, outOfBounds) {
		t.Errorf("WriteU64 past end: expected out_of_bounds, got %v", err)
	}
	if _, err := v.Read(0xffffffff, 2); !stderrors.Is(err, outOfBounds) {
		t.Errorf("wrapping range: expected out_of_bounds, got %v", err)
	}
}

func TestView_Integers(t *testing.T) {
	v := New(newTestMemory(t))

	if err := v.WriteU32(16, 0xdeadbeef); err != nil {
		t.Fatalf("WriteU32 failed: %v", err)
	}
	raw, _ := v.Read(16, 4)
	if !bytes.Equal(raw, []byte{0xef, 0xbe, 0xad, 0xde}) {
		t.Errorf("WriteU32 not little-endian: %x", raw)
	}
	u32, err := v.ReadU32(16)
	if err != nil || u32 != 0xdeadbeef {
		t.Errorf("ReadU32 = %x, %v", u32, err)
	}

	if err := v.WriteU64(32, 0x0102030405060708); err != nil {
		t.Fatalf("WriteU64 failed: %v", err)
	}
	u64, err := v.ReadU64(32)
	if err != nil || u64 != 0x0102030405060708 {
		t.Errorf("ReadU64 = %x, %v", u64, err)
	}
}

func TestView_ReadString(t *testing.T) {
	v := New(newTestMemory(t))
	_ = v.Write(64, []byte("PATH=/usr/bin\x00"))

	s, err := v.ReadString(64, 13)
	if err != nil {
		t.Fatalf("ReadString failed: %v", err)
	}
	if s != "PATH=/usr/bin" {
		t.Errorf("ReadString = %q", s)
	}
}

func TestView_GrowMovesBound(t *testing.T) {
	v := New(newTestMemory(t))
	offset := uint32(framehost.PageSize + 100)

	if err := v.WriteU32(offset, 7); !stderrors.Is(err, outOfBounds) {
		t.Fatalf("expected out_of_bounds before growth, got %v", err)
	}

	prev, ok := v.Grow(1)
	if !ok || prev != 1 {
		t.Fatalf("Grow(1) = %d, %v; want 1, true", prev, ok)
	}
	if v.Pages() != 2 {
		t.Errorf("Pages = %d, want 2", v.Pages())
	}
	if err := v.WriteU32(offset, 7); err != nil {
		t.Errorf("write after growth failed: %v", err)
	}
	if err := v.Write(2*framehost.PageSize, []byte{1}); !stderrors.Is(err, outOfBounds) {
		t.Errorf("one byte past new bound: expected out_of_bounds, got %v", err)
	}

	if _, ok := v.Grow(1); ok {
		t.Error("Grow past declared maximum should fail")
	}
	if v.Pages() != 2 {
		t.Errorf("failed growth changed size to %d pages", v.Pages())
	}
}

func TestView_NilMemory(t *testing.T) {
	v := New(nil)
	if v.Size() != 0 {
		t.Errorf("Size = %d, want 0", v.Size())
	}
	if _, err := v.Read(0, 1); !stderrors.Is(err, outOfBounds) {
		t.Errorf("expected out_of_bounds, got %v", err)
	}
	if _, ok := v.Grow(1); ok {
		t.Error("Grow on nil memory should fail")
	}
}

func TestOf_Phase(t *testing.T) {
	v := Of(nil, errors.PhaseSyscall)
	_, err := v.Read(0, 1)
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if e.Phase != errors.PhaseSyscall {
		t.Errorf("Phase = %v, want syscall", e.Phase)
	}
}

func TestOf_ModuleWithoutMemory(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { _ = rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("failed to instantiate: %v", err)
	}
	if Linear(mod) != nil {
		t.Fatal("Linear should be nil for a module without memory")
	}

	v := Of(mod, errors.PhaseSyscall)
	if v.Size() != 0 || v.Pages() != 0 {
		t.Errorf("Size = %d, Pages = %d, want 0", v.Size(), v.Pages())
	}
	if err := v.WriteU32(0, 1); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseSyscall, Kind: errors.KindOutOfBounds}) {
		t.Errorf("expected syscall out_of_bounds, got %v", err)
	}
	if _, ok := v.Grow(1); ok {
		t.Error("Grow without memory should fail")
	}
	if New(mod.Memory()).Size() != 0 {
		t.Error("New should treat the module's missing memory as nil")
	}
}
