package memory

import (
	"reflect"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/framehost"
	"github.com/wippyai/framehost/errors"
)

// View adapts wazero api.Memory to framehost.Memory.
type View struct {
	mem   api.Memory
	phase errors.Phase
}

var _ framehost.Memory = (*View)(nil)

// New wraps mem. A nil memory yields a view on which every access fails,
// which is what a guest without linear memory observes.
func New(mem api.Memory) *View {
	return &View{mem: present(mem), phase: errors.PhaseMemory}
}

// Of wraps the memory of mod, attributing faults to phase.
func Of(mod api.Module, phase errors.Phase) *View {
	return &View{mem: Linear(mod), phase: phase}
}

// Linear returns the linear memory of mod, or nil when mod has none.
// wazero reports a missing memory as a nil pointer inside a non-nil
// api.Memory, so callers must not compare mod.Memory() against nil.
func Linear(mod api.Module) api.Memory {
	if mod == nil {
		return nil
	}
	return present(mod.Memory())
}

func present(mem api.Memory) api.Memory {
	if mem == nil {
		return nil
	}
	if v := reflect.ValueOf(mem); v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}
	return mem
}

// Size returns the current memory size in bytes.
func (v *View) Size() uint32 {
	if v.mem == nil {
		return 0
	}
	return v.mem.Size()
}

// Pages returns the current memory size in pages.
func (v *View) Pages() uint32 {
	return v.Size() / framehost.PageSize
}

// Grow extends memory by delta pages and returns the previous page count.
// The view's bound moves with the memory before Grow returns.
func (v *View) Grow(delta uint32) (uint32, bool) {
	if v.mem == nil {
		return 0, false
	}
	return v.mem.Grow(delta)
}

func (v *View) check(offset, length uint32) error {
	size := v.Size()
	if uint64(offset)+uint64(length) > uint64(size) {
		return errors.OutOfBounds(v.phase, offset, length, size)
	}
	return nil
}

// Read returns a copy of [offset, offset+length).
func (v *View) Read(offset uint32, length uint32) ([]byte, error) {
	if err := v.check(offset, length); err != nil {
		return nil, err
	}
	if length == 0 {
		return []byte{}, nil
	}
	data, ok := v.mem.Read(offset, length)
	if !ok {
		return nil, errors.OutOfBounds(v.phase, offset, length, v.Size())
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write copies data to offset. Nothing is written unless the whole range fits.
func (v *View) Write(offset uint32, data []byte) error {
	if err := v.check(offset, uint32(len(data))); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if !v.mem.Write(offset, data) {
		return errors.OutOfBounds(v.phase, offset, uint32(len(data)), v.Size())
	}
	return nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (v *View) ReadU32(offset uint32) (uint32, error) {
	if err := v.check(offset, 4); err != nil {
		return 0, err
	}
	val, ok := v.mem.ReadUint32Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(v.phase, offset, 4, v.Size())
	}
	return val, nil
}

// ReadU64 reads an unsigned 64-bit little-endian value.
func (v *View) ReadU64(offset uint32) (uint64, error) {
	if err := v.check(offset, 8); err != nil {
		return 0, err
	}
	val, ok := v.mem.ReadUint64Le(offset)
	if !ok {
		return 0, errors.OutOfBounds(v.phase, offset, 8, v.Size())
	}
	return val, nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (v *View) WriteU32(offset uint32, value uint32) error {
	if err := v.check(offset, 4); err != nil {
		return err
	}
	if !v.mem.WriteUint32Le(offset, value) {
		return errors.OutOfBounds(v.phase, offset, 4, v.Size())
	}
	return nil
}

// WriteU64 writes an unsigned 64-bit little-endian value.
func (v *View) WriteU64(offset uint32, value uint64) error {
	if err := v.check(offset, 8); err != nil {
		return err
	}
	if !v.mem.WriteUint64Le(offset, value) {
		return errors.OutOfBounds(v.phase, offset, 8, v.Size())
	}
	return nil
}

// ReadString decodes [offset, offset+length) as text. Invalid UTF-8 is kept
// byte for byte; guests write whatever their runtime produces.
func (v *View) ReadString(offset uint32, length uint32) (string, error) {
	data, err := v.Read(offset, length)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
