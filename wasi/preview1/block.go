package preview1

import (
	"encoding/binary"
	"strings"

	"github.com/wippyai/framehost"
	"github.com/wippyai/framehost/errors"
)

// Memory is what the syscall layer needs from guest memory.
type Memory interface {
	framehost.Memory
	framehost.MemorySizer
}

// Block is an immutable ordered list of strings laid out the way preview1
// passes arguments and environment: an array of u32 pointers plus one
// buffer of NUL-terminated values.
type Block struct {
	entries []string
	size    uint32
}

// NewBlock builds a block from entries, in order.
func NewBlock(entries []string) Block {
	b := Block{entries: make([]string, len(entries))}
	copy(b.entries, entries)
	for _, e := range entries {
		b.size += uint32(len(e)) + 1
	}
	return b
}

// NewEnvironment builds an environment block. Every entry must have the
// form NAME=VALUE with a non-empty NAME and no NUL bytes.
func NewEnvironment(entries []string) (Block, error) {
	for _, e := range entries {
		if err := ValidateEnvEntry(e); err != nil {
			return Block{}, err
		}
	}
	return NewBlock(entries), nil
}

// ValidateEnvEntry checks a single NAME=VALUE entry.
func ValidateEnvEntry(e string) error {
	name, _, ok := strings.Cut(e, "=")
	if !ok || name == "" {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(e).
			Detail("environment entry %q is not NAME=VALUE", e).
			Build()
	}
	if strings.IndexByte(e, 0) >= 0 {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(e).
			Detail("environment entry %q contains NUL", e).
			Build()
	}
	return nil
}

// Count returns the number of entries.
func (b Block) Count() uint32 {
	return uint32(len(b.entries))
}

// BufSize returns the byte length of all entries including terminators.
func (b Block) BufSize() uint32 {
	return b.size
}

// Entries returns a copy of the entries.
func (b Block) Entries() []string {
	out := make([]string, len(b.entries))
	copy(out, b.entries)
	return out
}

// Bytes returns the NUL-terminated buffer layout.
func (b Block) Bytes() []byte {
	buf := make([]byte, 0, b.size)
	for _, e := range b.entries {
		buf = append(buf, e...)
		buf = append(buf, 0)
	}
	return buf
}

// WriteSizes stores the entry count at countPtr and the buffer size at sizePtr.
func (b Block) WriteSizes(mem Memory, countPtr, sizePtr uint32) Errno {
	if !fits(mem, countPtr, 4) || !fits(mem, sizePtr, 4) {
		return ErrnoFault
	}
	if mem.WriteU32(countPtr, b.Count()) != nil || mem.WriteU32(sizePtr, b.size) != nil {
		return ErrnoFault
	}
	return ErrnoSuccess
}

// WriteTo stores the pointer array at ptrs and the buffer at buf. Both
// ranges are checked before anything is written.
func (b Block) WriteTo(mem Memory, ptrs, buf uint32) Errno {
	if !fits(mem, ptrs, 4*b.Count()) || !fits(mem, buf, b.size) {
		return ErrnoFault
	}

	table := make([]byte, 4*len(b.entries))
	offset := buf
	for i, e := range b.entries {
		binary.LittleEndian.PutUint32(table[4*i:], offset)
		offset += uint32(len(e)) + 1
	}

	if mem.Write(ptrs, table) != nil || mem.Write(buf, b.Bytes()) != nil {
		return ErrnoFault
	}
	return ErrnoSuccess
}

func fits(mem Memory, offset, length uint32) bool {
	return uint64(offset)+uint64(length) <= uint64(mem.Size())
}
