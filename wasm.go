package framehost

// Memory is the bounds-checked view of guest linear memory that every
// host module reads and writes through.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
	ReadString(offset uint32, length uint32) (string, error)
}

// MemorySizer provides the current size of guest linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// MemoryGrower grows guest linear memory by whole pages (64KiB each).
type MemoryGrower interface {
	// Grow returns the page count before growth. ok is false when the
	// request exceeds the memory's limit; memory is unchanged then.
	Grow(pages uint32) (previous uint32, ok bool)
}

// PageSize is the WebAssembly page size in bytes.
const PageSize = 65536
