package guestwasm

import (
	"bytes"
	"slices"
)

// ValType is a core value type.
type ValType byte

const (
	I32 ValType = 0x7f
	I64 ValType = 0x7e
	F32 ValType = 0x7d
	F64 ValType = 0x7c
)

// I32s returns n copies of I32, for long parameter lists.
func I32s(n int) []ValType {
	out := make([]ValType, n)
	for i := range out {
		out[i] = I32
	}
	return out
}

const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10
	sectionData     = 11

	kindFunc   = 0x00
	kindMemory = 0x02
)

type funcType struct {
	params  []ValType
	results []ValType
}

type importFunc struct {
	module string
	name   string
	typ    uint32
}

type function struct {
	export string
	typ    uint32
	locals []ValType
	body   []byte
}

type dataSegment struct {
	offset uint32
	data   []byte
}

// Builder accumulates a module. Imports must be declared before the first
// defined function, because defined functions are indexed after imports.
type Builder struct {
	types     []funcType
	imports   []importFunc
	funcs     []function
	data      []dataSegment
	memMin    uint32
	memMax    uint32
	hasMemory bool
	hasMax    bool
}

// New creates an empty builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) typeIndex(params, results []ValType) uint32 {
	for i, t := range b.types {
		if slices.Equal(t.params, params) && slices.Equal(t.results, results) {
			return uint32(i)
		}
	}
	b.types = append(b.types, funcType{params: params, results: results})
	return uint32(len(b.types) - 1)
}

// Import declares a function import and returns its function index.
func (b *Builder) Import(module, name string, params, results []ValType) uint32 {
	if len(b.funcs) > 0 {
		panic("guestwasm: import declared after a defined function")
	}
	b.imports = append(b.imports, importFunc{
		module: module,
		name:   name,
		typ:    b.typeIndex(params, results),
	})
	return uint32(len(b.imports) - 1)
}

// Memory declares linear memory of min pages, exported as "memory".
// A max of 0 leaves the memory unbounded.
func (b *Builder) Memory(min, max uint32) *Builder {
	b.hasMemory = true
	b.memMin = min
	b.memMax = max
	b.hasMax = max > 0
	return b
}

// Func defines a function and returns its index. An empty export name
// keeps the function internal.
func (b *Builder) Func(export string, params, results, locals []ValType, code *Code) uint32 {
	b.funcs = append(b.funcs, function{
		export: export,
		typ:    b.typeIndex(params, results),
		locals: locals,
		body:   code.Bytes(),
	})
	return uint32(len(b.imports) + len(b.funcs) - 1)
}

// NextFunc returns the index the next defined function will receive, for
// functions that call each other.
func (b *Builder) NextFunc() uint32 {
	return uint32(len(b.imports) + len(b.funcs))
}

// Data places bytes at offset when the module is instantiated.
func (b *Builder) Data(offset uint32, data []byte) *Builder {
	b.data = append(b.data, dataSegment{offset: offset, data: data})
	return b
}

// Bytes encodes the module.
func (b *Builder) Bytes() []byte {
	var out bytes.Buffer
	out.Write([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00})

	if len(b.types) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.types)))
		for _, t := range b.types {
			sec.WriteByte(0x60)
			writeValTypes(&sec, t.params)
			writeValTypes(&sec, t.results)
		}
		writeSection(&out, sectionType, sec.Bytes())
	}

	if len(b.imports) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.imports)))
		for _, imp := range b.imports {
			writeName(&sec, imp.module)
			writeName(&sec, imp.name)
			sec.WriteByte(kindFunc)
			writeU32(&sec, imp.typ)
		}
		writeSection(&out, sectionImport, sec.Bytes())
	}

	if len(b.funcs) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.funcs)))
		for _, f := range b.funcs {
			writeU32(&sec, f.typ)
		}
		writeSection(&out, sectionFunction, sec.Bytes())
	}

	if b.hasMemory {
		var sec bytes.Buffer
		writeU32(&sec, 1)
		if b.hasMax {
			sec.WriteByte(0x01)
			writeU32(&sec, b.memMin)
			writeU32(&sec, b.memMax)
		} else {
			sec.WriteByte(0x00)
			writeU32(&sec, b.memMin)
		}
		writeSection(&out, sectionMemory, sec.Bytes())
	}

	var exports bytes.Buffer
	count := uint32(0)
	if b.hasMemory {
		writeName(&exports, "memory")
		exports.WriteByte(kindMemory)
		writeU32(&exports, 0)
		count++
	}
	for i, f := range b.funcs {
		if f.export == "" {
			continue
		}
		writeName(&exports, f.export)
		exports.WriteByte(kindFunc)
		writeU32(&exports, uint32(len(b.imports)+i))
		count++
	}
	if count > 0 {
		var sec bytes.Buffer
		writeU32(&sec, count)
		sec.Write(exports.Bytes())
		writeSection(&out, sectionExport, sec.Bytes())
	}

	if len(b.funcs) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.funcs)))
		for _, f := range b.funcs {
			var body bytes.Buffer
			writeU32(&body, uint32(len(f.locals)))
			for _, l := range f.locals {
				writeU32(&body, 1)
				body.WriteByte(byte(l))
			}
			body.Write(f.body)
			body.WriteByte(opEnd)
			writeVec(&sec, body.Bytes())
		}
		writeSection(&out, sectionCode, sec.Bytes())
	}

	if len(b.data) > 0 {
		var sec bytes.Buffer
		writeU32(&sec, uint32(len(b.data)))
		for _, d := range b.data {
			sec.WriteByte(0x00)
			sec.WriteByte(opI32Const)
			writeS64(&sec, int64(int32(d.offset)))
			sec.WriteByte(opEnd)
			writeVec(&sec, d.data)
		}
		writeSection(&out, sectionData, sec.Bytes())
	}

	return out.Bytes()
}

func writeSection(w *bytes.Buffer, id byte, data []byte) {
	w.WriteByte(id)
	writeVec(w, data)
}

func writeValTypes(w *bytes.Buffer, types []ValType) {
	writeU32(w, uint32(len(types)))
	for _, t := range types {
		w.WriteByte(byte(t))
	}
}
