package guestwasm

import "bytes"

const (
	opUnreachable = 0x00
	opBlock       = 0x02
	opLoop        = 0x03
	opIf          = 0x04
	opElse        = 0x05
	opEnd         = 0x0b
	opBr          = 0x0c
	opBrIf        = 0x0d
	opReturn      = 0x0f
	opCall        = 0x10
	opDrop        = 0x1a
	opSelect      = 0x1b
	opLocalGet    = 0x20
	opLocalSet    = 0x21
	opLocalTee    = 0x22
	opI32Load     = 0x28
	opI64Load     = 0x29
	opI32Load8U   = 0x2d
	opI32Store    = 0x36
	opI64Store    = 0x37
	opI32Store8   = 0x3a
	opMemorySize  = 0x3f
	opMemoryGrow  = 0x40
	opI32Const    = 0x41
	opI64Const    = 0x42
	opI32Eqz      = 0x45
	opI32Eq       = 0x46
	opI32Ne       = 0x47
	opI32LtS      = 0x48
	opI32LtU      = 0x49
	opI32GtS      = 0x4a
	opI32GtU      = 0x4b
	opI32LeS      = 0x4c
	opI32GeS      = 0x4e
	opI64Eqz      = 0x50
	opI32Add      = 0x6a
	opI32Sub      = 0x6b
	opI32Mul      = 0x6c
	opI32DivS     = 0x6d
	opI32DivU     = 0x6e
	opI32RemS     = 0x6f
	opI32RemU     = 0x70
	opI32And      = 0x71
	opI32Or       = 0x72
	opI32Xor      = 0x73
	opI32Shl      = 0x74
	opI32ShrS     = 0x75
	opI32ShrU     = 0x76
	opI64And      = 0x83
	opI64ShrU     = 0x88
	opI32WrapI64  = 0xa7
	opI64ExtendU  = 0xad

	blockEmpty = 0x40
)

// Code is a function body under construction. The closing end of the
// function is appended by the builder.
type Code struct {
	buf bytes.Buffer
}

// NewCode starts an empty body.
func NewCode() *Code {
	return &Code{}
}

// Bytes returns the encoded instructions.
func (c *Code) Bytes() []byte {
	return c.buf.Bytes()
}

func (c *Code) op(b byte) *Code {
	c.buf.WriteByte(b)
	return c
}

func (c *Code) opU32(b byte, v uint32) *Code {
	c.buf.WriteByte(b)
	writeU32(&c.buf, v)
	return c
}

func (c *Code) memarg(b byte, align, offset uint32) *Code {
	c.buf.WriteByte(b)
	writeU32(&c.buf, align)
	writeU32(&c.buf, offset)
	return c
}

// Raw appends already-encoded instructions.
func (c *Code) Raw(b ...byte) *Code {
	c.buf.Write(b)
	return c
}

func (c *Code) Unreachable() *Code { return c.op(opUnreachable) }
func (c *Code) Return() *Code { return c.op(opReturn) }
func (c *Code) Drop() *Code { return c.op(opDrop) }
func (c *Code) Select() *Code { return c.op(opSelect) }
func (c *Code) End() *Code { return c.op(opEnd) }
func (c *Code) Else() *Code { return c.op(opElse) }

// Block opens a block with no result.
func (c *Code) Block() *Code { return c.op(opBlock).op(blockEmpty) }

// Loop opens a loop with no result.
func (c *Code) Loop() *Code { return c.op(opLoop).op(blockEmpty) }

// If opens a conditional with no result.
func (c *Code) If() *Code { return c.op(opIf).op(blockEmpty) }

func (c *Code) Br(depth uint32) *Code { return c.opU32(opBr, depth) }
func (c *Code) BrIf(depth uint32) *Code { return c.opU32(opBrIf, depth) }
func (c *Code) Call(fn uint32) *Code { return c.opU32(opCall, fn) }

func (c *Code) LocalGet(i uint32) *Code { return c.opU32(opLocalGet, i) }
func (c *Code) LocalSet(i uint32) *Code { return c.opU32(opLocalSet, i) }
func (c *Code) LocalTee(i uint32) *Code { return c.opU32(opLocalTee, i) }

// I32Const pushes v.
func (c *Code) I32Const(v int32) *Code {
	c.buf.WriteByte(opI32Const)
	writeS64(&c.buf, int64(v))
	return c
}

// I64Const pushes v.
func (c *Code) I64Const(v int64) *Code {
	c.buf.WriteByte(opI64Const)
	writeS64(&c.buf, v)
	return c
}

func (c *Code) I32Load(offset uint32) *Code { return c.memarg(opI32Load, 2, offset) }
func (c *Code) I64Load(offset uint32) *Code { return c.memarg(opI64Load, 3, offset) }
func (c *Code) I32Load8U(offset uint32) *Code { return c.memarg(opI32Load8U, 0, offset) }
func (c *Code) I32Store(offset uint32) *Code { return c.memarg(opI32Store, 2, offset) }
func (c *Code) I64Store(offset uint32) *Code { return c.memarg(opI64Store, 3, offset) }
func (c *Code) I32Store8(offset uint32) *Code { return c.memarg(opI32Store8, 0, offset) }

func (c *Code) MemorySize() *Code { return c.op(opMemorySize).op(0x00) }
func (c *Code) MemoryGrow() *Code { return c.op(opMemoryGrow).op(0x00) }

func (c *Code) I32Eqz() *Code { return c.op(opI32Eqz) }
func (c *Code) I32Eq() *Code { return c.op(opI32Eq) }
func (c *Code) I32Ne() *Code { return c.op(opI32Ne) }
func (c *Code) I32LtS() *Code { return c.op(opI32LtS) }
func (c *Code) I32LtU() *Code { return c.op(opI32LtU) }
func (c *Code) I32GtS() *Code { return c.op(opI32GtS) }
func (c *Code) I32GtU() *Code { return c.op(opI32GtU) }
func (c *Code) I32LeS() *Code { return c.op(opI32LeS) }
func (c *Code) I32GeS() *Code { return c.op(opI32GeS) }
func (c *Code) I64Eqz() *Code { return c.op(opI64Eqz) }

func (c *Code) I32Add() *Code { return c.op(opI32Add) }
func (c *Code) I32Sub() *Code { return c.op(opI32Sub) }
func (c *Code) I32Mul() *Code { return c.op(opI32Mul) }
func (c *Code) I32DivS() *Code { return c.op(opI32DivS) }
func (c *Code) I32DivU() *Code { return c.op(opI32DivU) }
func (c *Code) I32RemS() *Code { return c.op(opI32RemS) }
func (c *Code) I32RemU() *Code { return c.op(opI32RemU) }
func (c *Code) I32And() *Code { return c.op(opI32And) }
func (c *Code) I32Or() *Code { return c.op(opI32Or) }
func (c *Code) I32Xor() *Code { return c.op(opI32Xor) }
func (c *Code) I32Shl() *Code { return c.op(opI32Shl) }
func (c *Code) I32ShrS() *Code { return c.op(opI32ShrS) }
func (c *Code) I32ShrU() *Code { return c.op(opI32ShrU) }

func (c *Code) I64And() *Code { return c.op(opI64And) }
func (c *Code) I64ShrU() *Code { return c.op(opI64ShrU) }
func (c *Code) I32WrapI64() *Code { return c.op(opI32WrapI64) }
func (c *Code) I64ExtendI32U() *Code { return c.op(opI64ExtendU) }
