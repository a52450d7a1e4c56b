package guestwasm

import "encoding/binary"

const demoBanner = "framehost demo: arrow keys move the block, the pointer steers the line\n"

// Linux input event codes for the arrow keys.
const (
	keyUp    = 103
	keyLeft  = 105
	keyRight = 106
	keyDown  = 108
)

// Demo returns the built-in demo guest. Its _start prints a banner through
// fd_write and centres a block; each update paints a gradient backdrop, a
// sun that crosses the surface with time, the arrow-key driven block and a
// line from the block to the pointer.
func Demo() []byte {
	b := New()

	fdWrite := b.Import("wasi_snapshot_preview1", "fd_write", I32s(4), []ValType{I32})
	gradient := b.Import("agave", "fill_gradient", I32s(12), nil)
	fillCircle := b.Import("agave", "fill_circle", I32s(7), nil)
	drawCircle := b.Import("agave", "draw_circle", I32s(7), nil)
	rounded := b.Import("agave", "draw_rounded_rectangle", I32s(9), nil)
	line := b.Import("agave", "draw_line", I32s(8), nil)
	width := b.Import("agave", "get_width", nil, []ValType{I32})
	height := b.Import("agave", "get_height", nil, []ValType{I32})
	timeMS := b.Import("agave", "get_time_ms", nil, []ValType{I64})
	isKeyDown := b.Import("agave", "is_key_down", I32s(1), []ValType{I32})

	b.Memory(1, 0)

	// 0: block x, 4: block y, 16: iovec, 24: nwritten, 32: banner
	iov := make([]byte, 8)
	binary.LittleEndian.PutUint32(iov[0:], 32)
	binary.LittleEndian.PutUint32(iov[4:], uint32(len(demoBanner)))
	b.Data(16, iov)
	b.Data(32, []byte(demoBanner))

	start := NewCode().
		I32Const(0).Call(width).I32Const(2).I32DivU().I32Store(0).
		I32Const(4).Call(height).I32Const(2).I32DivU().I32Store(0).
		I32Const(1).I32Const(16).I32Const(1).I32Const(24).Call(fdWrite).Drop()
	b.Func("_start", nil, nil, nil, start)

	const (
		mx, my = 0, 1
		w, h   = 2, 3
		t      = 4
	)
	move := func(c *Code, key int32, addr int32, delta int32) {
		c.I32Const(key).Call(isKeyDown).If().
			I32Const(addr).
			I32Const(addr).I32Load(0).I32Const(delta).I32Add().
			I32Store(0).
			End()
	}

	update := NewCode().
		Call(width).LocalSet(w).
		Call(height).LocalSet(h).
		Call(timeMS).I32WrapI64().LocalSet(t)

	// backdrop
	update.I32Const(0).I32Const(0).
		LocalGet(w).I32Const(1).I32Sub().
		LocalGet(h).I32Const(1).I32Sub().
		I32Const(16).I32Const(24).I32Const(64).I32Const(255).
		I32Const(96).I32Const(32).I32Const(96).I32Const(255).
		Call(gradient)

	// sun: x = (t / 10) % w
	update.LocalGet(t).I32Const(10).I32DivU().LocalGet(w).I32RemU().
		LocalGet(h).I32Const(3).I32DivU().
		I32Const(12).
		I32Const(250).I32Const(200).I32Const(60).I32Const(255).
		Call(fillCircle)

	move(update, keyLeft, 0, -2)
	move(update, keyRight, 0, 2)
	move(update, keyUp, 4, -2)
	move(update, keyDown, 4, 2)

	// block centred on (x, y)
	update.I32Const(0).I32Load(0).I32Const(10).I32Sub().
		I32Const(4).I32Load(0).I32Const(6).I32Sub().
		I32Const(20).I32Const(12).I32Const(4).
		I32Const(90).I32Const(220).I32Const(120).I32Const(255).
		Call(rounded)

	update.I32Const(0).I32Load(0).I32Const(4).I32Load(0).
		LocalGet(mx).LocalGet(my).
		I32Const(255).I32Const(255).I32Const(255).I32Const(160).
		Call(line)

	update.LocalGet(mx).LocalGet(my).I32Const(6).
		I32Const(255).I32Const(255).I32Const(255).I32Const(255).
		Call(drawCircle)

	b.Func("update", I32s(2), nil, I32s(3), update)

	return b.Bytes()
}
