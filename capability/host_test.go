package capability

import (
	"context"
	stderrors "errors"
	"image/color"
	"testing"
	"time"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/framehost/engine"
	"github.com/wippyai/framehost/errors"
	"github.com/wippyai/framehost/input"
	"github.com/wippyai/framehost/internal/guestwasm"
	"github.com/wippyai/framehost/surface"
)

type fixture struct {
	host    *Host
	surface *surface.Surface
	input   *input.Tracker
	inst    *engine.Instance
}

// newFixture instantiates a guest that re-exports each named capability
// as "call_<name>".
func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	ctx := context.Background()

	surf := surface.New(16, 8)
	tracker := input.NewTracker()
	h, err := NewHost(Options{
		Surface: surf,
		Input:   tracker,
		Clock:   func() time.Duration { return 2500 * time.Millisecond },
	})
	if err != nil {
		t.Fatalf("NewHost: %v", err)
	}

	eng, err := engine.New(ctx, &engine.Config{MemoryLimitPages: 4})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	t.Cleanup(func() { _ = eng.Close(ctx) })
	if err := eng.Register(ctx, h); err != nil {
		t.Fatalf("register: %v", err)
	}

	b := guestwasm.New()
	type fwd struct {
		name    string
		idx     uint32
		params  []guestwasm.ValType
		results []guestwasm.ValType
	}
	var fwds []fwd
	for _, name := range names {
		sig, ok := eng.Imports().Lookup(Namespace, name)
		if !ok {
			t.Fatalf("%s not declared", name)
		}
		p, r := valTypes(sig.Params), valTypes(sig.Results)
		fwds = append(fwds, fwd{name, b.Import(Namespace, name, p, r), p, r})
	}
	b.Memory(1, 0)
	for _, f := range fwds {
		code := guestwasm.NewCode()
		for i := range f.params {
			code.LocalGet(uint32(i))
		}
		code.Call(f.idx)
		b.Func("call_"+f.name, f.params, f.results, nil, code)
	}

	mod, err := eng.Load(ctx, b.Bytes())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	inst, err := mod.Instantiate(ctx, nil)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return &fixture{host: h, surface: surf, input: tracker, inst: inst}
}

func valTypes(types []api.ValueType) []guestwasm.ValType {
	out := make([]guestwasm.ValType, len(types))
	for i, vt := range types {
		out[i] = guestwasm.ValType(vt)
	}
	return out
}

func (f *fixture) call(t *testing.T, name string, args ...int64) []uint64 {
	t.Helper()
	res, err := f.try(name, args...)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	return res
}

func (f *fixture) try(name string, args ...int64) ([]uint64, error) {
	raw := make([]uint64, len(args))
	for i, a := range args {
		raw[i] = uint64(a)
	}
	return f.inst.Call(context.Background(), "call_"+name, raw...)
}

func TestDeclarations(t *testing.T) {
	decls := Declarations()
	h := (&Host{}).handlers()

	if len(decls) != len(h) {
		t.Errorf("%d declarations, %d handlers", len(decls), len(h))
	}
	byName := make(map[string]engine.Signature)
	for _, d := range decls {
		if _, ok := h[d.Name]; !ok {
			t.Errorf("no handler for %s", d.Name)
		}
		byName[d.Name] = d.Signature
	}

	tests := []struct {
		name string
		want string
	}{
		{"set_pixel", "(i32, i32, i32, i32, i32, i32) -> ()"},
		{"fill_gradient", "(i32, i32, i32, i32, i32, i32, i32, i32, i32, i32, i32, i32) -> ()"},
		{"get_width", "() -> i32"},
		{"get_time_ms", "() -> i64"},
		{"grow_memory", "(i64) -> i32"},
		{"is_key_down", "(i32) -> i32"},
		{"get_key_history_event", "(i32) -> i64"},
		{"get_dimensions", "(i32) -> ()"},
	}
	for _, tt := range tests {
		sig, ok := byName[tt.name]
		if !ok {
			t.Errorf("%s not declared", tt.name)
			continue
		}
		if got := sig.String(); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestParseDeclarations_Errors(t *testing.T) {
	if _, err := ParseDeclarations("interface empty {}"); err == nil {
		t.Error("expected error for WIT without functions")
	}
	_, err := ParseDeclarations("log: func(msg: string);")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseParse, Kind: errors.KindInvalidData}) {
		t.Errorf("string param error = %v", err)
	}
}

func TestNewHost_RequiresSurfaceAndInput(t *testing.T) {
	if _, err := NewHost(Options{Input: input.NewTracker()}); err == nil {
		t.Error("expected error without surface")
	}
	if _, err := NewHost(Options{Surface: surface.New(1, 1)}); err == nil {
		t.Error("expected error without input")
	}
}

func TestHost_Drawing(t *testing.T) {
	f := newFixture(t, "set_pixel", "fill_rectangle", "draw_line", "set_pixels_from_to")

	f.call(t, "set_pixel", 1, 1, 300, -5, 128, 255)
	if got := f.surface.At(1, 1); got != (color.RGBA{255, 0, 128, 255}) {
		t.Errorf("clamped pixel = %v", got)
	}

	f.call(t, "fill_rectangle", 4, 2, 3, 2, 10, 20, 30, 255)
	for _, p := range [][2]int{{4, 2}, {6, 3}} {
		if got := f.surface.At(p[0], p[1]); got != (color.RGBA{10, 20, 30, 255}) {
			t.Errorf("rect pixel %v = %v", p, got)
		}
	}
	if got := f.surface.At(7, 2); got.A != 0 {
		t.Errorf("pixel right of rect = %v", got)
	}

	// a later call draws over an earlier one
	f.call(t, "draw_line", 0, 2, 16, 2, 0, 0, 255, 255)
	if got := f.surface.At(5, 2); got != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("line over rect = %v", got)
	}

	// out-of-surface coordinates are clipped, not faults
	f.call(t, "set_pixels_from_to", -4, -4, 100, 1, 1, 2, 3, 4)
	if got := f.surface.At(15, 0); got != (color.RGBA{1, 2, 3, 4}) {
		t.Errorf("span pixel = %v", got)
	}
}

func TestHost_BlitRGBA(t *testing.T) {
	f := newFixture(t, "blit_rgba")
	f.inst.Memory().Write(256, []byte{
		255, 0, 0, 255, 0, 255, 0, 128,
	})

	f.call(t, "blit_rgba", 3, 4, 2, 1, 256)
	if got := f.surface.At(3, 4); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("blit pixel 0 = %v", got)
	}
	if got := f.surface.At(4, 4); got != (color.RGBA{0, 255, 0, 128}) {
		t.Errorf("blit pixel 1 = %v (stored verbatim)", got)
	}

	gen := f.surface.Generation()
	_, err := f.try("blit_rgba", 0, 0, 4, 4, 65536-8)
	var ferr *errors.Error
	if !stderrors.As(err, &ferr) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if ferr.Phase != errors.PhaseCapability || ferr.Kind != errors.KindOutOfBounds {
		t.Errorf("fault = %v", ferr)
	}
	if f.surface.Generation() != gen {
		t.Error("faulted blit changed the surface")
	}

	// the instance survives a capability fault
	f.call(t, "blit_rgba", 0, 0, 1, 1, 256)
}

func TestHost_Dimensions(t *testing.T) {
	f := newFixture(t, "get_width", "get_height", "get_dimensions")

	if res := f.call(t, "get_width"); res[0] != 16 {
		t.Errorf("width = %d", res[0])
	}
	if res := f.call(t, "get_height"); res[0] != 8 {
		t.Errorf("height = %d", res[0])
	}

	f.call(t, "get_dimensions", 40)
	w, _ := f.inst.Memory().ReadUint32Le(40)
	h, _ := f.inst.Memory().ReadUint32Le(44)
	if w != 16 || h != 8 {
		t.Errorf("dimensions = %dx%d", w, h)
	}

	if _, err := f.try("get_dimensions", 65532); err == nil {
		t.Error("expected fault for out-of-bounds dimensions pointer")
	}
}

func TestHost_Time(t *testing.T) {
	f := newFixture(t, "get_time_ms")
	if res := f.call(t, "get_time_ms"); res[0] != 2500 {
		t.Errorf("time = %d, want 2500", res[0])
	}
}

func TestHost_GrowMemory(t *testing.T) {
	f := newFixture(t, "grow_memory")
	mem := f.inst.Memory()

	if mem.WriteByte(2*65536, 1) {
		t.Fatal("write beyond one page should fail before growth")
	}

	res := f.call(t, "grow_memory", 2)
	if api.DecodeI32(res[0]) != 1 {
		t.Fatalf("grow_memory(2) = %d, want 1", api.DecodeI32(res[0]))
	}
	if !mem.WriteByte(2*65536, 1) {
		t.Error("write in the granted range should succeed")
	}
	if mem.WriteByte(3*65536, 1) {
		t.Error("write one byte past the new boundary should fail")
	}

	for _, pages := range []int64{2, 1 << 40, -1} {
		res = f.call(t, "grow_memory", pages)
		if api.DecodeI32(res[0]) != -1 {
			t.Errorf("grow_memory(%d) = %d, want -1", pages, api.DecodeI32(res[0]))
		}
	}
	if mem.Size() != 3*65536 {
		t.Errorf("size = %d after refused growth", mem.Size())
	}
}

func TestHost_Keys(t *testing.T) {
	f := newFixture(t, "is_key_down", "is_key_pressed", "is_key_released",
		"get_key_history_count", "get_key_history_event")

	f.input.Press(input.KeyA)
	if f.call(t, "is_key_down", int64(input.KeyA))[0] != 1 {
		t.Error("A should be down")
	}
	if f.call(t, "is_key_pressed", int64(input.KeyA))[0] != 1 {
		t.Error("A should be pressed")
	}
	if f.call(t, "is_key_released", int64(input.KeyA))[0] != 0 {
		t.Error("A should not be released")
	}

	f.input.EndTick()
	f.input.Release(input.KeyA)
	if f.call(t, "is_key_pressed", int64(input.KeyA))[0] != 0 {
		t.Error("press edge should be cleared")
	}
	if f.call(t, "is_key_released", int64(input.KeyA))[0] != 1 {
		t.Error("A should be released")
	}

	if n := f.call(t, "get_key_history_count")[0]; n != 2 {
		t.Fatalf("history count = %d, want 2", n)
	}
	if ev := f.call(t, "get_key_history_event", 0)[0]; ev != 1<<32|uint64(input.KeyA) {
		t.Errorf("event 0 = %#x", ev)
	}
	if ev := f.call(t, "get_key_history_event", 1)[0]; ev != uint64(input.KeyA) {
		t.Errorf("event 1 = %#x", ev)
	}
	for _, idx := range []int64{2, 64, -1} {
		if ev := f.call(t, "get_key_history_event", idx)[0]; ev != 0 {
			t.Errorf("event %d = %#x, want 0", idx, ev)
		}
	}
}
