package capability

import (
	"context"
	"encoding/binary"
	"image/color"
	"math"
	"time"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/framehost/engine"
	"github.com/wippyai/framehost/errors"
	"github.com/wippyai/framehost/input"
	"github.com/wippyai/framehost/memory"
	"github.com/wippyai/framehost/surface"
)

// Namespace is the import module name of the capability table.
const Namespace = "agave"

// maxPages is the largest page count a 32-bit memory can reach.
const maxPages = 65536

// Options configures a Host.
type Options struct {
	Surface *surface.Surface
	Input   *input.Tracker
	// Clock returns elapsed session time. Defaults to time since the
	// host was created.
	Clock func() time.Duration
}

// Host serves the agave namespace for one session.
type Host struct {
	surface *surface.Surface
	input   *input.Tracker
	clock   func() time.Duration
	decls   []Declaration
}

var _ engine.HostModule = (*Host)(nil)

// NewHost creates the capability host. Surface and Input are required.
func NewHost(opts Options) (*Host, error) {
	if opts.Surface == nil {
		return nil, errors.NotInitialized(errors.PhaseCapability, "surface")
	}
	if opts.Input == nil {
		return nil, errors.NotInitialized(errors.PhaseCapability, "input tracker")
	}
	if opts.Clock == nil {
		start := time.Now()
		opts.Clock = func() time.Duration { return time.Since(start) }
	}
	return &Host{
		surface: opts.Surface,
		input:   opts.Input,
		clock:   opts.Clock,
		decls:   Declarations(),
	}, nil
}

// Namespace returns "agave".
func (h *Host) Namespace() string {
	return Namespace
}

// Functions pairs every declared capability with its handler. A declaration
// without a handler comes back with a nil Fn, which registration rejects.
func (h *Host) Functions() []engine.HostFunc {
	handlers := h.handlers()
	funcs := make([]engine.HostFunc, 0, len(h.decls))
	for _, d := range h.decls {
		funcs = append(funcs, engine.HostFunc{
			Name:    d.Name,
			Params:  d.Signature.Params,
			Results: d.Signature.Results,
			Fn:      handlers[d.Name],
		})
	}
	return funcs
}

func (h *Host) handlers() map[string]api.GoModuleFunc {
	return map[string]api.GoModuleFunc{
		"set_pixel":              h.setPixel,
		"set_pixels_from_to":     h.setPixelsFromTo,
		"draw_line":              h.drawLine,
		"draw_rectangle":         h.drawRectangle,
		"fill_rectangle":         h.fillRectangle,
		"draw_circle":            h.drawCircle,
		"fill_circle":            h.fillCircle,
		"draw_triangle":          h.drawTriangle,
		"fill_triangle":          h.fillTriangle,
		"draw_rounded_rectangle": h.drawRoundedRectangle,
		"fill_gradient":          h.fillGradient,
		"blit_rgba":              h.blitRGBA,
		"get_width":              h.getWidth,
		"get_height":             h.getHeight,
		"get_dimensions":         h.getDimensions,
		"get_time_ms":            h.getTimeMS,
		"grow_memory":            h.growMemory,
		"is_key_down":            h.isKeyDown,
		"is_key_pressed":         h.isKeyPressed,
		"is_key_released":        h.isKeyReleased,
		"get_key_history_count":  h.getKeyHistoryCount,
		"get_key_history_event":  h.getKeyHistoryEvent,
	}
}

// Fault aborts the current capability call. The scheduler recovers the
// *errors.Error from the failed export call and ends the tick.
func fault(err *errors.Error) {
	Logger().Debug("capability fault", zap.Error(err))
	panic(err)
}

func arg(stack []uint64, i int) int {
	return int(api.DecodeI32(stack[i]))
}

// rgba reads four colour channels starting at stack[i], clamped to 0..255.
func rgba(stack []uint64, i int) color.RGBA {
	return color.RGBA{
		R: channel(stack[i]),
		G: channel(stack[i+1]),
		B: channel(stack[i+2]),
		A: channel(stack[i+3]),
	}
}

func channel(v uint64) uint8 {
	c := api.DecodeI32(v)
	switch {
	case c < 0:
		return 0
	case c > 255:
		return 255
	}
	return uint8(c)
}

func (h *Host) setPixel(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.SetPixel(arg(stack, 0), arg(stack, 1), rgba(stack, 2))
}

func (h *Host) setPixelsFromTo(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.FillSpan(arg(stack, 0), arg(stack, 1), arg(stack, 2), arg(stack, 3), rgba(stack, 4))
}

func (h *Host) drawLine(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.DrawLine(arg(stack, 0), arg(stack, 1), arg(stack, 2), arg(stack, 3), rgba(stack, 4))
}

func (h *Host) drawRectangle(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.DrawRect(arg(stack, 0), arg(stack, 1), arg(stack, 2), arg(stack, 3), rgba(stack, 4))
}

func (h *Host) fillRectangle(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.FillRect(arg(stack, 0), arg(stack, 1), arg(stack, 2), arg(stack, 3), rgba(stack, 4))
}

func (h *Host) drawCircle(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.DrawCircle(arg(stack, 0), arg(stack, 1), arg(stack, 2), rgba(stack, 3))
}

func (h *Host) fillCircle(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.FillCircle(arg(stack, 0), arg(stack, 1), arg(stack, 2), rgba(stack, 3))
}

func (h *Host) drawTriangle(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.DrawTriangle(arg(stack, 0), arg(stack, 1), arg(stack, 2), arg(stack, 3),
		arg(stack, 4), arg(stack, 5), rgba(stack, 6))
}

func (h *Host) fillTriangle(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.FillTriangle(arg(stack, 0), arg(stack, 1), arg(stack, 2), arg(stack, 3),
		arg(stack, 4), arg(stack, 5), rgba(stack, 6))
}

func (h *Host) drawRoundedRectangle(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.FillRoundedRect(arg(stack, 0), arg(stack, 1), arg(stack, 2), arg(stack, 3),
		arg(stack, 4), rgba(stack, 5))
}

func (h *Host) fillGradient(_ context.Context, _ api.Module, stack []uint64) {
	h.surface.FillGradient(arg(stack, 0), arg(stack, 1), arg(stack, 2), arg(stack, 3),
		rgba(stack, 4), rgba(stack, 8))
}

func (h *Host) blitRGBA(_ context.Context, mod api.Module, stack []uint64) {
	x, y, w, hh := arg(stack, 0), arg(stack, 1), arg(stack, 2), arg(stack, 3)
	ptr := api.DecodeU32(stack[4])
	if w <= 0 || hh <= 0 {
		return
	}

	size := uint64(w) * uint64(hh) * 4
	v := memory.Of(mod, errors.PhaseCapability)
	if size > math.MaxUint32 {
		fault(errors.OutOfBounds(errors.PhaseCapability, ptr, math.MaxUint32, v.Size()))
	}
	pix, err := v.Read(ptr, uint32(size))
	if err != nil {
		fault(capabilityError("blit_rgba", err))
	}
	if err := h.surface.Blit(x, y, w, hh, pix); err != nil {
		fault(capabilityError("blit_rgba", err))
	}
}

func (h *Host) getWidth(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = api.EncodeI32(int32(h.surface.Width()))
}

func (h *Host) getHeight(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = api.EncodeI32(int32(h.surface.Height()))
}

func (h *Host) getDimensions(_ context.Context, mod api.Module, stack []uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:], uint32(h.surface.Width()))
	binary.LittleEndian.PutUint32(buf[4:], uint32(h.surface.Height()))
	if err := memory.Of(mod, errors.PhaseCapability).Write(api.DecodeU32(stack[0]), buf[:]); err != nil {
		fault(capabilityError("get_dimensions", err))
	}
}

func (h *Host) getTimeMS(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = uint64(h.clock().Milliseconds())
}

func (h *Host) growMemory(_ context.Context, mod api.Module, stack []uint64) {
	pages := stack[0]
	if pages > maxPages {
		stack[0] = api.EncodeI32(-1)
		return
	}
	prev, ok := memory.Of(mod, errors.PhaseCapability).Grow(uint32(pages))
	if !ok {
		Logger().Debug("grow_memory refused", zap.Uint64("pages", pages))
		stack[0] = api.EncodeI32(-1)
		return
	}
	stack[0] = api.EncodeI32(int32(prev))
}

func (h *Host) isKeyDown(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = boolResult(h.input.IsDown(input.Code(api.DecodeU32(stack[0]))))
}

func (h *Host) isKeyPressed(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = boolResult(h.input.IsPressed(input.Code(api.DecodeU32(stack[0]))))
}

func (h *Host) isKeyReleased(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = boolResult(h.input.IsReleased(input.Code(api.DecodeU32(stack[0]))))
}

func (h *Host) getKeyHistoryCount(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = api.EncodeI32(int32(h.input.HistoryLen()))
}

func (h *Host) getKeyHistoryEvent(_ context.Context, _ api.Module, stack []uint64) {
	ev, ok := h.input.HistoryAt(arg(stack, 0))
	if !ok {
		stack[0] = 0
		return
	}
	stack[0] = ev.Pack()
}

func boolResult(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func capabilityError(name string, err error) *errors.Error {
	return errors.New(errors.PhaseCapability, errors.KindOutOfBounds).
		Import(Namespace, name).
		Cause(err).
		Detail("guest pointer outside memory").
		Build()
}
