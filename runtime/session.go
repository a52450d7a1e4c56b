package runtime

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"time"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	"github.com/wippyai/framehost"
	"github.com/wippyai/framehost/capability"
	"github.com/wippyai/framehost/engine"
	"github.com/wippyai/framehost/errors"
	"github.com/wippyai/framehost/input"
	"github.com/wippyai/framehost/memory"
	"github.com/wippyai/framehost/surface"
	"github.com/wippyai/framehost/wasi/preview1"
)

const (
	DefaultStartExport  = "_start"
	DefaultUpdateExport = "update"
)

// trapExitCode is reported when the guest stops without calling proc_exit.
const trapExitCode = 1

// Options configures a Session.
type Options struct {
	// Width and Height are the logical surface size. Both must be positive.
	Width  int
	Height int
	// MemoryLimitPages caps guest memory. 0 means the wazero default.
	MemoryLimitPages uint32
	// Env is the guest environment as NAME=VALUE entries.
	Env []string
	// Args is the guest argument vector.
	Args []string
	// Sink receives guest stdout and stderr lines.
	Sink preview1.Sink
	// Clock returns elapsed session time. Defaults to a monotonic clock
	// started by New.
	Clock func() time.Duration
	// Random supplies random_get. Defaults to crypto/rand.
	Random io.Reader
	// StartExport and UpdateExport override the export names.
	StartExport  string
	UpdateExport string
}

type keyEvent struct {
	code    input.Code
	pressed bool
}

// Session owns one guest together with its surface, input state and
// scheduler state.
type Session struct {
	engine  *engine.Engine
	surface *surface.Surface
	input   *input.Tracker
	wasi    *preview1.Host
	module  *engine.Module
	inst    *engine.Instance

	startExport  string
	updateExport string
	hasStart     bool
	hasUpdate    bool

	ticks  uint64
	faults uint64

	mu       sync.Mutex
	state    State
	exitCode uint32
	err      error
	fault    error
	inbox    []keyEvent
	pointerX int32
	pointerY int32
}

// New creates a session in the Loading state with both host namespaces
// registered.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Detail("surface size %dx%d must be positive", opts.Width, opts.Height).
			Build()
	}
	env, err := preview1.NewEnvironment(opts.Env)
	if err != nil {
		return nil, err
	}
	if opts.Clock == nil {
		start := time.Now()
		opts.Clock = func() time.Duration { return time.Since(start) }
	}
	if opts.StartExport == "" {
		opts.StartExport = DefaultStartExport
	}
	if opts.UpdateExport == "" {
		opts.UpdateExport = DefaultUpdateExport
	}

	eng, err := engine.New(ctx, &engine.Config{MemoryLimitPages: opts.MemoryLimitPages})
	if err != nil {
		return nil, err
	}

	s := &Session{
		engine:       eng,
		surface:      surface.New(opts.Width, opts.Height),
		input:        input.NewTracker(),
		startExport:  opts.StartExport,
		updateExport: opts.UpdateExport,
		state:        StateLoading,
	}

	s.wasi = preview1.NewHost(preview1.Options{
		Env:    env,
		Args:   preview1.NewBlock(opts.Args),
		Sink:   opts.Sink,
		Clock:  opts.Clock,
		Random: opts.Random,
	})
	agave, err := capability.NewHost(capability.Options{
		Surface: s.surface,
		Input:   s.input,
		Clock:   opts.Clock,
	})
	if err != nil {
		_ = eng.Close(ctx)
		return nil, err
	}

	for _, h := range []engine.HostModule{s.wasi, agave} {
		if err := eng.Register(ctx, h); err != nil {
			_ = eng.Close(ctx)
			return nil, err
		}
	}

	Logger().Debug("session created",
		zap.Int("width", opts.Width),
		zap.Int("height", opts.Height),
		zap.Int("imports", eng.Imports().Len()))
	return s, nil
}

// Load validates the guest against the import table and instantiates it
// without running any export. On failure the cause is kept in Err and the
// session never leaves Loading.
func (s *Session) Load(ctx context.Context, wasm []byte) error {
	if st := s.State(); st != StateLoading || s.inst != nil {
		return errors.InvalidState(errors.PhaseLoad, "load", st.String())
	}

	err := s.load(ctx, wasm)
	if err != nil {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		Logger().Error("guest load failed", zap.Error(err))
	}
	return err
}

func (s *Session) load(ctx context.Context, wasm []byte) error {
	mod, err := s.engine.Load(ctx, wasm)
	if err != nil {
		return err
	}

	var ok bool
	var sig engine.Signature
	if sig, ok = mod.Export(s.startExport); ok && !sig.Matches(nil, nil) {
		_ = mod.Close(ctx)
		return exportMismatch(s.startExport, "() -> ()", sig)
	}
	s.hasStart = ok

	i32 := api.ValueTypeI32
	if sig, ok = mod.Export(s.updateExport); ok && !sig.Matches([]api.ValueType{i32, i32}, nil) {
		_ = mod.Close(ctx)
		return exportMismatch(s.updateExport, "(i32, i32) -> ()", sig)
	}
	s.hasUpdate = ok

	inst, err := mod.Instantiate(ctx, nil)
	if err != nil {
		_ = mod.Close(ctx)
		return err
	}
	s.module = mod
	s.inst = inst

	if !s.hasUpdate {
		Logger().Warn("guest has no update export; it will not be driven past start",
			zap.String("export", s.updateExport))
	}
	return nil
}

func exportMismatch(name, want string, got engine.Signature) error {
	return errors.New(errors.PhaseLoad, errors.KindSignatureMismatch).
		Path(name).
		Detail("export must be %s, guest declares %s", want, got).
		Build()
}

// Start runs the start export when the guest has one and enters Running.
// A guest that calls proc_exit during start goes straight to Stopped.
func (s *Session) Start(ctx context.Context) error {
	if s.inst == nil {
		if err := s.Err(); err != nil {
			return err
		}
		return errors.NotInitialized(errors.PhaseSchedule, "guest instance")
	}
	if st := s.State(); st != StateLoading {
		return errors.InvalidState(errors.PhaseSchedule, "start", st.String())
	}

	if s.hasStart {
		if err := s.invoke(ctx, s.startExport); err != nil {
			if s.State() == StateStopped {
				return err
			}
			// faults during start are fatal
			s.stop(trapExitCode, err)
			return err
		}
		if s.State() == StateStopped {
			return nil
		}
	}

	s.mu.Lock()
	s.state = StateRunning
	s.mu.Unlock()
	Logger().Info("guest running",
		zap.String("digest", s.module.Digest()),
		zap.Bool("update", s.hasUpdate))
	return nil
}

// Tick advances one frame. It is a no-op once the session is stopped. The
// returned error is either the capability fault that aborted this tick or
// the cause that stopped the session.
func (s *Session) Tick(ctx context.Context) error {
	s.mu.Lock()
	st := s.state
	inbox := s.inbox
	s.inbox = nil
	x, y := s.pointerX, s.pointerY
	s.mu.Unlock()

	switch st {
	case StateStopped:
		return nil
	case StateLoading:
		return errors.InvalidState(errors.PhaseSchedule, "tick", st.String())
	}

	for _, ev := range inbox {
		if ev.pressed {
			s.input.Press(ev.code)
		} else {
			s.input.Release(ev.code)
		}
	}

	var err error
	if s.hasUpdate {
		err = s.invoke(ctx, s.updateExport, api.EncodeI32(x), api.EncodeI32(y))
	}
	s.input.EndTick()
	s.ticks++
	return err
}

// invoke calls an export and classifies its failure: proc_exit stops the
// session with the guest's code, a capability fault is recorded and
// returned, anything else stops the session as a trap.
func (s *Session) invoke(ctx context.Context, name string, args ...uint64) error {
	_, err := s.inst.Call(ctx, name, args...)
	if err == nil {
		return nil
	}

	var exit *sys.ExitError
	if stderrors.As(err, &exit) {
		s.stop(exit.ExitCode(), nil)
		return nil
	}

	var hostErr *errors.Error
	if stderrors.As(err, &hostErr) && hostErr.Phase == errors.PhaseCapability {
		s.mu.Lock()
		s.fault = hostErr
		s.faults++
		s.mu.Unlock()
		Logger().Warn("capability fault, tick aborted",
			zap.String("export", name),
			zap.Error(hostErr))
		return hostErr
	}

	trap := errors.GuestTrap(name, err)
	s.stop(trapExitCode, trap)
	return trap
}

func (s *Session) stop(code uint32, cause error) {
	s.mu.Lock()
	if s.state == StateStopped {
		s.mu.Unlock()
		return
	}
	s.state = StateStopped
	s.exitCode = code
	s.err = cause
	s.mu.Unlock()

	s.wasi.Flush()
	if cause != nil {
		Logger().Error("guest stopped", zap.Uint32("code", code), zap.Error(cause))
		return
	}
	Logger().Info("guest exited", zap.Uint32("code", code), zap.Uint64("ticks", s.ticks))
}

// Run ticks every interval until the session stops or ctx is done. It
// returns nil when the guest exits, the stopping cause after a trap, or
// ctx.Err(). Capability faults are logged and do not end the loop.
func (s *Session) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.InvalidInput(errors.PhaseSchedule, "tick interval must be positive")
	}
	if st := s.State(); st != StateRunning {
		if st == StateStopped {
			return s.Err()
		}
		return errors.InvalidState(errors.PhaseSchedule, "run", st.String())
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := s.Tick(ctx)
			if s.State() == StateStopped {
				return s.Err()
			}
			if err != nil {
				Logger().Debug("tick failed", zap.Uint64("tick", s.ticks), zap.Error(err))
			}
		}
	}
}

// PressKey queues a key press for the next tick.
func (s *Session) PressKey(code input.Code) {
	s.mu.Lock()
	s.inbox = append(s.inbox, keyEvent{code: code, pressed: true})
	s.mu.Unlock()
}

// ReleaseKey queues a key release for the next tick.
func (s *Session) ReleaseKey(code input.Code) {
	s.mu.Lock()
	s.inbox = append(s.inbox, keyEvent{code: code})
	s.mu.Unlock()
}

// SetPointer sets the coordinates passed to the next update.
func (s *Session) SetPointer(x, y int) {
	s.mu.Lock()
	s.pointerX, s.pointerY = int32(x), int32(y)
	s.mu.Unlock()
}

// Input returns the session's tracker. Only the ticking goroutine may use it.
func (s *Session) Input() *input.Tracker {
	return s.input
}

// Surface returns the drawing surface. Only the ticking goroutine may use
// it; other goroutines should work from Surface().Snapshot() taken there.
func (s *Session) Surface() *surface.Surface {
	return s.surface
}

// Module returns the loaded guest, or nil before a successful Load.
func (s *Session) Module() *engine.Module {
	return s.module
}

// Imports returns the host import table guests are linked against.
func (s *Session) Imports() engine.ImportTable {
	return s.engine.Imports()
}

// State returns the scheduler state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ExitCode returns the exit code once the session is stopped.
func (s *Session) ExitCode() (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode, s.state == StateStopped
}

// Result summarizes how the session ended: the Err cause when there is one,
// a guest_exit error for a non-zero proc_exit code, otherwise nil.
func (s *Session) Result() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.state == StateStopped && s.exitCode != 0 {
		return errors.GuestExit(s.exitCode)
	}
	return nil
}

// Err returns the load failure or the cause that stopped the session. It is
// nil for a guest that exited through proc_exit.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// LastFault returns the most recent capability fault.
func (s *Session) LastFault() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}

// Faults returns the number of ticks aborted by a capability fault.
func (s *Session) Faults() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faults
}

// Ticks returns the number of ticks executed.
func (s *Session) Ticks() uint64 {
	return s.ticks
}

// Pages returns the guest memory size in pages.
func (s *Session) Pages() uint32 {
	if s.inst == nil || s.inst.Closed() {
		return 0
	}
	mem := s.inst.Memory()
	if mem == nil {
		return 0
	}
	return mem.Size() / framehost.PageSize
}

// Memory returns a view of the guest's linear memory. Every access fails
// before Load or when the guest declares no memory.
func (s *Session) Memory() *memory.View {
	if s.inst == nil {
		return memory.New(nil)
	}
	return memory.New(s.inst.Memory())
}

// Close flushes guest output, closes the guest instance and releases the
// engine with everything compiled by it.
func (s *Session) Close(ctx context.Context) error {
	s.wasi.Flush()
	if s.inst != nil && !s.inst.Closed() {
		if err := s.inst.Close(ctx); err != nil {
			Logger().Debug("close guest instance", zap.Error(err))
		}
	}
	return s.engine.Close(ctx)
}
