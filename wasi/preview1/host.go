package preview1

import (
	"crypto/rand"
	"io"
	"time"

	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/wippyai/framehost/engine"
)

// OpenHandle is the descriptor path_open hands out for every path.
const OpenHandle = 3

const (
	fdStdout = 1
	fdStderr = 2

	filestatSize = 64
	fdstatSize   = 24
)

// Options configures a Host.
type Options struct {
	// Env is the environment block. Zero value means no variables.
	Env Block
	// Args is the argument vector. Zero value means no arguments.
	Args Block
	// Sink receives stdout and stderr lines. Defaults to LogSink on the
	// package logger named "guest".
	Sink Sink
	// Clock returns the session's elapsed time. Defaults to time since
	// the host was created.
	Clock func() time.Duration
	// Random supplies random_get. Defaults to crypto/rand.
	Random io.Reader
}

// Host is the wasi_snapshot_preview1 host module of one session.
type Host struct {
	env    Block
	args   Block
	clock  func() time.Duration
	random io.Reader
	stdout *lineWriter
	stderr *lineWriter
}

var _ engine.HostModule = (*Host)(nil)

// NewHost creates the syscall layer.
func NewHost(opts Options) *Host {
	if opts.Sink == nil {
		opts.Sink = LogSink(Logger().Named("guest"))
	}
	if opts.Clock == nil {
		start := time.Now()
		opts.Clock = func() time.Duration { return time.Since(start) }
	}
	if opts.Random == nil {
		opts.Random = rand.Reader
	}
	return &Host{
		env:    opts.Env,
		args:   opts.Args,
		clock:  opts.Clock,
		random: opts.Random,
		stdout: &lineWriter{sink: opts.Sink, fd: fdStdout},
		stderr: &lineWriter{sink: opts.Sink, fd: fdStderr},
	}
}

// Namespace returns the preview1 module name.
func (h *Host) Namespace() string {
	return wasi_snapshot_preview1.ModuleName
}

// Flush emits any partial output line still buffered.
func (h *Host) Flush() {
	h.stdout.Flush()
	h.stderr.Flush()
}

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

func params(types ...api.ValueType) []api.ValueType { return types }

var errnoResult = []api.ValueType{api.ValueTypeI32}

// Functions returns the syscall table.
func (h *Host) Functions() []engine.HostFunc {
	fn := func(name string, p []api.ValueType, f api.GoModuleFunc) engine.HostFunc {
		return engine.HostFunc{Name: name, Params: p, Results: errnoResult, Fn: f}
	}

	return []engine.HostFunc{
		fn("args_get", params(i32, i32), h.argsGet),
		fn("args_sizes_get", params(i32, i32), h.argsSizesGet),
		fn("environ_get", params(i32, i32), h.environGet),
		fn("environ_sizes_get", params(i32, i32), h.environSizesGet),
		fn("clock_res_get", params(i32, i32), h.clockResGet),
		fn("clock_time_get", params(i32, i64, i32), h.clockTimeGet),
		fn("random_get", params(i32, i32), h.randomGet),

		fn("fd_write", params(i32, i32, i32, i32), h.fdWrite),
		fn("fd_pwrite", params(i32, i32, i32, i64, i32), h.fdPwrite),
		fn("fd_read", params(i32, i32, i32, i32), zeroResult(3)),
		fn("fd_pread", params(i32, i32, i32, i64, i32), zeroResult(4)),
		fn("fd_readdir", params(i32, i32, i32, i64, i32), zeroResult(4)),
		fn("fd_seek", params(i32, i64, i32, i32), zeroResult64(3)),
		fn("fd_tell", params(i32, i32), zeroResult64(1)),
		fn("fd_fdstat_get", params(i32, i32), zeroRecord(1, fdstatSize)),
		fn("fd_filestat_get", params(i32, i32), zeroRecord(1, filestatSize)),
		fn("path_filestat_get", params(i32, i32, i32, i32, i32), zeroRecord(4, filestatSize)),
		fn("path_open", params(i32, i32, i32, i32, i32, i64, i64, i32, i32), h.pathOpen),
		fn("fd_prestat_get", params(i32, i32), badf),
		fn("fd_prestat_dir_name", params(i32, i32, i32), badf),

		fn("fd_close", params(i32), success),
		fn("fd_sync", params(i32), success),
		fn("fd_datasync", params(i32), success),
		fn("fd_advise", params(i32, i64, i64, i32), success),
		fn("fd_allocate", params(i32, i64, i64), success),
		fn("fd_fdstat_set_flags", params(i32, i32), success),
		fn("fd_filestat_set_size", params(i32, i64), success),
		fn("sched_yield", nil, success),

		{Name: "proc_exit", Params: params(i32), Fn: h.procExit},
	}
}
