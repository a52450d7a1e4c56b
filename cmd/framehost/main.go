package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/framehost/capability"
	"github.com/wippyai/framehost/config"
	"github.com/wippyai/framehost/engine"
	"github.com/wippyai/framehost/internal/guestwasm"
	"github.com/wippyai/framehost/runtime"
	"github.com/wippyai/framehost/shell"
	"github.com/wippyai/framehost/wasi/preview1"
)

func main() {
	var (
		configFile  = pflag.StringP("config", "c", "", "YAML configuration file")
		guest       = pflag.StringP("guest", "g", "", "Path to guest wasm module")
		demo        = pflag.Bool("demo", false, "Run the built-in demo guest")
		width       = pflag.Int("width", 0, "Surface width in pixels")
		height      = pflag.Int("height", 0, "Surface height in pixels")
		fps         = pflag.Int("fps", 0, "Ticks per second")
		env         = pflag.StringArrayP("env", "e", nil, "Guest environment entry NAME=VALUE (repeatable)")
		args        = pflag.StringArray("arg", nil, "Guest argument (repeatable)")
		memoryLimit = pflag.Uint32("memory-limit", 0, "Guest memory limit in 64KiB pages")
		mode        = pflag.String("mode", "", "Front end: auto, terminal or headless")
		headless    = pflag.Bool("headless", false, "Shorthand for --mode headless")
		frames      = pflag.Int("frames", -1, "Ticks to run in headless mode (0 runs until exit)")
		snapshot    = pflag.String("snapshot", "", "Write the final headless frame as PNG")
		logLevel    = pflag.String("log-level", "", "Log level")
		logDev      = pflag.Bool("log-dev", false, "Development log encoding")
		logFile     = pflag.String("log-file", "", "Write logs to file")
		info        = pflag.Bool("info", false, "Print the guest's exports and the import table, then exit")
	)
	pflag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if *guest != "" {
		cfg.Guest.Path = *guest
	}
	if *demo {
		cfg.Guest.Demo = true
	}
	if *width > 0 {
		cfg.Surface.Width = *width
	}
	if *height > 0 {
		cfg.Surface.Height = *height
	}
	if *fps > 0 {
		cfg.Scheduler.FPS = *fps
	}
	cfg.Guest.Env = append(cfg.Guest.Env, *env...)
	cfg.Guest.Args = append(cfg.Guest.Args, *args...)
	if *memoryLimit > 0 {
		cfg.Guest.MemoryLimitPages = *memoryLimit
	}
	if *mode != "" {
		cfg.Shell.Mode = *mode
	}
	if *headless {
		cfg.Shell.Mode = config.ModeHeadless
	}
	if *frames >= 0 {
		cfg.Shell.Frames = *frames
	}
	if *snapshot != "" {
		cfg.Shell.Snapshot = *snapshot
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logDev {
		cfg.Log.Development = true
	}
	if *logFile != "" {
		cfg.Log.File = *logFile
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration:\n%v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: framehost --guest <file.wasm> [--headless] [--env K=V ...]")
		fmt.Fprintln(os.Stderr, "       framehost --demo")
		os.Exit(2)
	}

	code, err := run(cfg, *info)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(int(code))
}

// run hosts the configured guest and returns its exit code.
func run(cfg *config.Config, infoOnly bool) (uint32, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	terminal := false
	switch cfg.Shell.Mode {
	case config.ModeTerminal:
		terminal = true
	case config.ModeAuto:
		terminal = !infoOnly && shell.IsTerminal(os.Stdout)
	}

	logger, err := newLogger(cfg, terminal)
	if err != nil {
		return 0, err
	}
	defer func() { _ = logger.Sync() }()
	engine.SetLogger(logger.Named("engine"))
	preview1.SetLogger(logger.Named("wasi"))
	capability.SetLogger(logger.Named("agave"))
	runtime.SetLogger(logger.Named("runtime"))
	shell.SetLogger(logger.Named("shell"))

	wasm := guestwasm.Demo()
	title := "demo"
	if !cfg.Guest.Demo {
		wasm, err = os.ReadFile(cfg.Guest.Path)
		if err != nil {
			return 0, fmt.Errorf("read guest: %w", err)
		}
		title = cfg.Guest.Path
	}

	opts := runtime.Options{
		Width:            cfg.Surface.Width,
		Height:           cfg.Surface.Height,
		MemoryLimitPages: cfg.Guest.MemoryLimitPages,
		Env:              cfg.Guest.Env,
		Args:             append([]string{title}, cfg.Guest.Args...),
		StartExport:      cfg.Guest.StartExport,
		UpdateExport:     cfg.Guest.UpdateExport,
	}
	if terminal {
		// stdout belongs to the renderer
		opts.Sink = preview1.LogSink(logger.Named("guest"))
	} else {
		opts.Sink = func(fd uint32, line string) {
			if fd == 2 {
				fmt.Fprintln(os.Stderr, line)
				return
			}
			fmt.Println(line)
		}
	}

	sess, err := runtime.New(ctx, opts)
	if err != nil {
		return 0, err
	}
	defer sess.Close(context.Background())

	if err := sess.Load(ctx, wasm); err != nil {
		return 0, err
	}
	if infoOnly {
		printInfo(sess)
		return 0, nil
	}
	if err := sess.Start(ctx); err != nil {
		code, _ := sess.ExitCode()
		return code, err
	}
	if code, stopped := sess.ExitCode(); stopped {
		return code, sess.Result()
	}

	if terminal {
		err = shell.RunTerminal(ctx, sess, shell.Options{
			Title:    title,
			Interval: cfg.TickInterval(),
			KeyHold:  cfg.KeyHoldDuration(),
		})
	} else {
		err = shell.RunHeadless(ctx, sess, shell.HeadlessOptions{
			Frames:   cfg.Shell.Frames,
			Interval: cfg.TickInterval(),
			Snapshot: cfg.Shell.Snapshot,
		})
	}

	if err != nil {
		code, _ := sess.ExitCode()
		return code, err
	}
	code, stopped := sess.ExitCode()
	if stopped {
		logger.Info("guest stopped", zap.Uint32("exit_code", code), zap.Uint64("ticks", sess.Ticks()))
	}
	return code, sess.Result()
}

func newLogger(cfg *config.Config, terminal bool) (*zap.Logger, error) {
	if terminal && cfg.Log.File == "" {
		return zap.NewNop(), nil
	}

	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = level
	if cfg.Log.File != "" {
		zcfg.OutputPaths = []string{cfg.Log.File}
		zcfg.ErrorOutputPaths = []string{cfg.Log.File}
	}
	return zcfg.Build()
}

func printInfo(sess *runtime.Session) {
	mod := sess.Module()
	fmt.Printf("Guest: %d bytes, blake3 %s\n", mod.Size(), mod.Digest())
	fmt.Println("Exports:")
	for _, name := range mod.ExportNames() {
		sig, _ := mod.Export(name)
		fmt.Printf("  %s%s\n", name, sig)
	}
	fmt.Println("Host imports:")
	for _, name := range sess.Imports().Names() {
		fmt.Printf("  %s\n", name)
	}
}
