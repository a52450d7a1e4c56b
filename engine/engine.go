package engine

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/framehost/errors"
)

// Engine owns the wazero runtime, the registered host modules and the
// import table derived from them.
type Engine struct {
	runtime wazero.Runtime
	table   ImportTable
	spaces  []string
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages caps guest linear memory in pages (64KB each).
	// 0 means the wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// New creates an engine with an empty import table.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	return &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		table:   newImportTable(),
	}, nil
}

// Register instantiates h as a host module and adds its functions to the
// import table. Each namespace can be registered once.
func (e *Engine) Register(ctx context.Context, h HostModule) error {
	ns := h.Namespace()
	if ns == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}
	for _, existing := range e.spaces {
		if existing == ns {
			return errors.New(errors.PhaseHost, errors.KindRegistration).
				Detail("namespace %q already registered", ns).
				Build()
		}
	}

	funcs := h.Functions()
	seen := make(map[string]bool, len(funcs))
	builder := e.runtime.NewHostModuleBuilder(ns)
	for _, fn := range funcs {
		if fn.Fn == nil || fn.Name == "" {
			return errors.Registration(errors.PhaseHost, ns, fn.Name, errors.InvalidInput(errors.PhaseHost, "incomplete host function"))
		}
		if seen[fn.Name] {
			return errors.New(errors.PhaseHost, errors.KindRegistration).
				Import(ns, fn.Name).
				Detail("duplicate host function").
				Build()
		}
		seen[fn.Name] = true
		builder = builder.NewFunctionBuilder().
			WithGoModuleFunction(fn.Fn, fn.Params, fn.Results).
			WithName(fn.Name).
			Export(fn.Name)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return errors.Wrap(errors.PhaseHost, errors.KindRegistration, err, "instantiate host module "+ns)
	}

	for _, fn := range funcs {
		e.table.entries[importKey(ns, fn.Name)] = Signature{Params: fn.Params, Results: fn.Results}
	}
	e.spaces = append(e.spaces, ns)

	Logger().Debug("host module registered",
		zap.String("namespace", ns),
		zap.Int("functions", len(funcs)))
	return nil
}

// Imports returns the import table built from every registered host module.
func (e *Engine) Imports() ImportTable {
	return e.table
}

// Close releases the runtime and every module compiled or instantiated by it.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}
