package engine

import (
	"context"
	"encoding/hex"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/wippyai/framehost/errors"
)

// Module is a compiled guest whose imports all resolve against the
// engine's import table.
type Module struct {
	engine   *Engine
	compiled wazero.CompiledModule
	exports  map[string]api.FunctionDefinition
	digest   [32]byte
	size     int
}

// Load compiles wasm and checks every import it declares against the
// import table. An import that is absent, or present with a different
// signature, fails the load with a *errors.MissingImportsError listing all
// offenders. There is no partial instantiation.
func (e *Engine) Load(ctx context.Context, wasm []byte) (*Module, error) {
	if len(wasm) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty guest binary")
	}

	compiled, err := e.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile guest", err)
	}

	if missing := e.validateImports(compiled); missing != nil {
		_ = compiled.Close(ctx)
		Logger().Warn("guest rejected",
			zap.Int("missing", len(missing.Imports)),
			zap.Int("mismatched", len(missing.Mismatches)))
		return nil, missing
	}

	m := &Module{
		engine:   e,
		compiled: compiled,
		exports:  compiled.ExportedFunctions(),
		digest:   blake3.Sum256(wasm),
		size:     len(wasm),
	}

	Logger().Info("guest loaded",
		zap.String("digest", m.Digest()),
		zap.Int("bytes", m.size),
		zap.Int("imports", len(compiled.ImportedFunctions())),
		zap.Int("exports", len(m.exports)))
	return m, nil
}

func (e *Engine) validateImports(compiled wazero.CompiledModule) *errors.MissingImportsError {
	result := &errors.MissingImportsError{}

	for _, def := range compiled.ImportedFunctions() {
		ns, name, _ := def.Import()
		sig, ok := e.table.Lookup(ns, name)
		if !ok {
			result.Imports = append(result.Imports, errors.MissingImport{Namespace: ns, Function: name})
			continue
		}
		if !sig.Matches(def.ParamTypes(), def.ResultTypes()) {
			result.Mismatches = append(result.Mismatches, errors.SignatureMismatch{
				Namespace: ns,
				Function:  name,
				Want:      sig.String(),
				Got:       formatSignature(def.ParamTypes(), def.ResultTypes()),
			})
		}
	}

	// the host exports no memories; an imported one can never resolve
	for _, def := range compiled.ImportedMemories() {
		ns, name, _ := def.Import()
		result.Imports = append(result.Imports, errors.MissingImport{Namespace: ns, Function: name})
	}

	if result.Empty() {
		return nil
	}
	return result
}

// Digest returns the hex BLAKE3 digest of the guest binary.
func (m *Module) Digest() string {
	return hex.EncodeToString(m.digest[:])
}

// Size returns the guest binary size in bytes.
func (m *Module) Size() int {
	return m.size
}

// ExportNames returns the names of the exported functions, sorted.
func (m *Module) ExportNames() []string {
	names := make([]string, 0, len(m.exports))
	for name := range m.exports {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Export returns the signature of an exported function.
func (m *Module) Export(name string) (Signature, bool) {
	def, ok := m.exports[name]
	if !ok {
		return Signature{}, false
	}
	return Signature{Params: def.ParamTypes(), Results: def.ResultTypes()}, true
}

// InstanceConfig holds configuration for module instantiation
type InstanceConfig struct {
	Name string
}

// Instantiate creates the guest instance. No export is invoked: the caller
// decides when the start export runs.
func (m *Module) Instantiate(ctx context.Context, cfg *InstanceConfig) (*Instance, error) {
	name := "guest"
	if cfg != nil && cfg.Name != "" {
		name = cfg.Name
	}

	modCfg := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions()

	mod, err := m.engine.runtime.InstantiateModule(ctx, m.compiled, modCfg)
	if err != nil {
		return nil, errors.Instantiation(err)
	}
	return &Instance{module: m, mod: mod}, nil
}

// Close releases the compiled module.
func (m *Module) Close(ctx context.Context) error {
	return m.compiled.Close(ctx)
}
