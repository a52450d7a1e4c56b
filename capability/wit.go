package capability

import (
	_ "embed"
	"regexp"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/framehost/engine"
	"github.com/wippyai/framehost/errors"
)

//go:embed agave.wit
var agaveWIT string

// Declaration is one capability as declared in WIT.
type Declaration struct {
	// Name is the core import name (snake_case).
	Name      string
	Signature engine.Signature
}

var funcPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// ParseDeclarations extracts function declarations from WIT text, in
// declaration order, and lowers their types to core value types.
func ParseDeclarations(witText string) ([]Declaration, error) {
	var decls []Declaration

	for _, match := range funcPattern.FindAllStringSubmatch(witText, -1) {
		name := importName(match[1])
		paramsStr := strings.TrimSpace(match[2])
		resultStr := strings.TrimSpace(match[3])

		var sig engine.Signature
		for _, p := range splitParams(paramsStr) {
			typStr := p
			if idx := strings.LastIndex(p, ":"); idx != -1 {
				typStr = strings.TrimSpace(p[idx+1:])
			}
			vt, err := coreType(typStr)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, name+": param "+typStr)
			}
			sig.Params = append(sig.Params, vt)
		}

		if resultStr != "" && resultStr != "()" {
			vt, err := coreType(resultStr)
			if err != nil {
				return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, name+": result "+resultStr)
			}
			sig.Results = []api.ValueType{vt}
		}

		decls = append(decls, Declaration{Name: name, Signature: sig})
	}

	if len(decls) == 0 {
		return nil, errors.InvalidInput(errors.PhaseParse, "no functions found in WIT text")
	}
	return decls, nil
}

// Declarations returns the built-in agave capability table.
func Declarations() []Declaration {
	decls, err := ParseDeclarations(agaveWIT)
	if err != nil {
		panic(err)
	}
	return decls
}

func importName(kebab string) string {
	return strings.ReplaceAll(kebab, "-", "_")
}

// coreType lowers a scalar WIT type to the single core value type it
// occupies. Compound types have no place in a flat capability call.
func coreType(s string) (api.ValueType, error) {
	t, err := wit.ParseType(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	switch t.(type) {
	case wit.Bool, wit.S8, wit.U8, wit.S16, wit.U16, wit.S32, wit.U32, wit.Char:
		return api.ValueTypeI32, nil
	case wit.S64, wit.U64:
		return api.ValueTypeI64, nil
	case wit.F32:
		return api.ValueTypeF32, nil
	case wit.F64:
		return api.ValueTypeF64, nil
	}
	return 0, errors.Unsupported(errors.PhaseParse, "non-scalar capability type "+s)
}

// splitParams splits a parameter list on top-level commas.
func splitParams(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(', '<':
			depth++
			current.WriteRune(ch)
		case ')', '>':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}
	return result
}
