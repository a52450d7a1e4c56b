package engine

import (
	"slices"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero/api"
)

// HostFunc is a single function a host module exports to the guest.
type HostFunc struct {
	Fn      api.GoModuleFunc
	Name    string
	Params  []api.ValueType
	Results []api.ValueType
}

// HostModule is a namespace of host functions bound once at instantiation.
type HostModule interface {
	// Namespace returns the import module name (e.g., "agave").
	Namespace() string
	// Functions returns every function the namespace provides.
	Functions() []HostFunc
}

// Signature is the core type of an imported function.
type Signature struct {
	Params  []api.ValueType
	Results []api.ValueType
}

// Matches reports whether the given core types equal the signature.
func (s Signature) Matches(params, results []api.ValueType) bool {
	return slices.Equal(s.Params, params) && slices.Equal(s.Results, results)
}

// String formats the signature as "(i32, i32) -> i32".
func (s Signature) String() string {
	return formatSignature(s.Params, s.Results)
}

func formatSignature(params, results []api.ValueType) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(api.ValueTypeName(p))
	}
	b.WriteString(") -> ")
	switch len(results) {
	case 0:
		b.WriteString("()")
	case 1:
		b.WriteString(api.ValueTypeName(results[0]))
	default:
		b.WriteByte('(')
		for i, r := range results {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(api.ValueTypeName(r))
		}
		b.WriteByte(')')
	}
	return b.String()
}

// ImportTable is the static set of imports a guest may request,
// keyed by "namespace#name".
type ImportTable struct {
	entries map[string]Signature
}

func newImportTable() ImportTable {
	return ImportTable{entries: make(map[string]Signature)}
}

func importKey(namespace, name string) string {
	return namespace + "#" + name
}

// Lookup returns the declared signature of namespace#name.
func (t ImportTable) Lookup(namespace, name string) (Signature, bool) {
	sig, ok := t.entries[importKey(namespace, name)]
	return sig, ok
}

// Len returns the number of declared imports.
func (t ImportTable) Len() int {
	return len(t.entries)
}

// Names returns every declared "namespace#name", sorted.
func (t ImportTable) Names() []string {
	names := make([]string, 0, len(t.entries))
	for k := range t.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
