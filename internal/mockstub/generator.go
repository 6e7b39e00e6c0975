// Package mockstub generates a hand-rollable stub implementation for
// a Go interface, loaded via go/packages and go/types the same way the
// teacher's compiler tooling generates test doubles for interfaces
// across the codebase. Unlike a mocking-framework generator it emits
// one struct with a function field per method, not call-recording
// machinery — enough for an embedder to wire a no-op or custom
// Observer without depending on a third-party mock library.
package mockstub

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// GenOptions controls stub code generation.
type GenOptions struct {
	// InterfaceName is the interface to stub.
	InterfaceName string
	// PackageName is the generated package name. If empty, the target
	// package name with a "stub" suffix is used.
	PackageName string
	// Destination is the file path to write to. If empty, Generate
	// only returns the code.
	Destination string
	// SourcePatterns are the go/packages patterns searched for
	// InterfaceName. Defaults to ["./..."].
	SourcePatterns []string
	// BuildTags are passed through to go/packages.
	BuildTags []string
}

// Generate produces stub code implementing the named interface.
func Generate(opts GenOptions) (string, error) {
	if strings.TrimSpace(opts.InterfaceName) == "" {
		return "", errors.New("InterfaceName is required")
	}

	patterns := opts.SourcePatterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedCompiledGoFiles |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax,
	}
	if len(opts.BuildTags) > 0 {
		cfg.BuildFlags = append(cfg.BuildFlags, fmt.Sprintf("-tags=%s", strings.Join(opts.BuildTags, ",")))
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return "", err
	}

	if packages.PrintErrors(pkgs) > 0 {
		return "", errors.New("failed to load packages")
	}

	var (
		foundPkg  *packages.Package
		ifaceType *types.Interface
		ifaceObj  types.Object
	)

	for _, p := range pkgs {
		if p.Types == nil || p.Types.Scope() == nil {
			continue
		}

		obj := p.Types.Scope().Lookup(opts.InterfaceName)
		if obj == nil {
			continue
		}

		if t, ok := obj.Type().Underlying().(*types.Interface); ok {
			ifaceType = t.Complete()
			ifaceObj = obj
			foundPkg = p

			break
		}
	}

	if foundPkg == nil || ifaceType == nil {
		return "", fmt.Errorf("interface %q not found in provided source patterns", opts.InterfaceName)
	}

	genPkgName := opts.PackageName
	if genPkgName == "" {
		genPkgName = foundPkg.Name + "stub"
	}

	code, err := renderStub(genPkgName, ifaceObj, ifaceType)
	if err != nil {
		return "", err
	}

	if opts.Destination != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Destination), 0o755); err != nil {
			return "", err
		}

		if err := os.WriteFile(opts.Destination, []byte(code), 0o644); err != nil {
			return "", err
		}
	}

	return code, nil
}

func renderStub(pkg string, obj types.Object, iface *types.Interface) (string, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "package %s\n\n", pkg)

	name := obj.Name()
	stubName := name + "Stub"

	methods := collectMethods(iface)

	fmt.Fprintf(&buf, "// %s is a configurable stub implementation of %s.\n", stubName, name)
	fmt.Fprintf(&buf, "type %s struct {\n", stubName)

	for _, m := range methods {
		fmt.Fprintf(&buf, "\t%sFunc func(%s) (%s)\n", m.name, joinFieldList(m.params), joinFieldList(m.results))
	}

	buf.WriteString("}\n\n")

	for _, m := range methods {
		fmt.Fprintf(&buf, "func (s *%s) %s(%s) (%s) {\n", stubName, m.name, paramDecls(m.params), resultDecls(m.results))
		if len(m.results) == 0 {
			fmt.Fprintf(&buf, "\tif s.%sFunc != nil {\n\t\ts.%sFunc(%s)\n\t}\n", m.name, m.name, namesList(m.params))
			buf.WriteString("\treturn\n")
		} else {
			fmt.Fprintf(&buf, "\tif s.%sFunc != nil {\n\t\treturn s.%sFunc(%s)\n\t}\n", m.name, m.name, namesList(m.params))
			buf.WriteString("\treturn " + zeroValuesList(m.results) + "\n")
		}

		buf.WriteString("}\n\n")
	}

	fmted, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.String(), nil
	}

	return string(fmted), nil
}

type method struct {
	name    string
	params  []types.Type
	results []types.Type
}

func collectMethods(iface *types.Interface) []method {
	var ms []method

	for i := 0; i < iface.NumMethods(); i++ {
		m := iface.Method(i)
		sig := m.Type().(*types.Signature)
		ms = append(ms, method{
			name:    m.Name(),
			params:  tupleTypes(sig.Params()),
			results: tupleTypes(sig.Results()),
		})
	}

	sort.Slice(ms, func(i, j int) bool { return ms[i].name < ms[j].name })

	return ms
}

func tupleTypes(t *types.Tuple) []types.Type {
	if t == nil {
		return nil
	}

	out := make([]types.Type, t.Len())
	for i := 0; i < t.Len(); i++ {
		out[i] = t.At(i).Type()
	}

	return out
}

func joinFieldList(ts []types.Type) string {
	if len(ts) == 0 {
		return ""
	}

	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = types.TypeString(t, qualifier)
	}

	return strings.Join(parts, ", ")
}

func paramDecls(ts []types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = fmt.Sprintf("a%d %s", i, types.TypeString(t, qualifier))
	}

	return strings.Join(parts, ", ")
}

func resultDecls(ts []types.Type) string { return joinFieldList(ts) }

func namesList(ts []types.Type) string {
	parts := make([]string, len(ts))
	for i := range ts {
		parts[i] = fmt.Sprintf("a%d", i)
	}

	return strings.Join(parts, ", ")
}

func zeroValuesList(ts []types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = zeroValue(t)
	}

	return strings.Join(parts, ", ")
}

func zeroValue(t types.Type) string {
	switch ut := t.Underlying().(type) {
	case *types.Basic:
		switch ut.Kind() {
		case types.Bool:
			return "false"
		case types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
			types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64, types.Uintptr,
			types.Float32, types.Float64, types.Complex64, types.Complex128:
			return "0"
		case types.String:
			return "\"\""
		default:
			return "nil"
		}
	case *types.Pointer, *types.Slice, *types.Map, *types.Chan, *types.Signature, *types.Interface:
		return "nil"
	case *types.Array, *types.Struct:
		return fmt.Sprintf("%s{}", types.TypeString(t, qualifier))
	default:
		return "nil"
	}
}

func qualifier(p *types.Package) string {
	if p == nil {
		return ""
	}

	return p.Name()
}
