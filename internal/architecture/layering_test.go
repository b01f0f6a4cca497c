// Package architecture holds tests that inspect the module's own source and
// types to enforce the layering contract: handler -> service -> repository
// contract, with storage implementations kept behind the domain interface.
// It has no non-test files and is never linked into the binary.
package architecture

import (
	"bufio"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// Package paths relative to the module root.
const (
	DomainPkg     = "internal/domain"
	ServicePkg    = "internal/app/service"
	HandlerPkg    = "internal/infrastructure/http/handler"
	HTTPPkg       = "internal/infrastructure/http"
	RepositoryPkg = "internal/infrastructure/repository"
)

// Rule forbids From (and its subpackages) from importing any package under Forbidden.
type Rule struct {
	From      string
	Forbidden []string
}

// LayerRules is the import contract between layers.
var LayerRules = []Rule{
	{From: HandlerPkg, Forbidden: []string{RepositoryPkg}},
	{From: ServicePkg, Forbidden: []string{HTTPPkg, RepositoryPkg}},
	{From: RepositoryPkg, Forbidden: []string{ServicePkg, HTTPPkg}},
	{From: DomainPkg, Forbidden: []string{"internal/app", "internal/infrastructure", "internal/architecture"}},
}

// Graph maps each package of the module to the module packages it imports.
// Test files are excluded.
type Graph map[string][]string

// LoadGraph parses the import clauses of every non-test Go file under root,
// skipping directories whose name starts with "_" or ".".
func LoadGraph(root string) (Graph, error) {
	modulePath, err := ModulePath(filepath.Join(root, "go.mod"))
	if err != nil {
		return nil, err
	}

	g := make(Graph)
	fset := token.NewFileSet()
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "vendor") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		pkg := filepath.ToSlash(rel)
		if _, ok := g[pkg]; !ok {
			g[pkg] = nil
		}

		for _, imp := range f.Imports {
			p := strings.Trim(imp.Path.Value, `"`)
			if p != modulePath && !strings.HasPrefix(p, modulePath+"/") {
				continue
			}
			dep := strings.TrimPrefix(strings.TrimPrefix(p, modulePath), "/")
			if !slices.Contains(g[pkg], dep) {
				g[pkg] = append(g[pkg], dep)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for pkg := range g {
		sort.Strings(g[pkg])
	}
	return g, nil
}

// ModulePath reads the module directive of a go.mod file.
func ModulePath(gomod string) (string, error) {
	f, err := os.Open(gomod)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(line, "module "); ok {
			return strings.Trim(strings.TrimSpace(rest), `"`), nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%s: no module directive", gomod)
}

func within(pkg, prefix string) bool {
	return pkg == prefix || strings.HasPrefix(pkg, prefix+"/")
}

// Violations lists every import that breaks one of rules, as "from -> dep".
func (g Graph) Violations(rules []Rule) []string {
	var out []string
	for pkg, deps := range g {
		for _, rule := range rules {
			if !within(pkg, rule.From) {
				continue
			}
			for _, dep := range deps {
				for _, forbidden := range rule.Forbidden {
					// a package may always import its own subtree
					if within(dep, forbidden) && !within(dep, rule.From) && !within(pkg, forbidden) {
						out = append(out, pkg+" -> "+dep)
					}
				}
			}
		}
	}
	sort.Strings(out)
	return slices.Compact(out)
}

// ImportersOf lists packages importing any package whose last path element is name.
func (g Graph) ImportersOf(name string) []string {
	var out []string
	for pkg, deps := range g {
		for _, dep := range deps {
			if filepath.Base(dep) == name {
				out = append(out, pkg+" -> "+dep)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Cycle returns one import cycle as a path that starts and ends with the same
// package, or nil when the graph is acyclic.
func (g Graph) Cycle() []string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(g))
	var stack []string

	var visit func(pkg string) []string
	visit = func(pkg string) []string {
		state[pkg] = active
		stack = append(stack, pkg)
		for _, dep := range g[pkg] {
			switch state[dep] {
			case active:
				i := slices.Index(stack, dep)
				return append(slices.Clone(stack[i:]), dep)
			case unvisited:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[pkg] = done
		return nil
	}

	pkgs := make([]string, 0, len(g))
	for pkg := range g {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)

	for _, pkg := range pkgs {
		if state[pkg] == unvisited {
			if cycle := visit(pkg); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// ExportedFields lists the exported fields of the struct v points to or holds.
func ExportedFields(v any) []string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var out []string
	for i := range t.NumField() {
		if f := t.Field(i); f.IsExported() {
			out = append(out, t.Name()+"."+f.Name)
		}
	}
	return out
}

// MethodsWithoutPrefix lists methods of the interface type iface whose names
// start with none of prefixes.
func MethodsWithoutPrefix(iface reflect.Type, prefixes ...string) []string {
	var out []string
	for i := range iface.NumMethod() {
		name := iface.Method(i).Name
		ok := false
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				ok = true
				break
			}
		}
		if !ok {
			out = append(out, name)
		}
	}
	return out
}

// ExportedStructs lists exported struct type names declared in the non-test
// files of dir.
func ExportedStructs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	fset := token.NewFileSet()
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}

		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, err
		}

		for _, decl := range f.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				if _, isStruct := ts.Type.(*ast.StructType); isStruct && ts.Name.IsExported() {
					out = append(out, ts.Name.Name)
				}
			}
		}
	}
	sort.Strings(out)
	return out, nil
}
