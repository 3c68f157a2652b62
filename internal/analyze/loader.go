package analyze

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"sort"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// Analyzer loads Go packages and describes their declarations.
type Analyzer struct {
	dir string
}

// NewAnalyzer creates an Analyzer resolving patterns relative to dir.
// An empty dir means the current directory.
func NewAnalyzer(dir string) *Analyzer {
	return &Analyzer{dir: dir}
}

// LoadPackages loads the packages matching patterns, sorted by import path.
// Patterns are standard Go package patterns (e.g., "./...", "insertable-generator/examples/orders").
//
// Type errors are tolerated: a stale generated file may no longer type-check,
// and field types are only used as source text.
func (a *Analyzer) LoadPackages(ctx context.Context, patterns ...string) ([]*Package, error) {
	cfg := &packages.Config{
		Mode:    LoadMode,
		Context: ctx,
		Dir:     a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if e.Kind == packages.TypeError {
				continue
			}

			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	out := make([]*Package, 0, len(pkgs))

	for _, pkg := range pkgs {
		if len(pkg.GoFiles) == 0 {
			continue
		}

		p := newPackage(pkg.PkgPath, pkg.Name, filepath.Dir(pkg.GoFiles[0]))
		buildPackage(p, source{
			fset:        pkg.Fset,
			files:       pkg.Syntax,
			info:        pkg.TypesInfo,
			importNames: importNames(pkg),
		})
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out, nil
}

func importNames(pkg *packages.Package) map[string]string {
	names := make(map[string]string)
	if pkg.Types == nil {
		return names
	}

	for _, imp := range pkg.Types.Imports() {
		names[imp.Path()] = imp.Name()
	}

	return names
}

// ParseSource parses a single file without type checking. The package path
// is the package name.
func ParseSource(filename string, src string) (*Package, error) {
	return ParseFiles(map[string]string{filename: src})
}

// ParseFiles parses the files of one package without type checking, in
// filename order. The package path is the package name.
func ParseFiles(files map[string]string) (*Package, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to parse")
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}

	sort.Strings(names)

	fset := token.NewFileSet()
	parsed := make([]*ast.File, 0, len(names))

	for _, name := range names {
		f, err := parser.ParseFile(fset, name, files[name], parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		if len(parsed) > 0 && f.Name.Name != parsed[0].Name.Name {
			return nil, fmt.Errorf("%s: package %s, expected %s", name, f.Name.Name, parsed[0].Name.Name)
		}

		parsed = append(parsed, f)
	}

	pkgName := parsed[0].Name.Name
	p := newPackage(pkgName, pkgName, filepath.Dir(names[0]))
	buildPackage(p, source{fset: fset, files: parsed})

	return p, nil
}
