package gen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"text/template"

	"golang.org/x/tools/imports"

	"insertable-generator/internal/common"
	"insertable-generator/internal/plan"
)

// DefaultFilename is the name of the generated file in each package.
const DefaultFilename = "insertable_gen.go"

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Filename is the name of the generated file inside the package directory.
	Filename string
	// DebugUnformatted writes the raw source next to the output when formatting fails.
	DebugUnformatted bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Filename:         DefaultFilename,
		DebugUnformatted: true,
	}
}

// Generator generates Go code from a resolved plan.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	if config.Filename == "" {
		config.Filename = DefaultFilename
	}

	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Dir is the package directory.
	Dir string
	// Filename is the name of the file (e.g., "insertable_gen.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Path returns the location of the file on disk.
func (f *GeneratedFile) Path() string {
	return filepath.Join(f.Dir, f.Filename)
}

// Generate renders every projection of the plan into a single file.
// It returns nil when the plan has no projections, and refuses plans
// carrying error diagnostics.
func (g *Generator) Generate(p *plan.ResolvedPlan) (*GeneratedFile, error) {
	if p.Diagnostics.HasErrors() {
		return nil, fmt.Errorf("plan for %s has errors: %w", p.Package.Path, p.Diagnostics.Error())
	}

	if len(p.Projections) == 0 {
		return nil, nil
	}

	data, err := g.buildTemplateData(p)
	if err != nil {
		return nil, fmt.Errorf("generating %s: %w", p.Package.Path, err)
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	file := &GeneratedFile{
		Dir:      p.Package.Dir,
		Filename: g.config.Filename,
	}

	formatted, err := imports.Process(file.Path(), buf.Bytes(), &imports.Options{
		FormatOnly: true,
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
	})
	if err != nil {
		if g.config.DebugUnformatted {
			_ = writeDebugUnformatted(file.Dir, file.Filename, buf.Bytes())
		}

		file.Content = buf.Bytes()

		return file, fmt.Errorf("formatting code: %w", err)
	}

	file.Content = formatted

	return file, nil
}

type templateData struct {
	Header      string
	PackageName string
	Imports     []importSpec
	Types       []typeData
}

type importSpec struct {
	Alias string
	Path  string
}

type typeData struct {
	StructDef   string
	Name        string
	Source      string
	Receiver    string
	ByValue     string
	ByReference string
	ValueBody   string
	RefBody     string
}

func (g *Generator) buildTemplateData(p *plan.ResolvedPlan) (*templateData, error) {
	data := &templateData{
		Header:      common.GeneratedHeader,
		PackageName: p.Package.Name,
	}

	specs, err := mergeImports(p.Projections)
	if err != nil {
		return nil, err
	}

	data.Imports = specs

	for i := range p.Projections {
		proj := &p.Projections[i]
		n := pickNames(proj)

		data.Types = append(data.Types, typeData{
			StructDef:   GenerateStruct(proj),
			Name:        proj.Name,
			Source:      proj.Source.ID.Name,
			Receiver:    n.recv,
			ByValue:     p.ByValueMethod,
			ByReference: p.ByReferenceMethod,
			ValueBody:   byValueBody(proj, n),
			RefBody:     byReferenceBody(proj, n),
		})
	}

	return data, nil
}

// mergeImports collects the imports of all projections. Two different
// packages referred to by the same name cannot share one file.
func mergeImports(projections []plan.Projection) ([]importSpec, error) {
	byName := make(map[string]string)

	var out []importSpec

	for _, proj := range projections {
		for _, imp := range proj.Imports {
			if path, ok := byName[imp.LocalName]; ok {
				if path != imp.Path {
					return nil, fmt.Errorf("packages %s and %s are both referred to as %s",
						path, imp.Path, imp.LocalName)
				}

				continue
			}

			byName[imp.LocalName] = imp.Path
			out = append(out, importSpec{Alias: imp.Name, Path: imp.Path})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}

		return out[i].Alias < out[j].Alias
	})

	return out, nil
}

var fileTemplate = template.Must(template.New("insertable").Parse(`{{.Header}}

package {{.PackageName}}
{{if .Imports}}
import (
{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{end}})
{{end}}{{range .Types}}
{{.StructDef}}
// {{.ByValue}} returns the {{.Name}} projection of {{.Receiver}}.
func ({{.Receiver}} {{.Source}}) {{.ByValue}}() {{.Name}} {
{{.ValueBody}}}

// {{.ByReference}} returns the {{.Name}} projection of *{{.Receiver}}. Slices, maps
// and pointers, alone or as array elements, are copied one level deep into new
// storage, and fields whose type has a Clone method are cloned. Any other field
// is assigned, so references it holds are shared with {{.Receiver}}.
func ({{.Receiver}} *{{.Source}}) {{.ByReference}}() {{.Name}} {
{{.RefBody}}}
{{end}}`))
