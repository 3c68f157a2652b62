package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"insertable-generator/internal/common"
	"insertable-generator/internal/gen"
	"insertable-generator/internal/metadata"
	"insertable-generator/internal/plan"
)

// Entry pairs a resolved plan with the file generated from it.
type Entry struct {
	Plan *plan.ResolvedPlan
	File *gen.GeneratedFile
}

// Build creates a manifest from the entries of a run. Packages without a
// generated file are left out. File paths are made relative to baseDir when
// possible.
func Build(entries []Entry, mode metadata.ChangesetMode, baseDir string) *Manifest {
	m := &Manifest{
		Version:       Version,
		Generator:     common.GeneratorName,
		ChangesetMode: string(mode),
		Packages:      []Package{},
	}

	for _, e := range entries {
		if e.File == nil || e.Plan == nil {
			continue
		}

		pkg := Package{
			Path: e.Plan.Package.Path,
			File: relPath(baseDir, e.File.Path()),
		}

		for i := range e.Plan.Projections {
			pkg.Types = append(pkg.Types, buildType(&e.Plan.Projections[i]))
		}

		m.Packages = append(m.Packages, pkg)
	}

	sort.Slice(m.Packages, func(i, j int) bool { return m.Packages[i].Path < m.Packages[j].Path })

	return m
}

func buildType(p *plan.Projection) Type {
	t := Type{
		Source:     p.Source.ID.Name,
		Projection: p.Name,
		Fields:     []Field{},
	}

	for _, a := range p.Metadata.Annotations() {
		switch a := a.(type) {
		case metadata.TableBinding:
			t.Table = a.Raw
			t.TableForm = a.Form.String()
		case metadata.ChangesetConfig:
			t.Changeset = a.Raw
			t.ChangesetSynthesized = a.Synthesized
		case metadata.ExclusionList:
			t.Exclusions = StringOrArray(a.Names)
		}
	}

	for _, f := range p.Excluded {
		t.Excluded = append(t.Excluded, f.Name)
	}

	for _, f := range p.Fields {
		field := Field{
			Name:   f.Name,
			Type:   f.Source.TypeExpr,
			Column: f.Source.Column,
			Copy:   f.Strategy.String(),
		}

		if f.Strategy == plan.CopyArray {
			field.Elem = f.Elem.String()
		}

		if f.Source.Name != f.Name {
			field.Source = f.Source.Name
		}

		t.Fields = append(t.Fields, field)
	}

	return t
}

func relPath(base, path string) string {
	if base == "" {
		return filepath.ToSlash(path)
	}

	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	return filepath.ToSlash(rel)
}

// LoadFile loads and parses a manifest file from the given path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest

	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
	}

	if m.Version == "" {
		m.Version = Version
	}

	if m.Version != Version {
		return nil, fmt.Errorf("unsupported manifest version %q", m.Version)
	}

	return &m, nil
}

// Marshal serializes a Manifest to YAML.
func Marshal(m *Manifest) ([]byte, error) {
	return yaml.Marshal(m)
}

// WriteFile writes a Manifest to the given path.
func WriteFile(m *Manifest, path string) error {
	data, err := Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest file %s: %w", path, err)
	}

	return nil
}
