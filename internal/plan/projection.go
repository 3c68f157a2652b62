package plan

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"insertable-generator/internal/analyze"
	"insertable-generator/internal/diagnostic"
	"insertable-generator/internal/metadata"
)

const mapsPackage = "maps"

// ProjectionName returns the name of the projection of a source type.
func ProjectionName(source string) string {
	return ProjectionPrefix + source
}

// ExportName upper-cases the first rune of a field name.
func ExportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}

	return string(unicode.ToUpper(r)) + name[size:]
}

// Synthesize builds the projection of src from its filtered fields.
// Types and tags are carried verbatim; names are exported.
func Synthesize(src *analyze.SourceType, md metadata.Metadata, filtered FilterResult) (Projection, error) {
	p := Projection{
		Source:   src,
		Name:     ProjectionName(src.ID.Name),
		Excluded: filtered.Excluded,
		Metadata: md,
	}

	byName := make(map[string]string, len(filtered.Included))
	qualifiers := make(map[string]analyze.FieldInfo)

	for _, f := range filtered.Included {
		if f.Name == "_" {
			return Projection{}, diagnostic.UnsupportedShape(
				"blank field cannot be projected; exclude it by name").WithPos(f.Pos)
		}

		name := ExportName(f.Name)
		if prev, dup := byName[name]; dup {
			return Projection{}, diagnostic.UnsupportedShape(
				"fields %s and %s both project to %s", prev, f.Name, name).WithPos(f.Pos)
		}

		byName[name] = f.Name

		for _, q := range f.Qualifiers {
			if _, seen := qualifiers[q]; !seen {
				qualifiers[q] = f
			}
		}

		strategy, elem := strategyFor(f)

		p.Fields = append(p.Fields, ProjectedField{
			Name:     name,
			Source:   f,
			Strategy: strategy,
			Elem:     elem,
		})
	}

	imports, err := carriedImports(src, qualifiers)
	if err != nil {
		return Projection{}, err
	}

	if p.UsesMapsPackage() {
		if imports, err = withMapsPackage(src, imports); err != nil {
			return Projection{}, err
		}
	}

	p.Imports = imports

	return p, nil
}

// carriedImports resolves the package names used by projected field types
// against the imports of the declaring file.
func carriedImports(src *analyze.SourceType, qualifiers map[string]analyze.FieldInfo) ([]analyze.ImportSpec, error) {
	names := make([]string, 0, len(qualifiers))
	for q := range qualifiers {
		names = append(names, q)
	}

	sort.Strings(names)

	out := make([]analyze.ImportSpec, 0, len(names))

	for _, q := range names {
		imp, ok := src.Import(q)
		if !ok {
			f := qualifiers[q]
			return nil, diagnostic.UnsupportedShape(
				"type %s of field %s refers to package %s, which the file does not import", f.TypeExpr, f.Name, q).WithPos(f.Pos)
		}

		out = append(out, imp)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })

	return out, nil
}

// withMapsPackage adds the standard maps package used to duplicate map
// elements of arrays.
func withMapsPackage(src *analyze.SourceType, imports []analyze.ImportSpec) ([]analyze.ImportSpec, error) {
	for _, imp := range imports {
		if imp.LocalName != mapsPackage {
			continue
		}

		if imp.Path != mapsPackage {
			return nil, diagnostic.UnsupportedShape(
				"array of maps needs package maps, but %s is imported as maps", imp.Path)
		}

		return imports, nil
	}

	imports = append(imports, analyze.ImportSpec{Path: mapsPackage, LocalName: mapsPackage})
	sort.Slice(imports, func(i, j int) bool { return imports[i].Path < imports[j].Path })

	return imports, nil
}
