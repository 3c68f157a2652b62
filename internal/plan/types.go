package plan

import (
	"insertable-generator/internal/analyze"
	"insertable-generator/internal/common"
	"insertable-generator/internal/diagnostic"
	"insertable-generator/internal/metadata"
)

// ProjectionPrefix is prepended to the source type name.
const ProjectionPrefix = "Insertable"

// Default conversion method names.
const (
	DefaultByValueMethod     = "IntoInsertable"
	DefaultByReferenceMethod = "ToInsertable"
)

// Config holds configuration for the resolution process.
type Config struct {
	// Metadata configures annotation extraction.
	Metadata metadata.Options
	// ByValueMethod names the conversion with a value receiver.
	ByValueMethod string
	// ByReferenceMethod names the conversion with a pointer receiver.
	ByReferenceMethod string
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() Config {
	return Config{
		Metadata:          metadata.Options{ChangesetMode: metadata.ChangesetExplicit},
		ByValueMethod:     DefaultByValueMethod,
		ByReferenceMethod: DefaultByReferenceMethod,
	}
}

// ResolvedPlan is the final output of the resolution pipeline for one package.
// It contains everything needed for code generation.
type ResolvedPlan struct {
	// Package is the analyzed source package.
	Package *analyze.Package
	// Projections are the successfully resolved types, in source order.
	Projections []Projection
	// ByValueMethod and ByReferenceMethod name the emitted conversions.
	ByValueMethod     string
	ByReferenceMethod string
	// Diagnostics contains all warnings and errors from resolution.
	Diagnostics diagnostic.Diagnostics
}

// Projection describes a generated Insertable<Name> type.
type Projection struct {
	// Source is the annotated type.
	Source *analyze.SourceType
	// Name of the generated type.
	Name string
	// Fields in source order.
	Fields []ProjectedField
	// Excluded fields in source order.
	Excluded []analyze.FieldInfo
	// Metadata carried onto the generated type.
	Metadata metadata.Metadata
	// Imports referenced by the projected field types, sorted by path.
	Imports []analyze.ImportSpec
}

// Directives returns the directive lines carried onto the generated type.
func (p *Projection) Directives() []string {
	return []string{p.Metadata.Table.Directive(), p.Metadata.Changeset.Directive()}
}

// ProjectedField is a field of a projection.
type ProjectedField struct {
	// Name is the exported field name.
	Name string
	// Source is the originating field.
	Source analyze.FieldInfo
	// Strategy describes how the by-reference conversion duplicates the field.
	Strategy CopyStrategy
	// Elem is the strategy applied to each element when Strategy is CopyArray.
	Elem CopyStrategy
}

// CopyStrategy describes how the by-reference conversion duplicates a field.
type CopyStrategy int

const (
	// CopyAssign - plain assignment; the value is copied by Go semantics.
	CopyAssign CopyStrategy = iota
	// CopySlice - a new backing array holding the same elements.
	CopySlice
	// CopyMap - a new map holding the same entries.
	CopyMap
	// CopyPointer - a new pointee holding a copy of the old one.
	CopyPointer
	// CopyClone - the result of the type's own Clone method.
	CopyClone
	// CopyArray - an array whose elements are duplicated one by one.
	CopyArray
)

// String returns a human-readable representation of the CopyStrategy.
func (s CopyStrategy) String() string {
	switch s {
	case CopyAssign:
		return "assign"
	case CopySlice:
		return "slice_clone"
	case CopyMap:
		return "map_clone"
	case CopyPointer:
		return "pointer_clone"
	case CopyClone:
		return "clone_method"
	case CopyArray:
		return "array_clone"
	default:
		return common.UnknownStr
	}
}

// strategyFor selects the copy strategy of a field. A Clone method takes
// precedence over the shape of the type.
func strategyFor(f analyze.FieldInfo) (strategy, elem CopyStrategy) {
	if f.Cloner {
		return CopyClone, CopyAssign
	}

	if f.Shape == analyze.ShapeArray {
		return CopyArray, shapeStrategy(f.Elem)
	}

	return shapeStrategy(f.Shape), CopyAssign
}

func shapeStrategy(shape analyze.FieldShape) CopyStrategy {
	switch shape {
	case analyze.ShapeSlice:
		return CopySlice
	case analyze.ShapeMap:
		return CopyMap
	case analyze.ShapePointer:
		return CopyPointer
	default:
		return CopyAssign
	}
}

// UsesMapsPackage reports whether the by-reference conversion calls maps.Clone.
func (p *Projection) UsesMapsPackage() bool {
	for _, f := range p.Fields {
		if f.Strategy == CopyArray && f.Elem == CopyMap {
			return true
		}
	}

	return false
}
