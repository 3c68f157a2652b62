package analyze

import (
	"go/token"
	"reflect"
	"strings"

	"insertable-generator/internal/common"
	"insertable-generator/internal/match"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "insertable-generator/examples/orders"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// FieldShape is the outermost constructor of a field type, which decides how
// the field is duplicated.
type FieldShape int

const (
	ShapeValue   FieldShape = iota // copied by assignment
	ShapeSlice                     // []T
	ShapeMap                       // map[K]V
	ShapePointer                   // *T
	ShapeArray                     // [N]T with T a slice, map or pointer
)

// String returns a human-readable representation of the FieldShape.
func (s FieldShape) String() string {
	switch s {
	case ShapeValue:
		return "value"
	case ShapeSlice:
		return "slice"
	case ShapeMap:
		return "map"
	case ShapePointer:
		return "pointer"
	case ShapeArray:
		return "array"
	default:
		return common.UnknownStr
	}
}

// FieldInfo describes a struct field.
type FieldInfo struct {
	Name       string            // Go field name, the implied name for embedded fields
	Column     string            // db tag name, else snake_case of Name
	TypeExpr   string            // printed type expression
	RawTag     string            // tag literal including quotes, empty if untagged
	Tag        reflect.StructTag // unquoted tag
	Shape      FieldShape        // outermost constructor of the type
	Elem       FieldShape        // element shape when Shape is ShapeArray
	Cloner     bool              // the type has a method Clone() returning the type itself
	Embedded   bool              // whether the field is embedded (anonymous)
	Exported   bool              // whether the field is exported
	Index      int               // field index in the struct
	Qualifiers []string          // package names referenced by TypeExpr
	Idents     []string          // unqualified names referenced by TypeExpr
	Pos        token.Position
}

// Directive is a `//marker content` line from a type's doc comment.
type Directive struct {
	Marker  string // e.g., "insertable:table"
	Content string // text after the marker, trimmed
	Pos     token.Position
}

// Text returns the directive as it appears in source.
func (d Directive) Text() string {
	if d.Content == "" {
		return "//" + d.Marker
	}

	return "//" + d.Marker + " " + d.Content
}

// ImportSpec is an import of the file declaring a type.
type ImportSpec struct {
	Name      string // explicit import name, empty if none
	Path      string // import path
	LocalName string // name the file refers to the package by
}

// SourceType describes a type declaration.
type SourceType struct {
	ID            TypeID
	Pos           token.Position
	Filename      string
	Kind          string // "struct", "interface", "alias" or "defined"
	HasTypeParams bool
	Directives    []Directive
	Fields        []FieldInfo // struct fields in declaration order
	Imports       []ImportSpec
}

// IsStruct returns true if the type is declared as a struct.
func (t *SourceType) IsStruct() bool {
	return t.Kind == KindStruct
}

// DirectivesFor returns the directives with the given marker in source order.
func (t *SourceType) DirectivesFor(marker string) []Directive {
	var out []Directive

	for _, d := range t.Directives {
		if d.Marker == marker {
			out = append(out, d)
		}
	}

	return out
}

// HasDirective returns true if the type carries a directive with the given marker.
func (t *SourceType) HasDirective(marker string) bool {
	return len(t.DirectivesFor(marker)) > 0
}

// Field returns the field with the given Go name, or nil.
func (t *SourceType) Field(name string) *FieldInfo {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}

	return nil
}

// HasDotImport reports whether the declaring file has an import named ".".
func (t *SourceType) HasDotImport() bool {
	_, ok := t.Import(".")
	return ok
}

// Import returns the import the declaring file refers to by localName.
func (t *SourceType) Import(localName string) (ImportSpec, bool) {
	for _, imp := range t.Imports {
		if imp.LocalName == localName {
			return imp, true
		}
	}

	return ImportSpec{}, false
}

// Type kinds recorded in SourceType.Kind.
const (
	KindStruct    = "struct"
	KindInterface = "interface"
	KindAlias     = "alias"
	KindDefined   = "defined"
)

// Package holds the analyzed declarations of one package.
type Package struct {
	Path  string        // import path
	Name  string        // package name
	Dir   string        // directory holding the sources
	Types []*SourceType // declared types in file and source order

	// Declared holds every package-level name, except those declared in
	// files previously written by this tool.
	Declared map[string]bool
	// Methods maps a receiver type name to its method names.
	Methods map[string][]string
	// OutputFiles lists files previously written by this tool.
	OutputFiles []string
}

func newPackage(path, name, dir string) *Package {
	return &Package{
		Path:     path,
		Name:     name,
		Dir:      dir,
		Declared: make(map[string]bool),
		Methods:  make(map[string][]string),
	}
}

// Lookup returns the declared type with the given name, or nil.
func (p *Package) Lookup(name string) *SourceType {
	for _, t := range p.Types {
		if t.ID.Name == name {
			return t
		}
	}

	return nil
}

// Marked returns the types carrying the given directive marker.
func (p *Package) Marked(marker string) []*SourceType {
	var out []*SourceType

	for _, t := range p.Types {
		if t.HasDirective(marker) {
			out = append(out, t)
		}
	}

	return out
}

// HasMethod reports whether typeName declares a method called method.
func (p *Package) HasMethod(typeName, method string) bool {
	for _, m := range p.Methods[typeName] {
		if m == method {
			return true
		}
	}

	return false
}

// columnName returns the db tag name if present, else the snake_case field name.
func columnName(name string, tag reflect.StructTag) string {
	if v := tag.Get("db"); v != "" {
		if col, _, _ := strings.Cut(v, ","); col != "" && col != "-" {
			return col
		}
	}

	return match.SnakeCase(name)
}
