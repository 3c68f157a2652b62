package analyze

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/token"
	"go/types"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"insertable-generator/internal/common"
)

// source bundles the syntax of one package with optional type information.
type source struct {
	fset  *token.FileSet
	files []*ast.File
	info  *types.Info // nil when parsed without type checking
	// importNames maps import paths to package names, from type checking.
	importNames map[string]string
}

// buildPackage records the declarations of every file in src into pkg.
func buildPackage(pkg *Package, src source) {
	for _, f := range src.files {
		filename := src.fset.Position(f.Package).Filename
		if common.IsOwnOutput(f) {
			pkg.OutputFiles = append(pkg.OutputFiles, filename)
			continue
		}

		imports := fileImports(f, src.importNames)

		for _, decl := range f.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Recv == nil {
					pkg.declare(d.Name)
					continue
				}

				if recv := receiverName(d.Recv); recv != "" {
					pkg.Methods[recv] = append(pkg.Methods[recv], d.Name.Name)
				}

			case *ast.GenDecl:
				for _, spec := range d.Specs {
					switch s := spec.(type) {
					case *ast.ValueSpec:
						for _, n := range s.Names {
							pkg.declare(n)
						}

					case *ast.TypeSpec:
						pkg.declare(s.Name)

						st := describeType(pkg.Path, s, src)
						st.Filename = filename
						st.Directives = parseDirectives(src.fset, docFor(d, s))
						st.Imports = imports
						pkg.Types = append(pkg.Types, st)
					}
				}
			}
		}
	}
}

func (p *Package) declare(id *ast.Ident) {
	if id.Name != "_" {
		p.Declared[id.Name] = true
	}
}

// docFor returns the doc comment of a type spec. An ungrouped declaration
// keeps its comment on the GenDecl.
func docFor(d *ast.GenDecl, s *ast.TypeSpec) *ast.CommentGroup {
	if s.Doc != nil {
		return s.Doc
	}

	if !d.Lparen.IsValid() {
		return d.Doc
	}

	return nil
}

// parseDirectives extracts `//marker content` lines. A marker follows "//"
// without a space and contains a colon; other comment lines are ignored.
func parseDirectives(fset *token.FileSet, doc *ast.CommentGroup) []Directive {
	if doc == nil {
		return nil
	}

	var out []Directive

	for _, c := range doc.List {
		body, ok := strings.CutPrefix(c.Text, "//")
		if !ok || body == "" || body[0] == ' ' || body[0] == '\t' {
			continue
		}

		marker, content := body, ""
		if i := strings.IndexAny(body, " \t"); i >= 0 {
			marker, content = body[:i], strings.TrimSpace(body[i+1:])
		}

		if !strings.Contains(marker, ":") {
			continue
		}

		out = append(out, Directive{
			Marker:  marker,
			Content: content,
			Pos:     fset.Position(c.Pos()),
		})
	}

	return out
}

func describeType(pkgPath string, s *ast.TypeSpec, src source) *SourceType {
	st := &SourceType{
		ID:            TypeID{PkgPath: pkgPath, Name: s.Name.Name},
		Pos:           src.fset.Position(s.Name.Pos()),
		HasTypeParams: s.TypeParams != nil && len(s.TypeParams.List) > 0,
	}

	if s.Assign.IsValid() {
		st.Kind = KindAlias
		return st
	}

	switch t := s.Type.(type) {
	case *ast.StructType:
		st.Kind = KindStruct
		st.Fields = structFields(t, src)
	case *ast.InterfaceType:
		st.Kind = KindInterface
	default:
		st.Kind = KindDefined
	}

	return st
}

func structFields(st *ast.StructType, src source) []FieldInfo {
	var (
		fields []FieldInfo
		index  int
	)

	for _, field := range st.Fields.List {
		typeExpr := printExpr(src.fset, field.Type)
		shape, elem := shapeOf(field.Type, src.info)
		quals, idents := references(field.Type)
		cloner := hasClone(typeOf(field.Type, src.info))

		var rawTag, tag string
		if field.Tag != nil {
			rawTag = field.Tag.Value
			if unq, err := strconv.Unquote(rawTag); err == nil {
				tag = unq
			}
		}

		mk := func(name string, pos token.Pos, embedded bool) FieldInfo {
			f := FieldInfo{
				Name:       name,
				Column:     columnName(name, reflect.StructTag(tag)),
				TypeExpr:   typeExpr,
				RawTag:     rawTag,
				Tag:        reflect.StructTag(tag),
				Shape:      shape,
				Elem:       elem,
				Cloner:     cloner,
				Embedded:   embedded,
				Exported:   ast.IsExported(name),
				Index:      index,
				Qualifiers: quals,
				Idents:     idents,
				Pos:        src.fset.Position(pos),
			}
			index++

			return f
		}

		if len(field.Names) == 0 {
			fields = append(fields, mk(embeddedName(field.Type), field.Type.Pos(), true))
			continue
		}

		for _, n := range field.Names {
			fields = append(fields, mk(n.Name, n.Pos(), false))
		}
	}

	return fields
}

func printExpr(fset *token.FileSet, expr ast.Expr) string {
	var buf bytes.Buffer
	if err := format.Node(&buf, fset, expr); err != nil {
		return types.ExprString(expr)
	}

	return buf.String()
}

// shapeOf classifies the outermost constructor of a type expression. A named
// type is classified by its underlying type when type information is known.
// For ShapeArray, elem is the shape of the array elements.
func shapeOf(expr ast.Expr, info *types.Info) (shape, elem FieldShape) {
	switch t := ast.Unparen(expr).(type) {
	case *ast.ArrayType:
		if t.Len == nil {
			return ShapeSlice, ShapeValue
		}

		e, _ := shapeOf(t.Elt, info)

		return arrayOf(e)
	case *ast.MapType:
		return ShapeMap, ShapeValue
	case *ast.StarExpr:
		return ShapePointer, ShapeValue
	}

	typ := typeOf(expr, info)
	if typ == nil {
		return ShapeValue, ShapeValue
	}

	return shapeOfType(typ)
}

func shapeOfType(typ types.Type) (shape, elem FieldShape) {
	if _, ok := typ.(*types.TypeParam); ok {
		return ShapeValue, ShapeValue
	}

	switch u := typ.Underlying().(type) {
	case *types.Slice:
		return ShapeSlice, ShapeValue
	case *types.Map:
		return ShapeMap, ShapeValue
	case *types.Pointer:
		return ShapePointer, ShapeValue
	case *types.Array:
		e, _ := shapeOfType(u.Elem())

		return arrayOf(e)
	default:
		return ShapeValue, ShapeValue
	}
}

// arrayOf classifies a fixed-size array by its element shape. Only elements
// holding their own storage make the array more than a value.
func arrayOf(elem FieldShape) (FieldShape, FieldShape) {
	switch elem {
	case ShapeSlice, ShapeMap, ShapePointer:
		return ShapeArray, elem
	default:
		return ShapeValue, ShapeValue
	}
}

func typeOf(expr ast.Expr, info *types.Info) types.Type {
	if info == nil {
		return nil
	}

	return info.TypeOf(expr)
}

// hasClone reports whether typ has a method Clone() typ, with a value or a
// pointer receiver. Pointer and interface types are not considered: their
// method may be called on nil.
func hasClone(typ types.Type) bool {
	if typ == nil {
		return false
	}

	switch typ.Underlying().(type) {
	case *types.Pointer, *types.Interface:
		return false
	}

	sel := types.NewMethodSet(types.NewPointer(typ)).Lookup(nil, "Clone")
	if sel == nil {
		return false
	}

	sig, ok := sel.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 || sig.Variadic() {
		return false
	}

	return types.Identical(sig.Results().At(0).Type(), typ)
}

// references returns the sorted package names and unqualified identifiers a
// type expression refers to. Names of fields and parameters inside the
// expression are not references.
func references(expr ast.Expr) (quals, idents []string) {
	seenQual := make(map[string]bool)
	seenIdent := make(map[string]bool)

	var visit func(n ast.Node) bool

	visit = func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.SelectorExpr:
			if id, ok := n.X.(*ast.Ident); ok {
				seenQual[id.Name] = true
			}

			return false
		case *ast.Field:
			ast.Inspect(n.Type, visit)
			return false
		case *ast.Ident:
			seenIdent[n.Name] = true
		}

		return true
	}

	ast.Inspect(expr, visit)

	return sortedKeys(seenQual), sortedKeys(seenIdent)
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}

	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

func fileImports(f *ast.File, names map[string]string) []ImportSpec {
	out := make([]ImportSpec, 0, len(f.Imports))

	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		spec := ImportSpec{Path: path}
		if imp.Name != nil {
			spec.Name = imp.Name.Name
		}

		switch {
		case spec.Name != "":
			spec.LocalName = spec.Name
		case names[path] != "":
			spec.LocalName = names[path]
		default:
			spec.LocalName = common.PkgAlias(path)
		}

		out = append(out, spec)
	}

	return out
}

// embeddedName returns the implied field name of an embedded field.
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	case *ast.ParenExpr:
		return embeddedName(t.X)
	default:
		return ""
	}
}

// receiverName returns the base type name of a method receiver.
func receiverName(recv *ast.FieldList) string {
	if recv == nil || len(recv.List) == 0 {
		return ""
	}

	return embeddedName(recv.List[0].Type)
}
