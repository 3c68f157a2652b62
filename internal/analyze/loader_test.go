package analyze

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insertable-generator/internal/common"
)

const ordersPkg = "insertable-generator/examples/orders"

func TestAnalyzer_LoadPackages(t *testing.T) {
	pkgs, err := NewAnalyzer("").LoadPackages(context.Background(), ordersPkg)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	pkg := pkgs[0]
	assert.Equal(t, ordersPkg, pkg.Path)
	assert.Equal(t, "orders", pkg.Name)
	assert.NotEmpty(t, pkg.Dir)

	order := pkg.Lookup("Order")
	require.NotNil(t, order)
	assert.True(t, order.IsStruct())
	assert.True(t, order.HasDirective("insertable:generate"))
	assert.Equal(t, []string{"ID", "CreatedAt", "CustomerID", "TotalCents"}, fieldNames(order))

	// The generated file is recorded but not analyzed.
	assert.Len(t, pkg.OutputFiles, 1)
	assert.Nil(t, pkg.Lookup("InsertableOrder"))
	assert.False(t, pkg.Declared["InsertableOrder"])
}

func TestAnalyzer_NamedSliceShape(t *testing.T) {
	pkgs, err := NewAnalyzer("").LoadPackages(context.Background(), ordersPkg)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	cart := pkgs[0].Lookup("Cart")
	require.NotNil(t, cart)

	labels := cart.Field("Labels")
	require.NotNil(t, labels)
	assert.Equal(t, "Labels", labels.TypeExpr)
	assert.Equal(t, ShapeSlice, labels.Shape, "named slice types are classified by their underlying type")
}

func TestAnalyzer_CloneAndArrayShapes(t *testing.T) {
	pkgs, err := NewAnalyzer("").LoadPackages(context.Background(), ordersPkg)
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	shipment := pkgs[0].Lookup("Shipment")
	require.NotNil(t, shipment)

	tests := []struct {
		field  string
		shape  FieldShape
		elem   FieldShape
		cloner bool
	}{
		{"OrderID", ShapeValue, ShapeValue, false},
		{"Address", ShapeValue, ShapeValue, true},
		{"Legs", ShapeArray, ShapeSlice, false},
		{"Stops", ShapeArray, ShapeMap, false},
		{"Hops", ShapeArray, ShapePointer, false},
		{"Route", ShapeArray, ShapeSlice, false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := shipment.Field(tt.field)
			require.NotNil(t, f)
			assert.Equal(t, tt.shape, f.Shape)
			assert.Equal(t, tt.elem, f.Elem)
			assert.Equal(t, tt.cloner, f.Cloner)
		})
	}

	// Neither a pointer field nor a named slice without Clone is a cloner.
	cart := pkgs[0].Lookup("Cart")
	require.NotNil(t, cart)
	assert.False(t, cart.Field("ExpiresAt").Cloner)
	assert.False(t, cart.Field("Labels").Cloner)
}

func TestAnalyzer_LoadPackagesError(t *testing.T) {
	_, err := NewAnalyzer("").LoadPackages(context.Background(), "insertable-generator/does/not/exist")
	require.Error(t, err)
}

func TestParseSource_Fields(t *testing.T) {
	src := `package store

import (
	"time"

	dec "github.com/shopspring/decimal"
)

type Order struct {
	ID         int64             ` + "`db:\"id\" json:\"id\"`" + `
	CreatedAt  time.Time
	Price      dec.Decimal       ` + "`db:\"price_cents,omitempty\"`" + `
	Items      []Item
	Fixed      [4]byte
	Attrs      map[string]string
	Note       *string
	a, b       int
	Nested     map[string][]time.Duration
}

type Item struct{}
`

	pkg, err := ParseSource("store/order.go", src)
	require.NoError(t, err)

	assert.Equal(t, "store", pkg.Path)
	assert.Equal(t, "store", pkg.Dir)

	order := pkg.Lookup("Order")
	require.NotNil(t, order)
	assert.Equal(t, "store/order.go", order.Filename)
	assert.Equal(t, []string{"ID", "CreatedAt", "Price", "Items", "Fixed", "Attrs", "Note", "a", "b", "Nested"}, fieldNames(order))

	tests := []struct {
		field    string
		column   string
		typeExpr string
		shape    FieldShape
		quals    []string
		exported bool
	}{
		{"ID", "id", "int64", ShapeValue, nil, true},
		{"CreatedAt", "created_at", "time.Time", ShapeValue, []string{"time"}, true},
		{"Price", "price_cents", "dec.Decimal", ShapeValue, []string{"dec"}, true},
		{"Items", "items", "[]Item", ShapeSlice, nil, true},
		{"Fixed", "fixed", "[4]byte", ShapeValue, nil, true},
		{"Attrs", "attrs", "map[string]string", ShapeMap, nil, true},
		{"Note", "note", "*string", ShapePointer, nil, true},
		{"a", "a", "int", ShapeValue, nil, false},
		{"Nested", "nested", "map[string][]time.Duration", ShapeMap, []string{"time"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := order.Field(tt.field)
			require.NotNil(t, f)
			assert.Equal(t, tt.column, f.Column)
			assert.Equal(t, tt.typeExpr, f.TypeExpr)
			assert.Equal(t, tt.shape, f.Shape, "shape %s", f.Shape)
			assert.Equal(t, tt.quals, f.Qualifiers)
			assert.Equal(t, tt.exported, f.Exported)
		})
	}

	id := order.Field("ID")
	assert.Equal(t, "`db:\"id\" json:\"id\"`", id.RawTag)
	assert.Equal(t, "id", id.Tag.Get("json"))
	assert.Equal(t, 0, id.Index)
	assert.Equal(t, 8, order.Field("b").Index)

	imp, ok := order.Import("dec")
	require.True(t, ok)
	assert.Equal(t, ImportSpec{Name: "dec", Path: "github.com/shopspring/decimal", LocalName: "dec"}, imp)

	imp, ok = order.Import("time")
	require.True(t, ok)
	assert.Empty(t, imp.Name)
}

func TestParseSource_ArraysAndReferences(t *testing.T) {
	src := `package p

import (
	. "time"
	"net/url"
)

type T struct {
	Legs  [2][]string
	Stops [3]map[string]int
	Hops  [2]*Item
	Grid  [2][3][]int
	Fixed [4]byte
	Fn    func(x int) Item
	Index map[Key]url.URL
	At    Time
}
`

	pkg, err := ParseSource("p.go", src)
	require.NoError(t, err)

	typ := pkg.Lookup("T")
	require.NotNil(t, typ)
	assert.True(t, typ.HasDotImport())

	tests := []struct {
		field  string
		shape  FieldShape
		elem   FieldShape
		quals  []string
		idents []string
	}{
		{"Legs", ShapeArray, ShapeSlice, nil, []string{"string"}},
		{"Stops", ShapeArray, ShapeMap, nil, []string{"int", "string"}},
		{"Hops", ShapeArray, ShapePointer, nil, []string{"Item"}},
		{"Grid", ShapeValue, ShapeValue, nil, []string{"int"}},
		{"Fixed", ShapeValue, ShapeValue, nil, []string{"byte"}},
		{"Fn", ShapeValue, ShapeValue, nil, []string{"Item", "int"}},
		{"Index", ShapeMap, ShapeValue, []string{"url"}, []string{"Key"}},
		{"At", ShapeValue, ShapeValue, nil, []string{"Time"}},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			f := typ.Field(tt.field)
			require.NotNil(t, f)
			assert.Equal(t, tt.shape, f.Shape)
			assert.Equal(t, tt.elem, f.Elem)
			assert.Equal(t, tt.quals, f.Qualifiers)
			assert.Equal(t, tt.idents, f.Idents)
			assert.False(t, f.Cloner, "clone methods need type information")
		})
	}
}

func TestParseSource_Directives(t *testing.T) {
	src := `package store

// Order is an order.
//
//insertable:generate
//insertable:table name="orders"
//	not a directive
// insertable:changeset spaced out, not a directive
//nocolon
//insertable:exclude  id,  created_at
type Order struct {
	ID int
}

type (
	//insertable:generate
	Grouped struct{ X int }

	Plain struct{ Y int }
)

// Ignored because it documents a group.
type (
	Other struct{}
)
`

	pkg, err := ParseSource("order.go", src)
	require.NoError(t, err)

	order := pkg.Lookup("Order")
	require.NotNil(t, order)
	require.Len(t, order.Directives, 3)

	assert.Equal(t, "insertable:generate", order.Directives[0].Marker)
	assert.Empty(t, order.Directives[0].Content)
	assert.Equal(t, `name="orders"`, order.Directives[1].Content)
	assert.Equal(t, "insertable:exclude", order.Directives[2].Marker)
	assert.Equal(t, "id,  created_at", order.Directives[2].Content)
	assert.Equal(t, 6, order.Directives[1].Pos.Line)
	assert.Equal(t, `//insertable:table name="orders"`, order.Directives[1].Text())

	assert.True(t, pkg.Lookup("Grouped").HasDirective("insertable:generate"))
	assert.Empty(t, pkg.Lookup("Plain").Directives)
	assert.Empty(t, pkg.Lookup("Other").Directives)

	marked := pkg.Marked("insertable:generate")
	require.Len(t, marked, 2)
	assert.Equal(t, "Order", marked[0].ID.Name)
	assert.Equal(t, "Grouped", marked[1].ID.Name)
}

func TestParseSource_Kinds(t *testing.T) {
	src := `package p

type S struct{ A int }
type I interface{ M() }
type D []string
type A = S
type G[T any] struct{ V T }

type Emb struct {
	S
	*I
	Name string
}
`

	pkg, err := ParseSource("p.go", src)
	require.NoError(t, err)

	assert.Equal(t, KindStruct, pkg.Lookup("S").Kind)
	assert.Equal(t, KindInterface, pkg.Lookup("I").Kind)
	assert.Equal(t, KindDefined, pkg.Lookup("D").Kind)
	assert.Equal(t, KindAlias, pkg.Lookup("A").Kind)
	assert.True(t, pkg.Lookup("G").HasTypeParams)
	assert.False(t, pkg.Lookup("S").HasTypeParams)

	emb := pkg.Lookup("Emb")
	require.Len(t, emb.Fields, 3)
	assert.True(t, emb.Fields[0].Embedded)
	assert.Equal(t, "S", emb.Fields[0].Name)
	assert.True(t, emb.Fields[1].Embedded)
	assert.Equal(t, "I", emb.Fields[1].Name)
	assert.False(t, emb.Fields[2].Embedded)
}

func TestParseFiles_DeclarationsAndOutput(t *testing.T) {
	files := map[string]string{
		"p/a.go": `package p

var InsertableA, _ = 1, 2

const Limit = 3

func helper() {}

type A struct{ X int }

func (a *A) ToInsertable() {}
func (a A) String() string { return "" }
`,
		"p/insertable_gen.go": common.GeneratedHeader + `

package p

type InsertableB struct{}
`,
		"p/other_gen.go": "// Code generated by other. DO NOT EDIT.\n\npackage p\n\ntype Foreign struct{}\n",
	}

	pkg, err := ParseFiles(files)
	require.NoError(t, err)

	for _, name := range []string{"InsertableA", "Limit", "helper", "A", "Foreign"} {
		assert.True(t, pkg.Declared[name], name)
	}

	assert.False(t, pkg.Declared["_"])
	assert.False(t, pkg.Declared["InsertableB"])
	assert.Equal(t, []string{"p/insertable_gen.go"}, pkg.OutputFiles)
	assert.True(t, pkg.HasMethod("A", "ToInsertable"))
	assert.True(t, pkg.HasMethod("A", "String"))
	assert.False(t, pkg.HasMethod("A", "IntoInsertable"))
}

func TestParseFiles_Errors(t *testing.T) {
	_, err := ParseFiles(nil)
	require.Error(t, err)

	_, err = ParseSource("bad.go", "package p\ntype {")
	require.Error(t, err)

	_, err = ParseFiles(map[string]string{
		"a.go": "package a\n",
		"b.go": "package b\n",
	})
	require.ErrorContains(t, err, "expected a")
}

func TestFieldShape_String(t *testing.T) {
	assert.Equal(t, "value", ShapeValue.String())
	assert.Equal(t, "slice", ShapeSlice.String())
	assert.Equal(t, "map", ShapeMap.String())
	assert.Equal(t, "pointer", ShapePointer.String())
	assert.Equal(t, "array", ShapeArray.String())
	assert.Equal(t, common.UnknownStr, FieldShape(42).String())
}

func TestTypeID_String(t *testing.T) {
	assert.Equal(t, "Order", TypeID{Name: "Order"}.String())
	assert.Equal(t, "a/b.Order", TypeID{PkgPath: "a/b", Name: "Order"}.String())
}

func fieldNames(t *SourceType) []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}

	return names
}
