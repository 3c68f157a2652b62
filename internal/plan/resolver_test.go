package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"insertable-generator/internal/diagnostic"
	"insertable-generator/internal/metadata"
)

func TestResolver_Order(t *testing.T) {
	pkg := parse(t, orderSrc)

	plan := NewResolver(pkg, DefaultConfig(), nil).Resolve()
	require.NotNil(t, plan)
	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())
	require.Len(t, plan.Projections, 2)

	order := plan.Projections[0]
	assert.Equal(t, "InsertableOrder", order.Name)
	assert.Equal(t, []string{"CustomerID", "TotalCents"}, projectedNames(order))
	assert.Equal(t, []string{"ID", "CreatedAt"}, names(order.Excluded))
	assert.Empty(t, order.Imports)
	assert.Equal(t, `name="orders"`, order.Metadata.Table.Raw)
	assert.Equal(t, "`db:\"customer_id\"`", order.Fields[0].Source.RawTag)

	assert.Equal(t, DefaultByValueMethod, plan.ByValueMethod)
	assert.Equal(t, DefaultByReferenceMethod, plan.ByReferenceMethod)

	require.Len(t, plan.Diagnostics.Infos, 2)
	assert.Equal(t, diagnostic.CodeGenerated, plan.Diagnostics.Infos[0].Code)
	assert.Equal(t, "Order", plan.Diagnostics.Infos[0].TypeName)
	assert.Equal(t, "InsertableOrder with 2 of 4 fields", plan.Diagnostics.Infos[0].Message)
}

func TestResolver_UnusedExclusionWarning(t *testing.T) {
	pkg := parse(t, orderSrc)

	plan := NewResolver(pkg, DefaultConfig(), nil).Resolve()
	require.Len(t, plan.Diagnostics.Warnings, 1)

	w := plan.Diagnostics.Warnings[0]
	assert.Equal(t, diagnostic.CodeUnusedExclusion, w.Code)
	assert.Equal(t, "Cart", w.TypeName)
	assert.Equal(t, "exclusion craeted_at matches no field", w.Message)
	assert.Equal(t, 24, w.Pos.Line)
	assert.Empty(t, w.Suggestions, "Cart has no created_at field")
}

func TestResolver_UnusedExclusionSuggestion(t *testing.T) {
	src := `package p

//insertable:generate
//insertable:table t
//insertable:changeset c
//insertable:exclude custmer_id
type T struct {
	CustomerID int64
	Total      int64
}
`

	plan := NewResolver(parse(t, src), DefaultConfig(), nil).Resolve()
	require.True(t, plan.Diagnostics.IsValid())
	require.Len(t, plan.Diagnostics.Warnings, 1)
	assert.Equal(t, []string{"CustomerID", "customer_id"}, plan.Diagnostics.Warnings[0].Suggestions)
}

func TestResolver_Errors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		config   func(*Config)
		sentinel error
		reason   string
	}{
		{
			name: "not a struct",
			src: `package p
//insertable:generate
//insertable:table t
//insertable:changeset c
type T []string
`,
			sentinel: diagnostic.ErrUnsupportedTypeShape,
			reason:   "defined type cannot be projected, only struct types are supported",
		},
		{
			name: "generic",
			src: `package p
//insertable:generate
//insertable:table t
//insertable:changeset c
type T[V any] struct{ X V }
`,
			sentinel: diagnostic.ErrUnsupportedTypeShape,
			reason:   "generic types are not supported",
		},
		{
			name: "missing table",
			src: `package p
//insertable:generate
//insertable:changeset c
type T struct{ X int }
`,
			sentinel: diagnostic.ErrMissingRequiredAnnotation,
			reason:   "missing table binding annotation",
		},
		{
			name: "embedded field",
			src: `package p
type Base struct{}
//insertable:generate
//insertable:table t
//insertable:changeset c
type T struct {
	Base
	X int
}
`,
			sentinel: diagnostic.ErrUnsupportedTypeShape,
			reason:   "only named-field record types are supported",
		},
		{
			name: "projection name taken",
			src: `package p
//insertable:generate
//insertable:table t
//insertable:changeset c
type T struct{ X int }

type InsertableT struct{}
`,
			sentinel: diagnostic.ErrUnsupportedTypeShape,
			reason:   "projection name InsertableT collides with an existing declaration",
		},
		{
			name: "method already declared",
			src: `package p
//insertable:generate
//insertable:table t
//insertable:changeset c
type T struct{ X int }

func (t *T) ToInsertable() {}
`,
			sentinel: diagnostic.ErrUnsupportedTypeShape,
			reason:   "T already declares method ToInsertable",
		},
		{
			name: "field named like a renamed method",
			src: `package p
//insertable:generate
//insertable:table t
//insertable:changeset c
type T struct{ Insert int }
`,
			config:   func(c *Config) { c.ByValueMethod = "Insert" },
			sentinel: diagnostic.ErrUnsupportedTypeShape,
			reason:   "field Insert collides with conversion method Insert",
		},
		{
			name: "type only reachable through a dot import",
			src: `package p

import . "time"

//insertable:generate
//insertable:table t
//insertable:changeset c
type T struct {
	At Time
}
`,
			sentinel: diagnostic.ErrUnsupportedTypeShape,
			reason:   "type Time of field At refers to Time through a dot import; import the package by name",
		},
		{
			name: "maps package hidden",
			src: `package p

var maps = 1

//insertable:generate
//insertable:table t
//insertable:changeset c
type T struct {
	Stops [2]map[string]int
}
`,
			sentinel: diagnostic.ErrUnsupportedTypeShape,
			reason:   "package-level maps hides the maps package needed to copy arrays of maps",
		},
		{
			name: "explicit changeset in default mode",
			src: `package p
//insertable:generate
//insertable:table t
//insertable:changeset c
type T struct{ X int }
`,
			config:   func(c *Config) { c.Metadata.ChangesetMode = metadata.ChangesetDefault },
			sentinel: diagnostic.ErrMalformedAnnotationContent,
			reason:   "changeset configuration must be omitted in default changeset mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			if tt.config != nil {
				tt.config(&cfg)
			}

			plan := NewResolver(parse(t, tt.src), cfg, nil).Resolve()
			assert.Empty(t, plan.Projections)
			require.Len(t, plan.Diagnostics.Errors, 1)

			d := plan.Diagnostics.Errors[0]
			assert.Equal(t, "T", d.TypeName)
			assert.Equal(t, tt.reason, d.Message)
			assert.True(t, d.Pos.IsValid())
			require.ErrorIs(t, plan.Diagnostics.Error(), tt.sentinel)
		})
	}
}

func TestResolver_DotImportWithLocalTypes(t *testing.T) {
	src := `package p

import . "time"

type Local struct{}

//insertable:generate
//insertable:table t
//insertable:changeset c
//insertable:exclude at
type T struct {
	At   Time
	Item Local
	N    map[string]int
}
`

	plan := NewResolver(parse(t, src), DefaultConfig(), nil).Resolve()
	require.True(t, plan.Diagnostics.IsValid(), plan.Diagnostics.Error())
	require.Len(t, plan.Projections, 1)
	assert.Equal(t, []string{"Item", "N"}, projectedNames(plan.Projections[0]))
}

func TestResolver_FailedTypeDoesNotStopOthers(t *testing.T) {
	src := `package p

//insertable:generate
//insertable:table a
type A struct{ X int }

//insertable:generate
//insertable:table b
//insertable:changeset c
type B struct{ Y int }

// Unmarked types are ignored.
type C struct{ Z int }
`

	plan := NewResolver(parse(t, src), DefaultConfig(), nil).Resolve()
	require.Len(t, plan.Diagnostics.Errors, 1)
	assert.Equal(t, "A", plan.Diagnostics.Errors[0].TypeName)
	assert.Equal(t, 5, plan.Diagnostics.Errors[0].Pos.Line)
	require.Len(t, plan.Projections, 1)
	assert.Equal(t, "InsertableB", plan.Projections[0].Name)
}

func TestResolver_DefaultChangesetMode(t *testing.T) {
	src := `package p

//insertable:generate
//insertable:table t
type T struct{ X int }
`

	cfg := DefaultConfig()
	cfg.Metadata.ChangesetMode = metadata.ChangesetDefault

	plan := NewResolver(parse(t, src), cfg, nil).Resolve()
	require.True(t, plan.Diagnostics.IsValid())
	require.Len(t, plan.Projections, 1)
	assert.Equal(t, []string{
		"//insertable:table t",
		`//insertable:changeset treat_none_as_null="true"`,
	}, plan.Projections[0].Directives())
}

func TestResolver_Logging(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	plan := NewResolver(parse(t, orderSrc), DefaultConfig(), zap.New(core)).Resolve()
	require.Len(t, plan.Projections, 2)

	entries := logs.FilterMessage("type resolved").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "store", entries[0].ContextMap()["package"])
	assert.Equal(t, "InsertableOrder", entries[0].ContextMap()["projection"])
}

func projectedNames(p Projection) []string {
	out := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		out[i] = f.Name
	}

	return out
}
