package plan

import (
	"testing"

	"github.com/go-extras/go-kit/must"
	"github.com/stretchr/testify/require"

	"insertable-generator/internal/analyze"
)

const orderSrc = `package store

import (
	"time"

	"github.com/google/uuid"
)

// Order is a placed order.
//
//insertable:generate
//insertable:table name="orders"
//insertable:changeset treat_none_as_null="true"
type Order struct {
	ID         int64     ` + "`db:\"id\"`" + `
	CreatedAt  time.Time ` + "`db:\"created_at\"`" + `
	CustomerID int64     ` + "`db:\"customer_id\"`" + `
	TotalCents int64     ` + "`db:\"total_cents\"`" + `
}

//insertable:generate
//insertable:table carts
//insertable:changeset skip_nulls
//insertable:exclude ID, updated_at, craeted_at
type Cart struct {
	ID        uuid.UUID
	owner     string
	Items     []string
	Meta      map[string]string
	Coupon    *string
	UpdatedAt time.Time
	Expires   *time.Time
}
`

func parse(t *testing.T, src string) *analyze.Package {
	t.Helper()

	pkg, err := analyze.ParseSource("store/order.go", src)
	require.NoError(t, err)

	return pkg
}

func fields(src string, typeName string) []analyze.FieldInfo {
	pkg := must.Must(analyze.ParseSource("p.go", src))
	return pkg.Lookup(typeName).Fields
}

func names(fs []analyze.FieldInfo) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}

	return out
}
