package gen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"insertable-generator/internal/analyze"
	"insertable-generator/internal/plan"
)

// resolve parses src as a single file in dir and resolves it with the default config.
func resolve(t *testing.T, dir, src string) *plan.ResolvedPlan {
	t.Helper()

	pkg, err := analyze.ParseSource(dir+"/model.go", src)
	require.NoError(t, err)

	p := plan.NewResolver(pkg, plan.DefaultConfig(), nil).Resolve()
	require.True(t, p.Diagnostics.IsValid(), "%v", p.Diagnostics.Error())

	return p
}
