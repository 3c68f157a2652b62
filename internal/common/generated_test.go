package common

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOwnOutput(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{
			name: "own header",
			src:  GeneratedHeader + "\n\npackage p\n",
			want: true,
		},
		{
			name: "other generator",
			src:  "// Code generated by sqlc. DO NOT EDIT.\n\npackage p\n",
			want: false,
		},
		{
			name: "hand written",
			src:  "// Package p mentions insertable-generator.\npackage p\n",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parser.ParseFile(token.NewFileSet(), "x.go", tt.src, parser.ParseComments)
			require.NoError(t, err)
			assert.Equal(t, tt.want, IsOwnOutput(f))
		})
	}
}
