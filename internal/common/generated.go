package common

import (
	"go/ast"
	"strings"
)

// GeneratorName identifies this tool in generated file headers.
const GeneratorName = "insertable-generator"

// GeneratedHeader is the first line of every file this tool writes.
const GeneratedHeader = "// Code generated by " + GeneratorName + ". DO NOT EDIT."

// IsOwnOutput reports whether f is a generated file written by this tool.
// Files produced by other generators are not matched.
func IsOwnOutput(f *ast.File) bool {
	if !ast.IsGenerated(f) {
		return false
	}

	for _, cg := range f.Comments {
		if cg.Pos() > f.Package {
			break
		}

		for _, c := range cg.List {
			if strings.HasPrefix(c.Text, "// Code generated by "+GeneratorName+" ") {
				return true
			}
		}
	}

	return false
}
