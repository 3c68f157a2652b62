package gen

import (
	"fmt"
	"strings"

	"insertable-generator/internal/plan"
)

// GenerateStruct renders the type declaration of a projection, including the
// doc comment carrying its directives.
func GenerateStruct(p *plan.Projection) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "// %s holds the fields of %s accepted on insert.\n", p.Name, p.Source.ID.Name)
	sb.WriteString("//\n")

	for _, d := range p.Directives() {
		sb.WriteString(d)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "type %s struct {\n", p.Name)

	for _, f := range p.Fields {
		fmt.Fprintf(&sb, "\t%s %s", f.Name, f.Source.TypeExpr)

		if f.Source.RawTag != "" {
			sb.WriteString(" ")
			sb.WriteString(f.Source.RawTag)
		}

		sb.WriteString("\n")
	}

	sb.WriteString("}\n")

	return sb.String()
}
