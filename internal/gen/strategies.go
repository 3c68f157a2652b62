package gen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"insertable-generator/internal/plan"
)

// names holds the identifiers used inside the conversion methods.
type names struct {
	recv string // receiver
	out  string // result under construction
	cp   string // pointee copy
	key  string // map key
	val  string // map value
	idx  string // array index
}

// pickNames chooses identifiers that do not shadow any package referenced by
// the projected field types.
func pickNames(p *plan.Projection) names {
	taken := make(map[string]bool)
	for _, imp := range p.Imports {
		taken[imp.LocalName] = true
	}

	for _, f := range p.Fields {
		for _, q := range f.Source.Qualifiers {
			taken[q] = true
		}

		for _, id := range f.Source.Idents {
			taken[id] = true
		}
	}

	pick := func(candidates ...string) string {
		for _, c := range candidates {
			if c != "" && c != "_" && !taken[c] {
				taken[c] = true
				return c
			}
		}

		for i := 0; ; i++ {
			c := fmt.Sprintf("%s%d", candidates[len(candidates)-1], i)
			if !taken[c] {
				taken[c] = true
				return c
			}
		}
	}

	return names{
		recv: pick(lowerFirst(p.Source.ID.Name), "src"),
		out:  pick("out", "dst"),
		cp:   pick("cp", "dup"),
		key:  pick("k", "key"),
		val:  pick("v", "val"),
		idx:  pick("i", "idx"),
	}
}

// lowerFirst returns the first rune of s, lower-cased.
func lowerFirst(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}

	return string(unicode.ToLower(r))
}

// byValueBody renders the keyed composite literal returned by the by-value conversion.
func byValueBody(p *plan.Projection, n names) string {
	if len(p.Fields) == 0 {
		return fmt.Sprintf("\treturn %s{}\n", p.Name)
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "\treturn %s{\n", p.Name)

	for _, f := range p.Fields {
		fmt.Fprintf(&sb, "\t\t%s: %s.%s,\n", f.Name, n.recv, f.Source.Name)
	}

	sb.WriteString("\t}\n")

	return sb.String()
}

// byReferenceBody renders the statements of the by-reference conversion.
func byReferenceBody(p *plan.Projection, n names) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\tvar %s %s\n", n.out, p.Name)

	for _, f := range p.Fields {
		sb.WriteString(copyStatement(f, n))
	}

	fmt.Fprintf(&sb, "\n\treturn %s\n", n.out)

	return sb.String()
}

// copyStatement duplicates one field according to its strategy.
func copyStatement(f plan.ProjectedField, n names) string {
	src := n.recv + "." + f.Source.Name
	dst := n.out + "." + f.Name

	switch f.Strategy {
	case plan.CopySlice:
		return fmt.Sprintf("\t%s = append(%s[:0:0], %s...)\n", dst, src, src)

	case plan.CopyMap:
		return fmt.Sprintf(
			"\tif %[1]s != nil {\n"+
				"\t\t%[2]s = make(%[3]s, len(%[1]s))\n"+
				"\t\tfor %[4]s, %[5]s := range %[1]s {\n"+
				"\t\t\t%[2]s[%[4]s] = %[5]s\n"+
				"\t\t}\n"+
				"\t}\n",
			src, dst, f.Source.TypeExpr, n.key, n.val)

	case plan.CopyPointer:
		return pointerCopy(dst, src, n, "\t")

	case plan.CopyClone:
		return fmt.Sprintf("\t%s = %s.Clone()\n", dst, src)

	case plan.CopyArray:
		return fmt.Sprintf("\tfor %s := range %s {\n%s\t}\n", n.idx, src, elementCopy(f.Elem, dst, src, n))

	default:
		return fmt.Sprintf("\t%s = %s\n", dst, src)
	}
}

// elementCopy duplicates the element at the loop index of an array field.
// Map elements have no type expression of their own, so maps.Clone copies them.
func elementCopy(elem plan.CopyStrategy, dst, src string, n names) string {
	dst = dst + "[" + n.idx + "]"
	src = src + "[" + n.idx + "]"

	switch elem {
	case plan.CopySlice:
		return fmt.Sprintf("\t\t%s = append(%s[:0:0], %s...)\n", dst, src, src)
	case plan.CopyMap:
		return fmt.Sprintf("\t\t%s = maps.Clone(%s)\n", dst, src)
	case plan.CopyPointer:
		return pointerCopy(dst, src, n, "\t\t")
	default:
		return fmt.Sprintf("\t\t%s = %s\n", dst, src)
	}
}

func pointerCopy(dst, src string, n names, indent string) string {
	return fmt.Sprintf(
		"%[4]sif %[1]s != nil {\n"+
			"%[4]s\t%[3]s := *%[1]s\n"+
			"%[4]s\t%[2]s = &%[3]s\n"+
			"%[4]s}\n",
		src, dst, n.cp, indent)
}
