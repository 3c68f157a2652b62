package metadata

import (
	"fmt"
	"go/scanner"
	"go/token"
	"regexp"

	"insertable-generator/internal/analyze"
	"insertable-generator/internal/diagnostic"
)

var namespacedName = regexp.MustCompile(`(^|\s)name=`)

// Extract builds the Metadata of a type from its directives. Directives with
// unknown markers are ignored. The returned error is a *diagnostic.GenerationError
// positioned at the offending directive when there is one.
func Extract(directives []analyze.Directive, opts Options) (Metadata, error) {
	table, err := extractTable(directives, opts)
	if err != nil {
		return Metadata{}, err
	}

	changeset, err := extractChangeset(directives, opts)
	if err != nil {
		return Metadata{}, err
	}

	exclusions, err := extractExclusions(directives)
	if err != nil {
		return Metadata{}, err
	}

	return Metadata{
		Table:      table,
		Changeset:  changeset,
		Exclusions: exclusions,
	}, nil
}

func extractTable(directives []analyze.Directive, opts Options) (TableBinding, error) {
	var bindings []TableBinding

	for _, d := range directives {
		switch {
		case d.Marker == MarkerTable:
			bindings = append(bindings, TableBinding{Raw: d.Content, Form: FormStandalone, Pos: d.Pos})
		case d.Marker == MarkerNamespacedTable && opts.AllowNamespacedTable:
			bindings = append(bindings, TableBinding{Raw: d.Content, Form: FormNamespaced, Pos: d.Pos})
		}
	}

	switch len(bindings) {
	case 0:
		return TableBinding{}, diagnostic.MissingAnnotation(diagnostic.AnnotationTable)
	case 1:
	default:
		return TableBinding{}, diagnostic.MalformedAnnotation(diagnostic.AnnotationTable,
			"more than one table binding").WithPos(bindings[1].Pos)
	}

	b := bindings[0]

	if b.Raw == "" {
		return TableBinding{}, diagnostic.MalformedAnnotation(diagnostic.AnnotationTable,
			"table binding must not be empty").WithPos(b.Pos)
	}

	if b.Form == FormNamespaced && !namespacedName.MatchString(b.Raw) {
		return TableBinding{}, diagnostic.MalformedAnnotation(diagnostic.AnnotationTable,
			"namespaced table binding must contain name=").WithPos(b.Pos)
	}

	return b, nil
}

func extractChangeset(directives []analyze.Directive, opts Options) (ChangesetConfig, error) {
	var found []analyze.Directive

	for _, d := range directives {
		if d.Marker == MarkerChangeset {
			found = append(found, d)
		}
	}

	if opts.ChangesetMode == ChangesetDefault {
		if len(found) > 0 {
			return ChangesetConfig{}, diagnostic.MalformedAnnotation(diagnostic.AnnotationChangeset,
				"changeset configuration must be omitted in default changeset mode").WithPos(found[0].Pos)
		}

		return ChangesetConfig{Raw: DefaultChangeset, Synthesized: true}, nil
	}

	switch len(found) {
	case 0:
		return ChangesetConfig{}, diagnostic.MissingAnnotation(diagnostic.AnnotationChangeset)
	case 1:
	default:
		return ChangesetConfig{}, diagnostic.MalformedAnnotation(diagnostic.AnnotationChangeset,
			"more than one changeset configuration").WithPos(found[1].Pos)
	}

	d := found[0]
	if d.Content == "" {
		return ChangesetConfig{}, diagnostic.MalformedAnnotation(diagnostic.AnnotationChangeset,
			"changeset configuration must not be empty").WithPos(d.Pos)
	}

	return ChangesetConfig{Raw: d.Content, Pos: d.Pos}, nil
}

func extractExclusions(directives []analyze.Directive) (ExclusionList, error) {
	var found []analyze.Directive

	for _, d := range directives {
		if d.Marker == MarkerExclude {
			found = append(found, d)
		}
	}

	switch len(found) {
	case 0:
		return ExclusionList{Names: DefaultExclusions(), Defaulted: true}, nil
	case 1:
	default:
		return ExclusionList{}, diagnostic.MalformedAnnotation(diagnostic.AnnotationExclusions,
			"more than one exclusion list").WithPos(found[1].Pos)
	}

	d := found[0]

	names, err := ScanIdentList(d.Content)
	if err != nil {
		return ExclusionList{}, diagnostic.MalformedAnnotation(diagnostic.AnnotationExclusions,
			err.Error()).WithPos(d.Pos)
	}

	return ExclusionList{Names: names, Pos: d.Pos}, nil
}

// ScanIdentList parses `ident {"," ident} [","]`. Empty input yields an empty,
// non-nil list. Repeated names are kept once, in first-seen order.
func ScanIdentList(src string) ([]string, error) {
	const malformed = "exclusion list must be a list of identifiers"

	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var (
		s       scanner.Scanner
		scanErr error
	)

	s.Init(file, []byte(src), func(_ token.Position, msg string) {
		if scanErr == nil {
			scanErr = fmt.Errorf("%s: %s", malformed, msg)
		}
	}, 0)

	names := []string{}
	seen := make(map[string]bool)
	wantIdent := true

	for {
		_, tok, lit := s.Scan()
		if scanErr != nil {
			return nil, scanErr
		}

		// The scanner inserts a semicolon after a trailing identifier.
		if tok == token.EOF || (tok == token.SEMICOLON && lit == "\n") {
			break
		}

		switch {
		case wantIdent && tok == token.IDENT:
			if !seen[lit] {
				seen[lit] = true
				names = append(names, lit)
			}

			wantIdent = false
		case !wantIdent && tok == token.COMMA:
			wantIdent = true
		default:
			return nil, fmt.Errorf("%s: unexpected %s", malformed, describe(tok, lit))
		}
	}

	return names, nil
}

func describe(tok token.Token, lit string) string {
	if lit != "" && tok != token.SEMICOLON {
		return fmt.Sprintf("%s %q", tok, lit)
	}

	return fmt.Sprintf("%q", tok.String())
}
