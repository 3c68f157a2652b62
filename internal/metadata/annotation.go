package metadata

import (
	"fmt"
	"go/token"
	"strings"

	"insertable-generator/internal/common"
	"insertable-generator/internal/diagnostic"
)

// Directive markers.
const (
	MarkerGenerate        = "insertable:generate"
	MarkerTable           = "insertable:table"
	MarkerNamespacedTable = "migrator:schema:table"
	MarkerChangeset       = "insertable:changeset"
	MarkerExclude         = "insertable:exclude"
)

// DefaultChangeset is the changeset configuration synthesized in ChangesetDefault mode.
const DefaultChangeset = `treat_none_as_null="true"`

// DefaultExclusions applies when a type has no exclusion list.
func DefaultExclusions() []string {
	return []string{"created_at", "updated_at", "id"}
}

// Annotation is one of TableBinding, ChangesetConfig or ExclusionList.
type Annotation interface {
	Kind() diagnostic.AnnotationKind
	annotation()
}

// TableForm is the surface form a table binding was written in.
type TableForm int

const (
	FormStandalone TableForm = iota // //insertable:table
	FormNamespaced                  // //migrator:schema:table
)

// String returns a human-readable representation of the TableForm.
func (f TableForm) String() string {
	switch f {
	case FormStandalone:
		return "standalone"
	case FormNamespaced:
		return "namespaced"
	default:
		return common.UnknownStr
	}
}

// Marker returns the directive marker of the form.
func (f TableForm) Marker() string {
	if f == FormNamespaced {
		return MarkerNamespacedTable
	}

	return MarkerTable
}

// TableBinding associates the type with a persistent table.
type TableBinding struct {
	Raw  string
	Form TableForm
	Pos  token.Position
}

// Kind implements Annotation.
func (TableBinding) Kind() diagnostic.AnnotationKind { return diagnostic.AnnotationTable }
func (TableBinding) annotation()                     {}

// Directive returns the binding as written in source.
func (b TableBinding) Directive() string {
	return "//" + b.Form.Marker() + " " + b.Raw
}

// ChangesetConfig is the changeset policy of the type.
type ChangesetConfig struct {
	Raw         string
	Synthesized bool // true when produced by ChangesetDefault mode
	Pos         token.Position
}

// Kind implements Annotation.
func (ChangesetConfig) Kind() diagnostic.AnnotationKind { return diagnostic.AnnotationChangeset }
func (ChangesetConfig) annotation()                     {}

// Directive returns the configuration in directive form.
func (c ChangesetConfig) Directive() string {
	return "//" + MarkerChangeset + " " + c.Raw
}

// ExclusionList names the fields left out of the projection.
type ExclusionList struct {
	Names     []string
	Defaulted bool // true when no list was written
	Pos       token.Position
}

// Kind implements Annotation.
func (ExclusionList) Kind() diagnostic.AnnotationKind { return diagnostic.AnnotationExclusions }
func (ExclusionList) annotation()                     {}

// Set returns the names as a lookup set.
func (l ExclusionList) Set() map[string]bool {
	set := make(map[string]bool, len(l.Names))
	for _, n := range l.Names {
		set[n] = true
	}

	return set
}

// String returns the names joined the way they are written.
func (l ExclusionList) String() string {
	return strings.Join(l.Names, ", ")
}

// Metadata is the complete, validated annotation set of one type.
type Metadata struct {
	Table      TableBinding
	Changeset  ChangesetConfig
	Exclusions ExclusionList
}

// Annotations returns the three annotations in a fixed order.
func (m Metadata) Annotations() []Annotation {
	return []Annotation{m.Table, m.Changeset, m.Exclusions}
}

// ChangesetMode selects how the changeset configuration is obtained. It is
// chosen once per generator run.
type ChangesetMode string

const (
	// ChangesetExplicit requires every type to write its changeset configuration.
	ChangesetExplicit ChangesetMode = "explicit"
	// ChangesetDefault synthesizes DefaultChangeset and rejects written ones.
	ChangesetDefault ChangesetMode = "default"
)

// ParseChangesetMode validates a mode name. An empty name selects ChangesetExplicit.
func ParseChangesetMode(s string) (ChangesetMode, error) {
	switch ChangesetMode(s) {
	case "", ChangesetExplicit:
		return ChangesetExplicit, nil
	case ChangesetDefault:
		return ChangesetDefault, nil
	default:
		return "", fmt.Errorf("unknown changeset mode %q (want %q or %q)", s, ChangesetExplicit, ChangesetDefault)
	}
}

// Options configure extraction for a whole run.
type Options struct {
	ChangesetMode ChangesetMode
	// AllowNamespacedTable accepts //migrator:schema:table as a table binding.
	AllowNamespacedTable bool
}
