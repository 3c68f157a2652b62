package manifest

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"
)

// Version is the current manifest format version.
const Version = "1"

// Manifest is the root of a manifest file.
type Manifest struct {
	Version       string    `yaml:"version"`
	Generator     string    `yaml:"generator"`
	ChangesetMode string    `yaml:"changeset_mode"`
	Packages      []Package `yaml:"packages"`
}

// Package lists the projections generated into one package.
type Package struct {
	Path  string `yaml:"path"`
	File  string `yaml:"file"`
	Types []Type `yaml:"types"`
}

// Type describes one projection.
type Type struct {
	Source               string        `yaml:"source"`
	Projection           string        `yaml:"projection"`
	Table                string        `yaml:"table"`
	TableForm            string        `yaml:"table_form"`
	Changeset            string        `yaml:"changeset"`
	ChangesetSynthesized bool          `yaml:"changeset_synthesized,omitempty"`
	Exclusions           StringOrArray `yaml:"exclusions"`
	Excluded             []string      `yaml:"excluded,omitempty"`
	Fields               []Field       `yaml:"fields"`
}

// Field describes a projected field.
type Field struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source,omitempty"` // only when renamed
	Type   string `yaml:"type"`
	Column string `yaml:"column"`
	Copy   string `yaml:"copy"`
	Elem   string `yaml:"elem,omitempty"` // element copy of array_clone fields
}

// Lookup returns the entry of a package, or nil.
func (m *Manifest) Lookup(path string) *Package {
	for i := range m.Packages {
		if m.Packages[i].Path == path {
			return &m.Packages[i]
		}
	}

	return nil
}

// StringOrArray is a list written as a plain string when it has exactly one element.
type StringOrArray []string

// UnmarshalYAML accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string
		if err := node.Decode(&str); err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return err
		}

		if arr == nil {
			arr = []string{}
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	if s == nil {
		return []string{}, nil
	}

	return []string(s), nil
}

// Contains returns true if the list contains the given string.
func (s StringOrArray) Contains(str string) bool {
	return slices.Contains(s, str)
}
