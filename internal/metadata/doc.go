// Package metadata extracts the generation annotations of a source type.
//
// The table binding and the changeset configuration are opaque text that is
// carried onto the generated type unchanged. Only the exclusion list is
// interpreted. Extraction is pure: it reads directives and returns either a
// complete Metadata or the first *diagnostic.GenerationError.
package metadata
