package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"insertable-generator/internal/common"
)

const filePerm = 0o644

// Status describes a generated file relative to the file on disk.
type Status int

const (
	StatusUpToDate Status = iota
	StatusMissing
	StatusStale
	StatusObsolete // on disk but no longer produced
)

// String returns a human-readable representation of the Status.
func (s Status) String() string {
	switch s {
	case StatusUpToDate:
		return "up to date"
	case StatusMissing:
		return "missing"
	case StatusStale:
		return "stale"
	case StatusObsolete:
		return "obsolete"
	default:
		return common.UnknownStr
	}
}

// WriteFiles writes all generated files into their package directories.
func WriteFiles(files []*GeneratedFile) error {
	for _, file := range files {
		if err := os.WriteFile(file.Path(), file.Content, filePerm); err != nil {
			return fmt.Errorf("writing file %s: %w", file.Path(), err)
		}
	}

	return nil
}

// RemoveFiles deletes previously generated files. Missing files are ignored.
func RemoveFiles(paths []string) error {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing file %s: %w", p, err)
		}
	}

	return nil
}

// Compare reports whether file matches its copy on disk.
func Compare(file *GeneratedFile) (Status, error) {
	onDisk, err := os.ReadFile(file.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return StatusMissing, nil
	}

	if err != nil {
		return StatusStale, fmt.Errorf("reading file %s: %w", file.Path(), err)
	}

	if !bytes.Equal(onDisk, file.Content) {
		return StatusStale, nil
	}

	return StatusUpToDate, nil
}

// Obsolete returns the previously generated files that file does not replace.
// A nil file makes every previous output obsolete.
func Obsolete(previous []string, file *GeneratedFile) []string {
	var out []string

	for _, p := range previous {
		if file != nil && filepath.Clean(p) == filepath.Clean(file.Path()) {
			continue
		}

		out = append(out, p)
	}

	return out
}
