package common

import (
	"path"
	"strings"
	"unicode"
)

// UnknownStr is the String() value of enum members outside their declared range.
const UnknownStr = "unknown"

// PkgAlias returns the package name assumed for an import path when the package
// itself has not been loaded.
//
// The last path element is used, skipping a trailing major version element
// ("github.com/jackc/pgx/v5" -> "pgx"), dropping a "go-" prefix and cutting at
// the first character that cannot appear in an identifier ("gopkg.in/yaml.v3" -> "yaml").
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	base := path.Base(pkgPath)
	if isMajorVersion(base) {
		if parent := path.Dir(pkgPath); parent != "." && parent != "/" {
			base = path.Base(parent)
		}
	}

	base = strings.TrimPrefix(base, "go-")

	if i := strings.IndexFunc(base, notIdentRune); i >= 0 {
		base = base[:i]
	}

	return base
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}

	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func notIdentRune(r rune) bool {
	return r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
