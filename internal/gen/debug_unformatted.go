package gen

import (
	"os"
	"path/filepath"
	"strings"
)

// DebugSuffix replaces ".go" in the name of the unformatted sidecar.
const DebugSuffix = ".unformatted.go"

// writeDebugUnformatted stores source that failed to format next to the
// intended output. Best-effort: the formatting error is what gets reported.
func writeDebugUnformatted(dir, filename string, content []byte) error {
	if dir == "" || filename == "" {
		return nil
	}

	// Keep a .go suffix for syntax highlighting without colliding with real output.
	name := strings.TrimSuffix(filename, ".go") + DebugSuffix

	return os.WriteFile(filepath.Join(dir, name), content, filePerm)
}
