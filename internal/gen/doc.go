// Package gen renders the projections of a resolved plan into one Go source
// file per package.
//
// Generation uses text/template for the file skeleton and
// golang.org/x/tools/imports for formatting. Output is deterministic: types
// follow source order, imports are sorted by path.
//
// Codegen patterns of the by-reference conversion:
//   - Direct assignment for value shapes
//   - Slice clone with append(s[:0:0], s...), nil preserved
//   - Map clone with make and a range loop, nil guarded
//   - Pointer clone through a copy of the pointee, nil guarded
package gen
