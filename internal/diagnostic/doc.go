// Package diagnostic provides the error taxonomy and structured diagnostics
// reported while generating insertable projections.
//
// Key capabilities:
//   - Typed generation errors (missing annotation, malformed annotation,
//     unsupported type shape) matching sentinel errors via errors.Is
//   - Per-package aggregation of errors, warnings and infos
//   - Near-miss suggestions attached to warnings
package diagnostic
