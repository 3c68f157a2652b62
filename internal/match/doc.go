// Package match provides identifier normalization, column-name derivation and
// near-miss suggestions for exclusion lists.
//
// Key functions:
//   - SnakeCase: derives the column spelling of a Go field name
//   - NormalizeIdent: folds case and separators for fuzzy comparison
//   - Levenshtein: computes edit distance between strings
//   - Suggest: ranks the closest known names for a misspelled one
package match
