// Package plan turns the annotated struct declarations of a package into a
// ResolvedPlan consumed by code generation.
//
// Resolution pipeline, per type carrying //insertable:generate:
//  1. Check the declaration shape (named-field struct, no type parameters)
//  2. Extract metadata (table binding, changeset, exclusion list)
//  3. Filter fields against the exclusion list
//  4. Synthesize the Insertable<Name> projection
//  5. Check the projection and method names against the package
//
// A failing type yields an error diagnostic and no projection; other types
// of the package are still resolved.
package plan
