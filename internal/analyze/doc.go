// Package analyze loads Go packages and describes the struct declarations
// found in them.
//
// Packages are loaded with golang.org/x/tools/go/packages, or a single file
// is parsed with go/parser for tests. Field types are kept as printed
// source text; only their outermost shape is classified, refined with
// go/types information when it is available.
//
// Key types:
//   - TypeID: package import path + type name
//   - SourceType: a declared type with its directives, fields and file imports
//   - FieldInfo: field name, column, printed type, raw tag and shape
//   - Package: the declared types and names of one package
package analyze
