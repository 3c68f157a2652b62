package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent normalizes an identifier for fuzzy matching: CamelCase is
// tokenized, tokens are lower-cased and joined without separators.
// "CreatedAt", "created_at" and "createdAt" all normalize to "createdat".
func NormalizeIdent(s string) string {
	return strings.ToLower(strings.Join(tokenizeCamelCase(s), ""))
}

// SnakeCase returns the lower snake_case spelling of a Go identifier, which is
// the default column name of a struct field without a db tag.
//
//	CustomerID  -> customer_id
//	CreatedAt   -> created_at
//	HTTPStatus  -> http_status
//	total_cents -> total_cents
func SnakeCase(s string) string {
	tokens := tokenizeCamelCase(s)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return strings.Join(tokens, "_")
}

// tokenizeCamelCase splits a CamelCase, camelCase or snake_case identifier into tokens.
// Examples:
//   - "OrderID" -> ["Order", "ID"]
//   - "customerName" -> ["customer", "Name"]
//   - "XMLParser" -> ["XML", "Parser"]
//   - "created_at" -> ["created", "at"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var (
		tokens  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if isSeparator(r) {
			flush()
			continue
		}

		if i > 0 && startsToken(runes, i) {
			flush()
		}

		current.WriteRune(r)
	}

	flush()

	return tokens
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}

// startsToken reports whether runes[i] begins a new CamelCase token.
func startsToken(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) || isSeparator(prev) {
		return false
	}

	// "orderID": lower -> upper.
	if !unicode.IsUpper(prev) {
		return true
	}

	// "XMLParser": the last upper of an acronym starts the next word.
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
