// Package ident enforces the naming policy for everything interpolated into
// generated SQL: collection names, relation names, and the table and column
// names derived from them.
//
// The policy is deliberately strict (lowercase ASCII letters, digits,
// underscore, hyphen) so that generated DDL stays portable. Names that fail
// the policy are still quoted and used; the violation is reported separately.
package ident

import (
	"strings"

	goslug "github.com/gosimple/slug"
)

// Pattern is the full-string pattern a safe identifier must match. It is
// exposed for diagnostic messages only; Safe does the actual checking.
const Pattern = "^[a-z0-9_-]+$"

// Safe reports whether s is non-empty and consists entirely of lowercase
// ASCII letters, digits, underscores, and hyphens.
func Safe(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '_' || c == '-':
		default:
			return false
		}
	}
	return true
}

// Quote wraps s in double quotes for use as a SQL identifier, doubling any
// embedded quotes. Quoting never fails, so statements stay well-formed even
// when the name itself violates the policy.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Suggest returns a policy-safe replacement for s, for use in diagnostics.
// The slug transform already confines its output to the policy alphabet.
func Suggest(s string) string {
	suggested := goslug.Make(s)
	if suggested == "" {
		return "unnamed"
	}
	return suggested
}
