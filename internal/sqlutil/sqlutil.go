// Package sqlutil has small helpers shared by the store's dump, export,
// and introspection paths.
package sqlutil

import (
	"database/sql"
	"strings"
)

// QuoteLiteral returns s as a single-quoted SQL string literal, doubling
// any embedded quotes. Identifier quoting lives in the ident package; this
// is for values that cannot be parameterized, like VACUUM INTO targets.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ScanRows scans all rows into a slice using the provided scanner.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
