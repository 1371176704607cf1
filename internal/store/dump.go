package store

import (
	"bufio"
	"bytes"
	"database/sql"
	"fmt"
	"io"

	"github.com/angirov/gretildb/internal/atomicfile"
	"github.com/angirov/gretildb/internal/ident"
	"github.com/angirov/gretildb/internal/sqlutil"
)

// DumpSQL writes a deterministic textual rendition of the store: schema
// statements in creation order, then primary rows ordered by id, then join
// rows ordered by both columns. Identical input yields byte-identical
// output, so dumps diff cleanly under version control.
func (s *Store) DumpSQL(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "BEGIN TRANSACTION;")
	for _, t := range s.tables {
		if t.ok {
			fmt.Fprintf(bw, "%s;\n", t.ddl)
		}
	}
	for _, t := range s.tables {
		if !t.ok {
			continue
		}
		if err := s.dumpTableRows(bw, t); err != nil {
			return err
		}
	}
	fmt.Fprintln(bw, "COMMIT;")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write dump: %w", err)
	}
	return nil
}

func (s *Store) dumpTableRows(bw *bufio.Writer, t *table) error {
	switch t.kind {
	case kindPrimary:
		rows, err := s.db.Query(fmt.Sprintf(
			"SELECT id FROM %s ORDER BY id", ident.Quote(t.name)))
		if err != nil {
			return fmt.Errorf("failed to read rows of %s: %w", t.name, err)
		}
		ids, err := sqlutil.ScanRows(rows, func(r *sql.Rows) (string, error) {
			var id string
			err := r.Scan(&id)
			return id, err
		})
		if err != nil {
			return fmt.Errorf("failed to scan rows of %s: %w", t.name, err)
		}
		for _, id := range ids {
			fmt.Fprintf(bw, "INSERT INTO %s (id) VALUES (%s);\n",
				ident.Quote(t.name), sqlutil.QuoteLiteral(id))
		}

	case kindJoin:
		rows, err := s.db.Query(fmt.Sprintf(
			"SELECT %s, %s FROM %s ORDER BY 1, 2",
			ident.Quote(t.srcCol), ident.Quote(t.dstCol), ident.Quote(t.name)))
		if err != nil {
			return fmt.Errorf("failed to read rows of %s: %w", t.name, err)
		}
		type pair struct{ src, dst string }
		pairs, err := sqlutil.ScanRows(rows, func(r *sql.Rows) (pair, error) {
			var p pair
			err := r.Scan(&p.src, &p.dst)
			return p, err
		})
		if err != nil {
			return fmt.Errorf("failed to scan rows of %s: %w", t.name, err)
		}
		for _, p := range pairs {
			fmt.Fprintf(bw, "INSERT INTO %s (%s, %s) VALUES (%s, %s);\n",
				ident.Quote(t.name), ident.Quote(t.srcCol), ident.Quote(t.dstCol),
				sqlutil.QuoteLiteral(p.src), sqlutil.QuoteLiteral(p.dst))
		}
	}
	return nil
}

// DumpSQLToFile writes the dump atomically to path.
func (s *Store) DumpSQLToFile(path string) error {
	var buf bytes.Buffer
	if err := s.DumpSQL(&buf); err != nil {
		return err
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write dump %s: %w", path, err)
	}
	return nil
}
