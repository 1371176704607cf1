package store

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/angirov/gretildb/internal/ident"
	"github.com/angirov/gretildb/internal/sqlutil"
)

// OpenSnapshot opens an exported snapshot database file.
func OpenSnapshot(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

// RowsMap groups, for every row of every parent table, the ids related to
// it through each join table referencing that parent:
// parent table -> parent id -> join table -> related ids.
//
// The walk is deterministic: tables in name order, join rows ordered by
// their key columns. JSON-encoding the result keeps that stability because
// map keys marshal sorted.
func RowsMap(db *sql.DB) (map[string]map[string]map[string][]string, error) {
	tableRows, err := db.Query(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	tables, err := sqlutil.ScanRows(tableRows, func(r *sql.Rows) (string, error) {
		var name string
		err := r.Scan(&name)
		return name, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan table names: %w", err)
	}

	out := make(map[string]map[string]map[string][]string)
	for _, tbl := range tables {
		fks, err := foreignKeys(db, tbl)
		if err != nil {
			return nil, err
		}
		if len(fks) == 0 {
			continue
		}
		if err := collectJoinRows(db, tbl, fks, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type foreignKey struct {
	parentTable string
	fromCol     string
}

func foreignKeys(db *sql.DB, tbl string) ([]foreignKey, error) {
	rows, err := db.Query("PRAGMA foreign_key_list(" + ident.Quote(tbl) + ")")
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", tbl, err)
	}
	return sqlutil.ScanRows(rows, func(r *sql.Rows) (foreignKey, error) {
		var (
			id, seq            int
			parent, from       string
			to                 sql.NullString
			onUpdate, onDelete string
			match              string
		)
		if err := r.Scan(&id, &seq, &parent, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return foreignKey{}, err
		}
		return foreignKey{parentTable: parent, fromCol: from}, nil
	})
}

func collectJoinRows(db *sql.DB, tbl string, fks []foreignKey, out map[string]map[string]map[string][]string) error {
	quoted := make([]string, len(fks))
	order := make([]string, len(fks))
	for i, fk := range fks {
		quoted[i] = ident.Quote(fk.fromCol)
		order[i] = strconv.Itoa(i + 1)
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quoted, ", "), ident.Quote(tbl), strings.Join(order, ", "))

	rows, err := db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to read rows of %s: %w", tbl, err)
	}
	vals, err := sqlutil.ScanRows(rows, func(r *sql.Rows) ([]string, error) {
		row := make([]string, len(fks))
		ptrs := make([]interface{}, len(fks))
		for i := range row {
			ptrs[i] = &row[i]
		}
		err := r.Scan(ptrs...)
		return row, err
	})
	if err != nil {
		return fmt.Errorf("failed to scan rows of %s: %w", tbl, err)
	}

	for _, row := range vals {
		for i, fk := range fks {
			ownID := row[i]
			byParent, ok := out[fk.parentTable]
			if !ok {
				byParent = make(map[string]map[string][]string)
				out[fk.parentTable] = byParent
			}
			byID, ok := byParent[ownID]
			if !ok {
				byID = make(map[string][]string)
				byParent[ownID] = byID
			}
			for j, other := range row {
				if j != i {
					byID[tbl] = append(byID[tbl], other)
				}
			}
		}
	}
	return nil
}
