package store

import (
	"fmt"

	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/ident"
	"github.com/angirov/gretildb/internal/relation"
)

// JoinTableName returns the table name for a relation triple:
// left__relation__right.
func JoinTableName(left, rel, right string) string {
	return left + "__" + rel + "__" + right
}

// JoinColumnNames returns the two id columns of a join table. A
// self-referential relation would otherwise produce two identical names,
// so it disambiguates with src/dst suffixes.
func JoinColumnNames(sp relation.Spec) (src, dst string) {
	if sp.Left == sp.Right {
		return sp.Left + "_src_id", sp.Left + "_dst_id"
	}
	return sp.Left + "_id", sp.Right + "_id"
}

func primaryTableDDL(name string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY)", ident.Quote(name))
}

func joinTableDDL(name, srcCol, dstCol, left, right string) string {
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s TEXT NOT NULL, %s TEXT NOT NULL, "+
			"PRIMARY KEY (%s, %s), "+
			"FOREIGN KEY (%s) REFERENCES %s(id), "+
			"FOREIGN KEY (%s) REFERENCES %s(id))",
		ident.Quote(name),
		ident.Quote(srcCol), ident.Quote(dstCol),
		ident.Quote(srcCol), ident.Quote(dstCol),
		ident.Quote(srcCol), ident.Quote(left),
		ident.Quote(dstCol), ident.Quote(right),
	)
}

// createPrimaryTable ensures the primary table for a collection exists and
// is registered. Creation failures become TableCreateFailed and leave a
// dead registry entry behind.
func (s *Store) createPrimaryTable(name string, list *diag.List) *table {
	if t, ok := s.byName[name]; ok {
		return t
	}
	t := &table{name: name, kind: kindPrimary, ddl: primaryTableDDL(name)}
	if _, err := s.db.Exec(t.ddl); err != nil {
		list.Addf(diag.CategoryTableCreateFailed, name, "failed to create table: %v", err)
	} else {
		t.ok = true
	}
	s.addTable(t)
	return t
}

// createJoinTable ensures the join table for a relation triple, reusing
// the registered table when the same triple was seen before. The relation
// name is checked against the identifier policy here, which covers both
// schema-predicted and lazily-discovered relations in one place.
func (s *Store) createJoinTable(sp relation.Spec, list *diag.List) *table {
	name := JoinTableName(sp.Left, sp.Name, sp.Right)
	if t, ok := s.byName[name]; ok {
		return t
	}

	if !ident.Safe(sp.Name) {
		list.Addf(diag.CategoryIdentifierUnsafe, name,
			"relation name %q is not database-safe (must match %s; try %q)",
			sp.Name, ident.Pattern, ident.Suggest(sp.Name))
	}

	src, dst := JoinColumnNames(sp)
	t := &table{
		name:     name,
		kind:     kindJoin,
		left:     sp.Left,
		relation: sp.Name,
		right:    sp.Right,
		srcCol:   src,
		dstCol:   dst,
	}
	t.ddl = joinTableDDL(name, src, dst, sp.Left, sp.Right)
	if _, err := s.db.Exec(t.ddl); err != nil {
		list.Addf(diag.CategoryTableCreateFailed, name, "failed to create join table: %v", err)
	} else {
		t.ok = true
	}
	s.addTable(t)
	return t
}
