// Package store builds the relational snapshot of a corpus: one primary
// table per collection, one join table per relation, populated in a strict
// two-pass order and exported on demand.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/angirov/gretildb/internal/collection"
	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/ident"
	"github.com/angirov/gretildb/internal/relation"
	"github.com/angirov/gretildb/internal/schema"
)

// Store is the relational engine a build populates. It is an explicit
// value: Build returns it and the caller passes it on to dump, export, and
// Close. There is no shared process-wide handle.
type Store struct {
	db  *sql.DB
	log *logrus.Logger

	// Table registry in creation order. Tables that failed to create stay
	// registered as dead so inserts aimed at them are skipped.
	tables []*table
	byName map[string]*table
}

type tableKind int

const (
	kindPrimary tableKind = iota
	kindJoin
)

// table records one synthesized table and the DDL that made it.
type table struct {
	name string
	kind tableKind
	ddl  string
	ok   bool

	// Join metadata; empty for primary tables.
	left     string
	relation string
	right    string
	srcCol   string
	dstCol   string
}

// Options configure a build.
type Options struct {
	// LazyDiscovery realizes relations that appear only in item payloads,
	// creating their join tables at population time. When off, payload keys
	// no schema predicted are treated as plain data.
	LazyDiscovery bool

	// Logger receives progress and unclassifiable insert errors. Defaults
	// to the standard logger.
	Logger *logrus.Logger
}

// OpenInMemory opens a fresh in-memory engine.
func OpenInMemory(log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// A pooled second connection would see its own empty in-memory
	// database, so the engine pins a single connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log, byName: make(map[string]*table)}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	if _, err := s.db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return nil
}

// DB returns the underlying sql.DB for introspection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the engine.
func (s *Store) Close() error {
	return s.db.Close()
}

// Build turns a scanned snapshot into a populated store. Violations
// accumulate in the returned list; the only error is a failure to open the
// engine itself. The caller owns the store and must Close it.
func Build(m *collection.Map, opts Options) (*Store, *diag.List, error) {
	s, err := OpenInMemory(opts.Logger)
	if err != nil {
		return nil, nil, err
	}

	list := diag.NewList()
	names := m.NameSet()
	specs := relation.NewSpecs()

	// Collection name policy, then schema-declared relations. Collections
	// without a usable schema still get tables and rows; they just cannot
	// predict relations.
	for _, coll := range m.Collections {
		if !ident.Safe(coll.Name) {
			list.Addf(diag.CategoryIdentifierUnsafe, coll.Name,
				"collection name %q is not database-safe (must match %s; try %q)",
				coll.Name, ident.Pattern, ident.Suggest(coll.Name))
		}
		doc, ok := s.loadSchema(coll, list)
		if !ok {
			continue
		}
		for _, sp := range relation.InferFromSchema(coll.Name, doc, names) {
			specs.Add(sp)
		}
	}

	// Synthesize every primary table first so join tables can reference
	// them, then the schema-predicted join tables.
	for _, coll := range m.Collections {
		s.createPrimaryTable(coll.Name, list)
	}
	for _, sp := range specs.All() {
		s.createJoinTable(sp, list)
	}

	p := newPopulator(s, m, specs, opts.LazyDiscovery, list)
	p.insertRows()
	p.insertEdges()

	s.log.Debugf("build complete: %d tables, %d violations", len(s.tables), list.Len())
	return s, list, nil
}

// loadSchema reads the schema document the snapshot recorded for a
// collection. Any failure to produce a usable document is a SchemaMissing
// violation, never fatal.
func (s *Store) loadSchema(coll *collection.Collection, list *diag.List) (schema.Value, bool) {
	if coll.SchemaPath == "" {
		list.Add(diag.CategorySchemaMissing, coll.Name, "no schema file recorded for collection")
		return schema.Null(), false
	}
	doc, err := schema.LoadFile(coll.SchemaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			list.Addf(diag.CategorySchemaMissing, coll.Name, "missing schema file %s", coll.SchemaPath)
		} else {
			list.Addf(diag.CategorySchemaMissing, coll.Name, "cannot load schema file: %v", err)
		}
		return schema.Null(), false
	}
	return doc, true
}

func (s *Store) addTable(t *table) {
	s.tables = append(s.tables, t)
	s.byName[t.name] = t
}

// Tables returns the registered table names in creation order, dead ones
// included.
func (s *Store) Tables() []string {
	names := make([]string, len(s.tables))
	for i, t := range s.tables {
		names[i] = t.name
	}
	return names
}
