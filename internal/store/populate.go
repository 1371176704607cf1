package store

import (
	"fmt"

	"github.com/angirov/gretildb/internal/collection"
	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/ident"
	"github.com/angirov/gretildb/internal/relation"
	"github.com/angirov/gretildb/internal/schema"
)

// populator runs the two population passes: first every row of every
// collection, then every edge of every item. The passes never interleave,
// so an edge can always assume both endpoint rows were already attempted.
type populator struct {
	s     *Store
	m     *collection.Map
	specs *relation.Specs
	lazy  bool
	list  *diag.List

	names map[string]bool
	// ids holds the scanned id set per collection. Reference pre-checks go
	// against these sets, not the database, so a reference to an item whose
	// row insert failed still resolves the way the scan saw it.
	ids map[string]map[string]bool
	// winners maps collection/id to the item whose row won. Duplicate ids
	// keep their first occurrence; the losers contribute no edges either.
	winners map[string]map[string]*collection.Item
}

func newPopulator(s *Store, m *collection.Map, specs *relation.Specs, lazy bool, list *diag.List) *populator {
	p := &populator{
		s:       s,
		m:       m,
		specs:   specs,
		lazy:    lazy,
		list:    list,
		names:   m.NameSet(),
		ids:     make(map[string]map[string]bool),
		winners: make(map[string]map[string]*collection.Item),
	}
	for _, coll := range m.Collections {
		p.ids[coll.Name] = coll.IDSet()
		byID := make(map[string]*collection.Item, len(coll.Items))
		for _, item := range coll.Items {
			if _, ok := byID[item.ID]; !ok {
				byID[item.ID] = item
			}
		}
		p.winners[coll.Name] = byID
	}
	return p
}

// insertRows is pass one: item rows, collection by collection in map
// order. Duplicate ids surface as a violation per extra occurrence while
// the first row stays in place.
func (p *populator) insertRows() {
	for _, coll := range p.m.Collections {
		t := p.s.byName[coll.Name]
		if t == nil || !t.ok {
			continue
		}
		stmt, err := p.s.db.Prepare(fmt.Sprintf(
			"INSERT OR IGNORE INTO %s (id) VALUES (?)", ident.Quote(coll.Name)))
		if err != nil {
			p.s.log.Errorf("prepare insert for %s: %v", coll.Name, err)
			continue
		}
		for _, item := range coll.Items {
			res, err := stmt.Exec(item.ID)
			if err != nil {
				p.s.log.Errorf("insert %s/%s: %v", coll.Name, item.ID, err)
				continue
			}
			if n, _ := res.RowsAffected(); n == 0 {
				p.list.Addf(diag.CategoryDuplicateId, coll.Name+"/"+item.ID,
					"duplicate item id %q", item.ID)
			}
		}
		stmt.Close()
	}
}

// insertEdges is pass two: walk every winning item's payload for relation
// blocks and turn their link entries into join rows.
func (p *populator) insertEdges() {
	for _, coll := range p.m.Collections {
		for _, item := range coll.Items {
			if p.winners[coll.Name][item.ID] != item {
				continue
			}
			p.walkItem(coll, item)
		}
	}
}

// walkItem visits the top-level payload keys that name a known collection.
// Each such block groups relation names; anything else in the payload is
// plain data and ignored here.
func (p *populator) walkItem(coll *collection.Collection, item *collection.Item) {
	root, ok := item.Data.AsObject()
	if !ok {
		return
	}
	for _, target := range root.Keys() {
		if !p.names[target] {
			continue
		}
		blockVal, _ := root.Get(target)
		block, ok := blockVal.AsObject()
		if !ok {
			// A collection-named key holding a non-mapping is plain data.
			continue
		}
		for _, rname := range block.Keys() {
			p.walkRelation(coll, item, target, rname, block)
		}
	}
}

func (p *populator) walkRelation(coll *collection.Collection, item *collection.Item, target, rname string, block *schema.Object) {
	locator := coll.Name + "/" + item.ID

	predicted := p.specs.Predicted(coll.Name, rname, target)
	if !predicted && !p.lazy {
		// Discovery is off: unpredicted relation names stay plain payload.
		return
	}

	// Touching the relation realizes its table; for unpredicted names this
	// is the lazy-discovery path. Reported creation failures retire the
	// relation's edges for this item.
	t := p.s.createJoinTable(relation.Spec{Left: coll.Name, Name: rname, Right: target}, p.list)
	if !t.ok {
		return
	}

	linksVal, _ := block.Get(rname)
	links, ok := linksVal.AsArray()
	if !ok {
		p.list.Addf(diag.CategoryRelationShapeInvalid, locator,
			"relation %s.%s must be a sequence of links", target, rname)
		return
	}

	for i, entryVal := range links {
		entry, ok := entryVal.AsObject()
		if !ok {
			p.list.Addf(diag.CategoryRelationShapeInvalid, locator,
				"relation %s.%s entry #%d must be a mapping", target, rname, i+1)
			continue
		}
		idVal, ok := entry.Get("id")
		rid, isStr := idVal.AsString()
		if !ok || !isStr || rid == "" {
			p.list.Addf(diag.CategoryRelationShapeInvalid, locator,
				"relation %s.%s entry #%d is missing a string id", target, rname, i+1)
			continue
		}
		if !p.ids[target][rid] {
			p.list.Addf(diag.CategoryReferenceMissing, locator,
				"relation %s.%s references missing id %q in %s", target, rname, rid, target)
			continue
		}

		res, err := p.s.db.Exec(fmt.Sprintf(
			"INSERT OR IGNORE INTO %s (%s, %s) VALUES (?, ?)",
			ident.Quote(t.name), ident.Quote(t.srcCol), ident.Quote(t.dstCol)),
			item.ID, rid)
		if err != nil {
			p.s.log.Errorf("insert edge (%s, %s) into %s: %v", item.ID, rid, t.name, err)
			continue
		}
		if n, _ := res.RowsAffected(); n == 0 {
			p.list.Addf(diag.CategoryDuplicateEdge, locator,
				"duplicate relation (%s, %s) in %s", item.ID, rid, t.name)
		}
	}
}
