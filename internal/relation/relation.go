// Package relation infers cross-collection relations from schema documents
// and exposes them as an explicit lookup, built once before population.
//
// A schema property named like another collection declares relations: the
// property's nested property names are the relation names. Self-reference
// (a collection pointing at itself) is legal.
package relation

import (
	"github.com/angirov/gretildb/internal/schema"
)

// Spec describes one relation: items of the Left collection point at items
// of the Right collection under Name.
type Spec struct {
	Left  string `json:"left"`
	Name  string `json:"name"`
	Right string `json:"right"`
}

type specKey struct {
	left, name, right string
}

// Specs is a deduplicated, insertion-ordered set of relations. Feeding
// collections in name order keeps the overall order deterministic.
type Specs struct {
	ordered []Spec
	index   map[specKey]struct{}
}

// NewSpecs creates an empty relation lookup.
func NewSpecs() *Specs {
	return &Specs{index: make(map[specKey]struct{})}
}

// Add records a relation. It returns false when the identical triple is
// already known.
func (s *Specs) Add(sp Spec) bool {
	k := specKey{sp.Left, sp.Name, sp.Right}
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = struct{}{}
	s.ordered = append(s.ordered, sp)
	return true
}

// Predicted reports whether the triple was declared by a schema.
func (s *Specs) Predicted(left, name, right string) bool {
	_, ok := s.index[specKey{left, name, right}]
	return ok
}

// All returns every relation in insertion order.
func (s *Specs) All() []Spec {
	return s.ordered
}

// ForLeft returns the relations declared by one collection, in order.
func (s *Specs) ForLeft(left string) []Spec {
	var out []Spec
	for _, sp := range s.ordered {
		if sp.Left == left {
			out = append(out, sp)
		}
	}
	return out
}

// Len returns the number of known relations.
func (s *Specs) Len() int {
	return len(s.ordered)
}

// InferFromSchema extracts the relations one collection's schema declares.
// Top-level schema properties named like a known collection group relation
// names under their own "properties" key, in declaration order. Anything
// that does not have that shape simply contributes no relations.
func InferFromSchema(left string, doc schema.Value, known map[string]bool) []Spec {
	root, ok := doc.AsObject()
	if !ok {
		return nil
	}
	propsVal, ok := root.Get("properties")
	if !ok {
		return nil
	}
	props, ok := propsVal.AsObject()
	if !ok {
		return nil
	}

	var specs []Spec
	for _, target := range props.Keys() {
		if !known[target] {
			continue
		}
		sub, _ := props.Get(target)
		subObj, ok := sub.AsObject()
		if !ok {
			continue
		}
		nestedVal, ok := subObj.Get("properties")
		if !ok {
			continue
		}
		nested, ok := nestedVal.AsObject()
		if !ok {
			continue
		}
		for _, name := range nested.Keys() {
			specs = append(specs, Spec{Left: left, Name: name, Right: target})
		}
	}
	return specs
}
