package relation

import (
	"reflect"
	"testing"

	"github.com/angirov/gretildb/internal/schema"
)

func parseSchema(t *testing.T, doc string) schema.Value {
	t.Helper()
	v, err := schema.FromYAML([]byte(doc))
	if err != nil {
		t.Fatalf("FromYAML() error = %v", err)
	}
	return v
}

func TestInferFromSchema(t *testing.T) {
	known := map[string]bool{"_works": true, "_persons": true}

	doc := parseSchema(t, `type: object
properties:
  title:
    type: string
  _persons:
    type: object
    properties:
      composed-by:
        type: object
      commented-by:
        type: object
  _works:
    type: object
    properties:
      part-of:
        type: object
`)

	got := InferFromSchema("_works", doc, known)
	want := []Spec{
		{Left: "_works", Name: "composed-by", Right: "_persons"},
		{Left: "_works", Name: "commented-by", Right: "_persons"},
		{Left: "_works", Name: "part-of", Right: "_works"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InferFromSchema() = %v, want %v", got, want)
	}
}

func TestInferFromSchemaIgnoresNonRelationShapes(t *testing.T) {
	known := map[string]bool{"_works": true, "_persons": true}

	tests := []struct {
		name string
		doc  string
	}{
		{"no properties key", "type: object\n"},
		{"unknown target", `properties:
  _places:
    properties:
      located-in: {}
`},
		{"scalar target", `properties:
  _persons:
    type: string
`},
		{"target without nested properties", `properties:
  _persons:
    type: object
`},
		{"nested properties not a mapping", `properties:
  _persons:
    properties: 7
`},
		{"schema is a list", "- not\n- an\n- object\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseSchema(t, tt.doc)
			if got := InferFromSchema("_works", doc, known); got != nil {
				t.Errorf("InferFromSchema() = %v, want nil", got)
			}
		})
	}
}

func TestInferFromSchemaSelfReference(t *testing.T) {
	known := map[string]bool{"_works": true}
	doc := parseSchema(t, `properties:
  _works:
    properties:
      part-of:
        type: object
`)

	got := InferFromSchema("_works", doc, known)
	want := []Spec{{Left: "_works", Name: "part-of", Right: "_works"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InferFromSchema() = %v, want %v", got, want)
	}
}

func TestSpecsDeduplicates(t *testing.T) {
	s := NewSpecs()
	sp := Spec{Left: "_works", Name: "composed-by", Right: "_persons"}
	if !s.Add(sp) {
		t.Error("first Add() = false, want true")
	}
	if s.Add(sp) {
		t.Error("second Add() = true, want false")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSpecsOrderAndLookup(t *testing.T) {
	s := NewSpecs()
	specs := []Spec{
		{Left: "_works", Name: "composed-by", Right: "_persons"},
		{Left: "_works", Name: "part-of", Right: "_works"},
		{Left: "_persons", Name: "pupil-of", Right: "_persons"},
	}
	for _, sp := range specs {
		s.Add(sp)
	}

	if got := s.All(); !reflect.DeepEqual(got, specs) {
		t.Errorf("All() = %v, want %v", got, specs)
	}
	if got := s.ForLeft("_works"); !reflect.DeepEqual(got, specs[:2]) {
		t.Errorf("ForLeft(_works) = %v, want %v", got, specs[:2])
	}
	if !s.Predicted("_works", "composed-by", "_persons") {
		t.Error("Predicted() missed a declared relation")
	}
	if s.Predicted("_works", "composed-by", "_works") {
		t.Error("Predicted() invented a relation")
	}
}
