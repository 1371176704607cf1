package collection

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/schema"
	"github.com/angirov/gretildb/internal/testutil"
)

func mustObject(t *testing.T, v schema.Value) *schema.Object {
	t.Helper()
	obj, ok := v.AsObject()
	if !ok {
		t.Fatalf("value %v is not a mapping", v)
	}
	return obj
}

func filepathContains(path, segment string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == segment {
			return true
		}
	}
	return false
}

func corpusWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestDiscoverCollections(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithItem("_works", "gita", "title: Bhagavadgita\n").
		WithItem("_works", "ramayana", "title: Ramayana\n").
		WithItem("_persons", "vyasa", "name: Vyasa\n").
		WithSchema("_works", testutil.WorksSchema()).
		WithFile("notes/readme.txt", "not a collection\n").
		WithFile(".cache/stale.yaml", "ignored: true\n").
		Build()

	list := diag.NewList()
	m, err := Discover(corpus.Root, "", list)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if !list.Empty() {
		t.Errorf("Discover() violations = %v", list.All())
	}

	if got, want := m.Names(), []string{"_persons", "_works"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	works, ok := m.Lookup("_works")
	if !ok {
		t.Fatal("Lookup(_works) missed")
	}
	if len(works.Items) != 2 || works.Items[0].ID != "gita" || works.Items[1].ID != "ramayana" {
		t.Errorf("items = %v, want gita then ramayana", works.Items)
	}
	if want := filepath.Join(corpus.Root, "_schemas", "_works.yaml"); works.SchemaPath != want {
		t.Errorf("SchemaPath = %q, want %q", works.SchemaPath, want)
	}

	title, _ := mustObject(t, works.Items[0].Data).Get("title")
	if s, _ := title.AsString(); s != "Bhagavadgita" {
		t.Errorf("payload title = %q, want Bhagavadgita", s)
	}
}

func TestDiscoverSkipsSchemasDir(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithItem("_works", "gita", "title: Bhagavadgita\n").
		WithSchema("_works", testutil.WorksSchema()).
		Build()

	m, err := Discover(corpus.Root, "", diag.NewList())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if _, ok := m.Lookup("_schemas"); ok {
		t.Error("the schemas directory was scanned as a collection")
	}
}

func TestDiscoverItemOrder(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithFile("_works/late/gita.yaml", "title: late copy\n").
		WithFile("_works/early/gita.yaml", "title: early copy\n").
		WithFile("_works/apastamba.yml", "title: Apastamba\n").
		Build()

	m, err := Discover(corpus.Root, "", diag.NewList())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	works, _ := m.Lookup("_works")

	var got []string
	for _, item := range works.Items {
		got = append(got, item.ID)
	}
	if want := []string{"apastamba", "gita", "gita"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("item ids = %v, want %v", got, want)
	}
	// Duplicate ids are ordered by path so the winner is stable.
	if !filepathContains(works.Items[1].Path, "early") || !filepathContains(works.Items[2].Path, "late") {
		t.Errorf("duplicate order = %q, %q; want early before late",
			works.Items[1].Path, works.Items[2].Path)
	}
}

func TestDiscoverClaimsAttachments(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithItem("_works", "gita", "title: Bhagavadgita\n").
		WithAttachment("_works", "gita_text.txt", "devanagari\n").
		WithAttachment("_works", "gita_commentary_v1.txt", "sankara\n").
		WithAttachment("_works", "notes.txt", "stray\n").
		WithAttachment("_works", "unknown_scan.pdf", "orphan\n").
		WithAttachment("_works", ".hidden_file.txt", "skipped\n").
		Build()

	m, err := Discover(corpus.Root, "", diag.NewList())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	works, _ := m.Lookup("_works")
	gita := works.Items[0]

	var gotNames []string
	for _, p := range gita.Attachments {
		gotNames = append(gotNames, filepath.Base(p))
	}
	// The owner id ends at the first underscore, so a tag may itself
	// contain underscores.
	want := []string{"gita_commentary_v1.txt", "gita_text.txt"}
	if !reflect.DeepEqual(gotNames, want) {
		t.Errorf("attachments = %v, want %v", gotNames, want)
	}

	var unclaimed []string
	for _, p := range works.Unclaimed {
		unclaimed = append(unclaimed, filepath.Base(p))
	}
	if want := []string{"notes.txt", "unknown_scan.pdf"}; !reflect.DeepEqual(unclaimed, want) {
		t.Errorf("unclaimed = %v, want %v", unclaimed, want)
	}
}

func TestDiscoverAttachmentsToFirstDuplicate(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithFile("_works/early/gita.yaml", "title: early copy\n").
		WithFile("_works/late/gita.yaml", "title: late copy\n").
		WithAttachment("_works", "gita_text.txt", "devanagari\n").
		Build()

	m, err := Discover(corpus.Root, "", diag.NewList())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	works, _ := m.Lookup("_works")

	if n := len(works.Items[0].Attachments); n != 1 {
		t.Errorf("first duplicate has %d attachments, want 1", n)
	}
	if n := len(works.Items[1].Attachments); n != 0 {
		t.Errorf("second duplicate has %d attachments, want 0", n)
	}
}

func TestDiscoverUnreadableItem(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithItem("_works", "broken", "title: [unclosed\n").
		Build()

	list := diag.NewList()
	m, err := Discover(corpus.Root, "", list)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if list.Count(diag.CategoryItemInvalid) != 1 {
		t.Fatalf("violations = %v, want one ItemInvalid", list.All())
	}

	works, _ := m.Lookup("_works")
	if len(works.Items) != 1 {
		t.Fatalf("items = %v, want the broken item to survive", works.Items)
	}
	// The payload degrades to an empty mapping so the row still exists.
	if obj := mustObject(t, works.Items[0].Data); obj.Len() != 0 {
		t.Errorf("payload keys = %v, want none", obj.Keys())
	}
}

func TestDiscoverSchemaPathFallsBackToYml(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithItem("_works", "gita", "title: Bhagavadgita\n").
		WithFile("_schemas/_works.yml", testutil.WorksSchema()).
		Build()

	m, err := Discover(corpus.Root, "", diag.NewList())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	works, _ := m.Lookup("_works")
	if want := filepath.Join(corpus.Root, "_schemas", "_works.yml"); works.SchemaPath != want {
		t.Errorf("SchemaPath = %q, want %q", works.SchemaPath, want)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "absent"), "", diag.NewList()); err == nil {
		t.Error("Discover() on a missing root succeeded")
	}
}

func TestMapRoundTrip(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithItem("_works", "gita", "title: Bhagavadgita\nverses: 700\n").
		WithAttachment("_works", "gita_text.txt", "devanagari\n").
		Build()

	m, err := Discover(corpus.Root, "", diag.NewList())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "map.json")
	if err := m.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if loaded.Root != m.Root {
		t.Errorf("Root = %q, want %q", loaded.Root, m.Root)
	}
	works, ok := loaded.Lookup("_works")
	if !ok || len(works.Items) != 1 {
		t.Fatalf("loaded map lost the collection: %+v", loaded)
	}
	item := works.Items[0]
	if item.ID != "gita" || len(item.Attachments) != 1 {
		t.Errorf("item = %+v, want gita with one attachment", item)
	}
	// Payload key order survives serialization.
	if got := mustObject(t, item.Data).Keys(); !reflect.DeepEqual(got, []string{"title", "verses"}) {
		t.Errorf("Keys() = %v, want [title verses]", got)
	}
}

func TestReadFileErrors(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("ReadFile() on a missing path succeeded")
		}
	})
	t.Run("garbage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "map.json")
		corpusWrite(t, path, "not json")
		if _, err := ReadFile(path); err == nil {
			t.Error("ReadFile() on garbage succeeded")
		}
	})
}
