package site

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/angirov/gretildb/internal/collection"
	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/schema"
	"github.com/angirov/gretildb/internal/testutil"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func renderCorpus(t *testing.T, corpus *testutil.TestCorpus, rows RowsMap) string {
	t.Helper()
	list := diag.NewList()
	m, err := collection.Discover(corpus.Root, "", list)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	r, err := NewRenderer("Test Corpus", quietLogger())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	outDir := filepath.Join(t.TempDir(), "site")
	if err := r.Render(m, rows, outDir); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return outDir
}

func readPage(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestRenderSite(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithItem("_works", "bhagavadgita", `title: Bhagavadgita
verses: 700
notable: true
_persons:
  composed-by:
    - id: vyasa
`).
		WithItem("_persons", "vyasa", "name: Vyasa\n").
		WithAttachment("_works", "bhagavadgita_text.txt", "devanagari\n").
		Build()

	outDir := renderCorpus(t, corpus, nil)

	index := readPage(t, filepath.Join(outDir, "index.html"))
	if !strings.Contains(index, "Test Corpus") {
		t.Error("index lacks the site title")
	}
	if !strings.Contains(index, "pages/_works/bhagavadgita.html") {
		t.Error("index lacks the item link")
	}
	// Collection headings drop the underscore prefix.
	if !strings.Contains(index, "works") {
		t.Error("index lacks the collection display name")
	}

	if _, err := os.Stat(filepath.Join(outDir, "site.css")); err != nil {
		t.Errorf("stylesheet missing: %v", err)
	}

	page := readPage(t, filepath.Join(outDir, "pages", "_works", "bhagavadgita.html"))
	for _, want := range []string{"Bhagavadgita", "700", "true", "bhagavadgita_text.txt"} {
		if !strings.Contains(page, want) {
			t.Errorf("page lacks %q", want)
		}
	}
	// The relation block renders as related links, not as a field.
	if strings.Contains(page, "composed-by:") {
		t.Error("raw relation payload leaked into the page")
	}
}

func TestRenderRelatedLinks(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithItem("_works", "bhagavadgita", "title: Bhagavadgita\n").
		WithItem("_persons", "vyasa", "name: Vyasa\n").
		Build()

	join := "_works__composed-by___persons"
	rows := RowsMap{
		"_works": {
			"bhagavadgita": {join: {"vyasa"}},
		},
		"_persons": {
			"vyasa": {join: {"bhagavadgita"}},
		},
	}
	outDir := renderCorpus(t, corpus, rows)

	work := readPage(t, filepath.Join(outDir, "pages", "_works", "bhagavadgita.html"))
	if !strings.Contains(work, "composed-by (persons)") {
		t.Error("work page lacks the relation label")
	}
	if !strings.Contains(work, "../_persons/vyasa.html") {
		t.Error("work page lacks the cross link")
	}

	// The reverse direction points back at the work.
	person := readPage(t, filepath.Join(outDir, "pages", "_persons", "vyasa.html"))
	if !strings.Contains(person, "../_works/bhagavadgita.html") {
		t.Error("person page lacks the reverse link")
	}
}

func TestRenderMarkdownFields(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithItem("_works", "gita", "summary: |\n  A *dialogue* between prince and charioteer.\n\n  <script>alert(1)</script>\n").
		Build()

	outDir := renderCorpus(t, corpus, nil)
	page := readPage(t, filepath.Join(outDir, "pages", "_works", "gita.html"))

	if !strings.Contains(page, "<em>dialogue</em>") {
		t.Error("multi-line field was not rendered as markdown")
	}
	if strings.Contains(page, "<script>") {
		t.Error("sanitizer let a script tag through")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"_works", "works"},
		{"works", "works"},
		{"_", ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitJoinName(t *testing.T) {
	names := map[string]bool{"_works": true, "_persons": true, "_a__b": true}

	tests := []struct {
		jt               string
		left, rel, right string
		ok               bool
	}{
		{"_works__composed-by___persons", "_works", "composed-by", "_persons", true},
		{"_works__part-of___works", "_works", "part-of", "_works", true},
		// Collection names may contain double underscores themselves.
		{"_a__b__linked___works", "_a__b", "linked", "_works", true},
		{"unrelated_table", "", "", "", false},
	}
	for _, tt := range tests {
		left, rel, right, ok := splitJoinName(tt.jt, names)
		if left != tt.left || rel != tt.rel || right != tt.right || ok != tt.ok {
			t.Errorf("splitJoinName(%q) = (%q, %q, %q, %v), want (%q, %q, %q, %v)",
				tt.jt, left, rel, right, ok, tt.left, tt.rel, tt.right, tt.ok)
		}
	}
}

func TestRenderValue(t *testing.T) {
	r, err := NewRenderer("t", quietLogger())
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	obj := schema.NewObject()
	obj.Set("depth", schema.Number(18))

	tests := []struct {
		name string
		v    schema.Value
		want string
	}{
		{"plain string escapes", schema.String("a <b> c"), "a &lt;b&gt; c"},
		{"number", schema.Number(700), "700"},
		{"bool", schema.Bool(true), "true"},
		{"null", schema.Null(), "<em>null</em>"},
		{"scalar array joins", schema.Array([]schema.Value{schema.String("a"), schema.String("b")}), "a, b"},
		{"nested falls back to json", schema.ObjectValue(obj), "&#34;depth&#34;: 18"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.renderValue(tt.v)
			if err != nil {
				t.Fatalf("renderValue() error = %v", err)
			}
			if !strings.Contains(string(got), tt.want) {
				t.Errorf("renderValue() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}
