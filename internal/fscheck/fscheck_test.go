package fscheck

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/testutil"
)

func loadSpec(t *testing.T, doc string) *Spec {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("writing spec: %v", err)
	}
	spec, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("LoadSpec() error = %v", err)
	}
	return spec
}

func checkTree(t *testing.T, spec *Spec, root string) *diag.List {
	t.Helper()
	list := diag.NewList()
	if err := spec.Check(root, list); err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	return list
}

func TestLoadSpecErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "directories: [unclosed\n"},
		{"bad ignore pattern", `ignore:
  dir_name_regex: ["["]
`},
		{"bad file pattern", `directories:
  - path: docs
    rules:
      file_name_regex: "("
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "layout.yaml")
			if err := os.WriteFile(path, []byte(tt.doc), 0644); err != nil {
				t.Fatalf("writing spec: %v", err)
			}
			if _, err := LoadSpec(path); err == nil {
				t.Error("LoadSpec() accepted a broken spec")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadSpec(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("LoadSpec() on a missing path succeeded")
		}
	})
}

func TestCheckRequiredDirectories(t *testing.T) {
	spec := loadSpec(t, `directories:
  - path: _works
    require_exists: true
  - path: _persons
    rules:
      require_exists: true
  - path: _texts
`)
	list := checkTree(t, spec, t.TempDir())

	if list.Len() != 2 {
		t.Fatalf("violations = %v, want the two required directories", list.All())
	}
	// Both spellings of the flag count; the optional entry stays silent.
	if got := list.All()[0].Locator; got != "_works" {
		t.Errorf("first locator = %q, want _works", got)
	}
	if got := list.All()[1].Locator; got != "_persons" {
		t.Errorf("second locator = %q, want _persons", got)
	}
	for _, v := range list.All() {
		if v.Message != "required directory is missing" {
			t.Errorf("message = %q", v.Message)
		}
	}
}

func TestCheckSubdirPolicy(t *testing.T) {
	newTree := func(t *testing.T) string {
		corpus := testutil.NewTestCorpus(t).
			WithFile("flat/sub/blob.bin", "x").
			Build()
		return corpus.Root
	}

	t.Run("disallowed", func(t *testing.T) {
		spec := loadSpec(t, `directories:
  - path: flat
    rules:
      allow_subdirs: false
`)
		list := checkTree(t, spec, newTree(t))
		if list.Len() != 1 {
			t.Fatalf("violations = %v, want one", list.All())
		}
		v := list.All()[0]
		if v.Locator != filepath.Join("flat", "sub") {
			t.Errorf("locator = %q, want flat/sub", v.Locator)
		}
		if !strings.Contains(v.Message, "subdirectories are not allowed under flat") {
			t.Errorf("message = %q", v.Message)
		}
	})

	t.Run("default allows", func(t *testing.T) {
		spec := loadSpec(t, `directories:
  - path: flat
`)
		if list := checkTree(t, spec, newTree(t)); !list.Empty() {
			t.Errorf("violations = %v, want none by default", list.All())
		}
	})

	t.Run("allow_any shields", func(t *testing.T) {
		spec := loadSpec(t, `directories:
  - path: flat
    rules:
      allow_any: true
      allow_subdirs: false
`)
		if list := checkTree(t, spec, newTree(t)); !list.Empty() {
			t.Errorf("violations = %v, want none under allow_any", list.All())
		}
	})
}

func TestCheckFileAllowance(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithFile("docs/guide.md", "ok").
		WithFile("docs/LICENSE", "ok").
		WithFile("docs/draft-1.txt", "ok").
		WithFile("docs/GUIDE.MD", "wrong case").
		WithFile("docs/notes.rst", "not allowed").
		Build()

	spec := loadSpec(t, `directories:
  - path: docs
    rules:
      only_allow_matching: true
      allowed_names: [LICENSE]
      allowed_extensions: [".md"]
      file_name_regex: "draft-"
`)
	list := checkTree(t, spec, corpus.Root)

	if list.Len() != 2 {
		t.Fatalf("violations = %v, want GUIDE.MD and notes.rst", list.All())
	}
	var locators []string
	for _, v := range list.All() {
		locators = append(locators, v.Locator)
	}
	joined := strings.Join(locators, "\n")
	// Extension comparison is case-sensitive.
	if !strings.Contains(joined, filepath.Join("docs", "GUIDE.MD")) {
		t.Errorf("locators = %v, want the wrong-case file flagged", locators)
	}
	if !strings.Contains(joined, filepath.Join("docs", "notes.rst")) {
		t.Errorf("locators = %v, want the disallowed extension flagged", locators)
	}
	if msg := list.All()[0].Message; !strings.Contains(msg, "names LICENSE; extensions .md; pattern draft-") {
		t.Errorf("message = %q, want the criteria described", msg)
	}
}

func TestCheckAllowanceNeedsSwitch(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithFile("docs/notes.rst", "tolerated").
		Build()

	// Without only_allow_matching the criteria are documentation only.
	spec := loadSpec(t, `directories:
  - path: docs
    rules:
      allowed_extensions: [".md"]
`)
	if list := checkTree(t, spec, corpus.Root); !list.Empty() {
		t.Errorf("violations = %v, want none without the enforcement switch", list.All())
	}
}

func TestCheckReadmePerDir(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithFile("docs/README.md", "top").
		WithFile("docs/a/readme.txt", "alternate name").
		WithFile("docs/b/guide.md", "no readme here").
		Build()

	spec := loadSpec(t, `directories:
  - path: docs
    rules:
      recursive: true
      require_readme_per_dir: [README.md, readme.txt]
`)
	list := checkTree(t, spec, corpus.Root)

	if list.Len() != 1 {
		t.Fatalf("violations = %v, want only docs/b", list.All())
	}
	v := list.All()[0]
	if v.Locator != filepath.Join("docs", "b") {
		t.Errorf("locator = %q, want docs/b", v.Locator)
	}
	if !strings.Contains(v.Message, "README.md, readme.txt") {
		t.Errorf("message = %q, want the acceptable names listed", v.Message)
	}
}

func TestCheckRecursiveGoverning(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithFile("data/ok.txt", "fine").
		WithFile("data/deep/nested/blob.bin", "flagged when recursive").
		Build()

	t.Run("recursive", func(t *testing.T) {
		spec := loadSpec(t, `directories:
  - path: data
    rules:
      recursive: true
      only_allow_matching: true
      allowed_extensions: [".txt"]
`)
		list := checkTree(t, spec, corpus.Root)
		if list.Len() != 1 {
			t.Fatalf("violations = %v, want the nested blob only", list.All())
		}
		if got := list.All()[0].Locator; got != filepath.Join("data", "deep", "nested", "blob.bin") {
			t.Errorf("locator = %q", got)
		}
	})

	t.Run("non-recursive", func(t *testing.T) {
		spec := loadSpec(t, `directories:
  - path: data
    rules:
      only_allow_matching: true
      allowed_extensions: [".txt"]
`)
		if list := checkTree(t, spec, corpus.Root); !list.Empty() {
			t.Errorf("violations = %v, want none outside the entry itself", list.All())
		}
	})
}

func TestCheckDeepestSpecGoverns(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithFile("data/flagged.bin", "governed by data").
		WithFile("data/raw/blob.bin", "governed by data/raw").
		Build()

	spec := loadSpec(t, `directories:
  - path: data
    rules:
      recursive: true
      only_allow_matching: true
      allowed_extensions: [".txt"]
  - path: data/raw
    rules:
      allow_any: true
`)
	list := checkTree(t, spec, corpus.Root)

	if list.Len() != 1 {
		t.Fatalf("violations = %v, want only the file outside the shield", list.All())
	}
	if got := list.All()[0].Locator; got != filepath.Join("data", "flagged.bin") {
		t.Errorf("locator = %q, want data/flagged.bin", got)
	}
}

func TestCheckIgnoredDirectories(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithFile("README.md", "fine").
		WithFile(".git/config", "never visited").
		WithFile("build/out.bin", "never visited either").
		Build()

	spec := loadSpec(t, `ignore:
  dir_name_regex: ["\\.", "build"]
directories:
  - path: .
    rules:
      recursive: true
      only_allow_matching: true
      allowed_extensions: [".md"]
`)
	if list := checkTree(t, spec, corpus.Root); !list.Empty() {
		t.Errorf("violations = %v, want ignored trees skipped", list.All())
	}
}

func TestCheckRootEntry(t *testing.T) {
	corpus := testutil.NewTestCorpus(t).
		WithFile("README.md", "fine").
		WithFile("stray.bin", "flagged").
		Build()

	spec := loadSpec(t, `directories:
  - path: .
    rules:
      only_allow_matching: true
      allowed_extensions: [".md"]
`)
	list := checkTree(t, spec, corpus.Root)

	if list.Len() != 1 {
		t.Fatalf("violations = %v, want the stray root file", list.All())
	}
	if got := list.All()[0].Locator; got != "stray.bin" {
		t.Errorf("locator = %q, want stray.bin", got)
	}
}
