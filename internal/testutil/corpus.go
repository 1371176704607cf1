// Package testutil provides reusable test utilities for corpus tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestCorpus represents a temporary corpus directory for testing.
type TestCorpus struct {
	Root  string
	t     *testing.T
	files map[string]string
}

// NewTestCorpus creates a new test corpus builder.
// Call Build() to create the actual corpus directory.
func NewTestCorpus(t *testing.T) *TestCorpus {
	t.Helper()
	return &TestCorpus{
		t:     t,
		files: make(map[string]string),
	}
}

// WithSchema adds _schemas/<collection>.yaml with the given content.
func (c *TestCorpus) WithSchema(collection, yaml string) *TestCorpus {
	c.files[filepath.Join("_schemas", collection+".yaml")] = yaml
	return c
}

// WithItem adds <collection>/<id>.yaml with the given content.
func (c *TestCorpus) WithItem(collection, id, yaml string) *TestCorpus {
	c.files[filepath.Join(collection, id+".yaml")] = yaml
	return c
}

// WithAttachment adds a non-item file under the collection directory.
func (c *TestCorpus) WithAttachment(collection, name, content string) *TestCorpus {
	c.files[filepath.Join(collection, name)] = content
	return c
}

// WithConfig sets the gretildb.yaml content for the corpus.
func (c *TestCorpus) WithConfig(yaml string) *TestCorpus {
	c.files["gretildb.yaml"] = yaml
	return c
}

// WithFile adds an arbitrary file, path relative to the corpus root.
func (c *TestCorpus) WithFile(path, content string) *TestCorpus {
	c.files[path] = content
	return c
}

// Build creates the corpus directory and all configured files.
// Returns the TestCorpus for method chaining.
func (c *TestCorpus) Build() *TestCorpus {
	c.t.Helper()

	c.Root = c.t.TempDir()
	for path, content := range c.files {
		c.writeFile(path, content)
	}
	return c
}

// writeFile writes a file to the corpus, creating directories as needed.
func (c *TestCorpus) writeFile(relPath, content string) {
	c.t.Helper()
	fullPath := filepath.Join(c.Root, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		c.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		c.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the corpus, relative to the root.
func (c *TestCorpus) ReadFile(relPath string) string {
	c.t.Helper()
	content, err := os.ReadFile(filepath.Join(c.Root, relPath))
	if err != nil {
		c.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

// FileExists checks if a file exists in the corpus.
func (c *TestCorpus) FileExists(relPath string) bool {
	c.t.Helper()
	_, err := os.Stat(filepath.Join(c.Root, relPath))
	return err == nil
}

// WorksSchema returns a _works schema whose composed-by relation points
// at _persons.
func WorksSchema() string {
	return `type: object
properties:
  title:
    type: string
  _persons:
    type: object
    properties:
      composed-by:
        type: array
`
}

// PersonsSchema returns a minimal _persons schema.
func PersonsSchema() string {
	return `type: object
properties:
  name:
    type: string
`
}
