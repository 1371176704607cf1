// Package collection discovers the collections of a corpus, validates their
// items, and models the scanned snapshot that the build step consumes.
package collection

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/angirov/gretildb/internal/atomicfile"
	"github.com/angirov/gretildb/internal/schema"
)

// Map is the scanned snapshot of a corpus: every collection with its items,
// serializable as JSON so scanning and building stay decoupled.
type Map struct {
	Root        string        `json:"root"`
	Collections []*Collection `json:"collections"`
}

// Collection is one underscore-prefixed directory of items.
type Collection struct {
	Name       string  `json:"name"`
	Path       string  `json:"collection_path"`
	SchemaPath string  `json:"schema_path,omitempty"`
	Rules      *Rules  `json:"rules,omitempty"`
	Items      []*Item `json:"items"`

	// Unclaimed holds non-item files that no item owns. Scan reports them;
	// they are not part of the serialized snapshot.
	Unclaimed []string `json:"-"`
}

// Item is one YAML file inside a collection.
type Item struct {
	ID          string       `json:"id"`
	Path        string       `json:"item_path"`
	Data        schema.Value `json:"item_data"`
	Attachments []string     `json:"attachments,omitempty"`
}

// Names returns the collection names in map order.
func (m *Map) Names() []string {
	names := make([]string, len(m.Collections))
	for i, c := range m.Collections {
		names[i] = c.Name
	}
	return names
}

// NameSet returns the collection names as a set, for membership checks.
func (m *Map) NameSet() map[string]bool {
	set := make(map[string]bool, len(m.Collections))
	for _, c := range m.Collections {
		set[c.Name] = true
	}
	return set
}

// Lookup returns the collection with the given name.
func (m *Map) Lookup(name string) (*Collection, bool) {
	for _, c := range m.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// IDSet returns the ids of the collection's items as a set.
func (c *Collection) IDSet() map[string]bool {
	set := make(map[string]bool, len(c.Items))
	for _, item := range c.Items {
		set[item.ID] = true
	}
	return set
}

// WriteFile writes the snapshot as indented JSON, atomically.
func (m *Map) WriteFile(path string) error {
	if err := atomicfile.WriteJSON(path, m); err != nil {
		return fmt.Errorf("failed to write collections map %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a snapshot previously written by WriteFile.
func ReadFile(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read collections map %s: %w", path, err)
	}
	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse collections map %s: %w", path, err)
	}
	return &m, nil
}
