package collection

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/paths"
	"github.com/angirov/gretildb/internal/schema"
)

// DefaultSchemasDir is where a corpus keeps its schema documents.
const DefaultSchemasDir = "_schemas"

// Discover scans the corpus root for collections and their items.
//
// Collections are the top-level directories whose names start with "_",
// except the schemas directory. Items are the .yaml/.yml files beneath a
// collection, recursively; the id is the file stem. Every other file is an
// attachment candidate: claimed by the item whose id prefixes its name, or
// recorded as unclaimed for scan to report.
//
// Items are sorted by (id, path) and duplicates survive, so later stages
// can detect colliding ids. Unreadable or unparseable items become
// violations, not errors; only an unreadable root is fatal.
func Discover(root, schemasDir string, list *diag.List) (*Map, error) {
	if schemasDir == "" {
		schemasDir = DefaultSchemasDir
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve corpus root %s: %w", root, err)
	}
	entries, err := os.ReadDir(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus root %s: %w", absRoot, err)
	}

	m := &Map{Root: absRoot}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || !strings.HasPrefix(name, "_") || name == schemasDir {
			continue
		}
		coll, err := scanCollection(absRoot, schemasDir, name, list)
		if err != nil {
			return nil, err
		}
		m.Collections = append(m.Collections, coll)
	}
	sort.Slice(m.Collections, func(i, j int) bool {
		return m.Collections[i].Name < m.Collections[j].Name
	})
	return m, nil
}

func scanCollection(root, schemasDir, name string, list *diag.List) (*Collection, error) {
	collPath := filepath.Join(root, name)
	coll := &Collection{
		Name:       name,
		Path:       collPath,
		SchemaPath: findSchemaPath(root, schemasDir, name),
	}

	var itemFiles, otherFiles []string
	err := filepath.WalkDir(collPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != collPath {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if containErr := paths.EnsureWithin(root, path); containErr != nil {
			if errors.Is(containErr, paths.ErrOutsideRoot) {
				return nil
			}
			return containErr
		}
		if isItemFile(path) {
			itemFiles = append(itemFiles, path)
		} else {
			otherFiles = append(otherFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk collection %s: %w", name, err)
	}

	for _, path := range itemFiles {
		coll.Items = append(coll.Items, loadItem(name, path, list))
	}
	sort.SliceStable(coll.Items, func(i, j int) bool {
		if coll.Items[i].ID != coll.Items[j].ID {
			return coll.Items[i].ID < coll.Items[j].ID
		}
		return coll.Items[i].Path < coll.Items[j].Path
	})

	claimAttachments(coll, otherFiles)
	return coll, nil
}

// findSchemaPath returns the schema document path for a collection,
// preferring .yaml over .yml. When neither exists it still returns the
// conventional .yaml location so diagnostics can name it.
func findSchemaPath(root, schemasDir, name string) string {
	base := filepath.Join(root, schemasDir, name)
	for _, ext := range []string{".yaml", ".yml"} {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext
		}
	}
	return base + ".yaml"
}

func isItemFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// loadItem reads one item file. Read and parse failures become violations
// and leave the item with an empty payload, so the row still exists.
func loadItem(collName, path string, list *diag.List) *Item {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	item := &Item{ID: stem, Path: path, Data: schema.ObjectValue(schema.NewObject())}

	data, err := os.ReadFile(path)
	if err != nil {
		list.Addf(diag.CategoryItemInvalid, collName+"/"+stem, "cannot read item file %s: %v", path, err)
		return item
	}
	v, err := schema.FromYAML(data)
	if err != nil {
		list.Addf(diag.CategoryItemInvalid, collName+"/"+stem, "cannot parse item file %s: %v", path, err)
		return item
	}
	if !v.IsNull() {
		item.Data = v
	}
	return item
}

// claimAttachments assigns non-item files to the items that own them. An
// attachment is named <itemid>_<tag><ext>, split at the first underscore;
// files that match no item stay in Unclaimed for scan to classify.
func claimAttachments(coll *Collection, files []string) {
	byID := make(map[string]*Item, len(coll.Items))
	for _, item := range coll.Items {
		// First occurrence wins for duplicate ids, same as population.
		if _, ok := byID[item.ID]; !ok {
			byID[item.ID] = item
		}
	}

	for _, path := range files {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		sep := strings.Index(stem, "_")
		if sep < 0 {
			coll.Unclaimed = append(coll.Unclaimed, path)
			continue
		}
		owner, ok := byID[stem[:sep]]
		if !ok {
			coll.Unclaimed = append(coll.Unclaimed, path)
			continue
		}
		owner.Attachments = append(owner.Attachments, path)
	}
	for _, item := range coll.Items {
		sort.Strings(item.Attachments)
	}
	sort.Strings(coll.Unclaimed)
}
