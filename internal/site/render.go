// Package site renders a scanned corpus, and optionally its relation rows
// map, into a static HTML site: an index with a collection sidebar and one
// page per item.
package site

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"
	"github.com/yuin/goldmark"

	"github.com/angirov/gretildb/internal/atomicfile"
	"github.com/angirov/gretildb/internal/collection"
	"github.com/angirov/gretildb/internal/schema"
)

//go:embed templates
var templatesFS embed.FS

// RowsMap mirrors the relation rows map the store emits: parent table ->
// parent id -> join table -> related ids.
type RowsMap = map[string]map[string]map[string][]string

// Renderer writes the static site for a corpus.
type Renderer struct {
	title string
	log   *logrus.Logger
	tmpl  *template.Template
	md    goldmark.Markdown
	san   *bluemonday.Policy
}

// NewRenderer creates a renderer titled title.
func NewRenderer(title string, log *logrus.Logger) (*Renderer, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse site templates: %w", err)
	}
	return &Renderer{
		title: title,
		log:   log,
		tmpl:  tmpl,
		md:    goldmark.New(),
		san:   bluemonday.UGCPolicy(),
	}, nil
}

// LoadRowsMap reads a relation rows map previously written as JSON.
func LoadRowsMap(path string) (RowsMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows map %s: %w", path, err)
	}
	var m RowsMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse rows map %s: %w", path, err)
	}
	return m, nil
}

// Render writes the whole site under outDir: index.html, site.css, and
// pages/<collection>/<id>.html per item. rows may be nil, which leaves the
// related sections empty.
func (r *Renderer) Render(m *collection.Map, rows RowsMap, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create site directory %s: %w", outDir, err)
	}

	css, err := templatesFS.ReadFile("templates/site.css")
	if err != nil {
		return fmt.Errorf("failed to load site stylesheet: %w", err)
	}
	if err := atomicfile.WriteFile(filepath.Join(outDir, "site.css"), css, 0o644); err != nil {
		return fmt.Errorf("failed to write site stylesheet: %w", err)
	}

	if err := r.renderIndex(m, outDir); err != nil {
		return err
	}

	names := m.NameSet()
	for _, coll := range m.Collections {
		dir := filepath.Join(outDir, "pages", coll.Name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create page directory %s: %w", dir, err)
		}
		for _, item := range coll.Items {
			r.log.Debugf("rendering page %s/%s", coll.Name, item.ID)
			if err := r.renderPage(m, names, coll, item, rows, dir); err != nil {
				return err
			}
		}
	}
	return nil
}

// DisplayName strips the underscore prefix collections carry on disk.
func DisplayName(name string) string {
	return strings.TrimPrefix(name, "_")
}

type tocItem struct {
	ID   string
	Href string
}

type tocCollection struct {
	Name    string
	Display string
	Items   []tocItem
}

type indexData struct {
	Title       string
	Collections []tocCollection
	ItemCount   int
}

func (r *Renderer) renderIndex(m *collection.Map, outDir string) error {
	data := indexData{Title: r.title}
	for _, coll := range m.Collections {
		tc := tocCollection{Name: coll.Name, Display: DisplayName(coll.Name)}
		for _, item := range coll.Items {
			tc.Items = append(tc.Items, tocItem{
				ID:   item.ID,
				Href: "pages/" + coll.Name + "/" + item.ID + ".html",
			})
			data.ItemCount++
		}
		data.Collections = append(data.Collections, tc)
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		return fmt.Errorf("failed to render index: %w", err)
	}
	if err := atomicfile.WriteFile(filepath.Join(outDir, "index.html"), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

type fieldRow struct {
	Key   string
	Value template.HTML
}

type relatedGroup struct {
	Label string
	Links []tocItem
}

type pageData struct {
	SiteTitle   string
	Title       string
	Display     string
	Fields      []fieldRow
	Attachments []string
	Related     []relatedGroup
}

func (r *Renderer) renderPage(m *collection.Map, names map[string]bool, coll *collection.Collection, item *collection.Item, rows RowsMap, dir string) error {
	data := pageData{
		SiteTitle: r.title,
		Title:     item.ID,
		Display:   DisplayName(coll.Name),
	}

	if root, ok := item.Data.AsObject(); ok {
		for _, key := range root.Keys() {
			if names[key] {
				// Relation blocks surface in the related section instead.
				continue
			}
			val, _ := root.Get(key)
			html, err := r.renderValue(val)
			if err != nil {
				return fmt.Errorf("failed to render %s/%s field %s: %w", coll.Name, item.ID, key, err)
			}
			data.Fields = append(data.Fields, fieldRow{Key: key, Value: html})
		}
	}

	for _, path := range item.Attachments {
		data.Attachments = append(data.Attachments, filepath.Base(path))
	}

	data.Related = r.relatedGroups(coll.Name, item.ID, names, rows)

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "page.html", data); err != nil {
		return fmt.Errorf("failed to render page %s/%s: %w", coll.Name, item.ID, err)
	}
	path := filepath.Join(dir, item.ID+".html")
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write page %s: %w", path, err)
	}
	return nil
}

// relatedGroups turns the rows map entries for one item into link groups,
// one per join table, in table name order.
func (r *Renderer) relatedGroups(collName, id string, names map[string]bool, rows RowsMap) []relatedGroup {
	byJoin := rows[collName][id]
	if len(byJoin) == 0 {
		return nil
	}
	joins := make([]string, 0, len(byJoin))
	for jt := range byJoin {
		joins = append(joins, jt)
	}
	sort.Strings(joins)

	var groups []relatedGroup
	for _, jt := range joins {
		left, rel, right, ok := splitJoinName(jt, names)
		group := relatedGroup{Label: jt}
		target := ""
		if ok {
			target = right
			if collName == right && collName != left {
				target = left
			}
			group.Label = rel + " (" + DisplayName(target) + ")"
		}
		for _, other := range byJoin[jt] {
			link := tocItem{ID: other}
			if target != "" {
				link.Href = "../" + target + "/" + other + ".html"
			}
			group.Links = append(group.Links, link)
		}
		groups = append(groups, group)
	}
	return groups
}

// splitJoinName resolves left__relation__right against the known
// collection names. Names may themselves contain double underscores, so
// candidates are tried longest-left first.
func splitJoinName(jt string, names map[string]bool) (left, rel, right string, ok bool) {
	ordered := make([]string, 0, len(names))
	for name := range names {
		ordered = append(ordered, name)
	}
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	for _, l := range ordered {
		prefix := l + "__"
		if !strings.HasPrefix(jt, prefix) {
			continue
		}
		for _, x := range ordered {
			suffix := "__" + x
			mid := strings.TrimPrefix(jt, prefix)
			if strings.HasSuffix(mid, suffix) && len(mid) > len(suffix) {
				return l, strings.TrimSuffix(mid, suffix), x, true
			}
		}
	}
	return "", "", "", false
}

// renderValue formats one payload value for the field table. Multi-line
// strings are treated as Markdown and sanitized; nested structures print
// as indented JSON.
func (r *Renderer) renderValue(v schema.Value) (template.HTML, error) {
	if s, ok := v.AsString(); ok {
		if strings.Contains(s, "\n") {
			var buf bytes.Buffer
			if err := r.md.Convert([]byte(s), &buf); err != nil {
				return "", fmt.Errorf("failed to convert markdown: %w", err)
			}
			return template.HTML(r.san.SanitizeBytes(buf.Bytes())), nil
		}
		return template.HTML(template.HTMLEscapeString(s)), nil
	}
	if n, ok := v.AsNumber(); ok {
		return template.HTML(strconv.FormatFloat(n, 'g', -1, 64)), nil
	}
	if b, ok := v.AsBool(); ok {
		return template.HTML(strconv.FormatBool(b)), nil
	}
	if v.IsNull() {
		return template.HTML("<em>null</em>"), nil
	}
	if arr, ok := v.AsArray(); ok && scalarsOnly(arr) {
		parts := make([]string, len(arr))
		for i, item := range arr {
			h, err := r.renderValue(item)
			if err != nil {
				return "", err
			}
			parts[i] = string(h)
		}
		return template.HTML(strings.Join(parts, ", ")), nil
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	return template.HTML("<pre>" + template.HTMLEscapeString(string(data)) + "</pre>"), nil
}

func scalarsOnly(arr []schema.Value) bool {
	for _, v := range arr {
		if _, ok := v.AsObject(); ok {
			return false
		}
		if _, ok := v.AsArray(); ok {
			return false
		}
	}
	return true
}
