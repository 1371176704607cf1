// Package commands is the central registry of gretildb command metadata.
// The Cobra tree, the corpus-resolution gate in the root command, and the
// bundled reference docs are all checked against it so they cannot drift
// apart.
package commands

import "strings"

// Meta describes one CLI command.
type Meta struct {
	Name        string     // Command name, or "parent child" for subcommands
	Description string     // Short description, mirrors the Cobra Short text
	NeedsCorpus bool       // Whether the command resolves a corpus root before running
	Flags       []FlagMeta // Command-local flags
}

// FlagMeta describes a command-local flag.
type FlagMeta struct {
	Name        string
	Short       string
	Description string
	Type        FlagType
	Default     string
}

// FlagType is the value type of a flag.
type FlagType string

const (
	FlagTypeString FlagType = "string"
	FlagTypeBool   FlagType = "bool"
	FlagTypeInt    FlagType = "int"
)

// Registry holds every runnable gretildb command. Keys are command IDs:
// the command name, with spaces replaced by underscores for subcommands.
var Registry = map[string]Meta{
	"scan": {
		Name:        "scan",
		Description: "Scan and validate the corpus",
		NeedsCorpus: true,
		Flags: []FlagMeta{
			{Name: "map-out", Description: "Write the collections map JSON to this path", Type: FlagTypeString},
			{Name: "hooks", Description: "Directory containing validation hook scripts", Type: FlagTypeString},
			{Name: "run-hooks", Description: "Execute validation hooks for attachments", Type: FlagTypeBool, Default: "false"},
			{Name: "strict-schema", Description: "Reject payload properties the schema does not declare", Type: FlagTypeBool, Default: "false"},
		},
	},
	"build": {
		Name:        "build",
		Description: "Build the relational snapshot",
		NeedsCorpus: true,
		Flags: []FlagMeta{
			{Name: "map-in", Description: "Collections map JSON to build from (default: scan the corpus)", Type: FlagTypeString},
			{Name: "db-out", Description: "Snapshot database path (default: <root>/gretildb.db)", Type: FlagTypeString},
			{Name: "dump-sql", Description: "Also write a deterministic SQL text dump to this path", Type: FlagTypeString},
			{Name: "lazy-discovery", Description: "Create join tables for relations only seen in payloads", Type: FlagTypeBool, Default: "true"},
		},
	},
	"fkmap": {
		Name:        "fkmap",
		Description: "Map the relations stored in a snapshot",
		Flags: []FlagMeta{
			{Name: "db", Description: "Snapshot database to introspect", Type: FlagTypeString},
			{Name: "out", Description: "Write the map to this path instead of stdout", Type: FlagTypeString},
		},
	},
	"lint": {
		Name:        "lint",
		Description: "Lint the corpus directory layout",
		NeedsCorpus: true,
		Flags: []FlagMeta{
			{Name: "spec", Description: "Layout spec path (default: <root>/layout.yaml)", Type: FlagTypeString},
		},
	},
	"render": {
		Name:        "render",
		Description: "Render the corpus as a static site",
		NeedsCorpus: true,
		Flags: []FlagMeta{
			{Name: "map", Description: "Collections map JSON to render (default: scan the corpus)", Type: FlagTypeString},
			{Name: "fkmap", Description: "Relation map JSON for related-item links", Type: FlagTypeString},
			{Name: "out", Description: "Output directory (default: <root>/site)", Type: FlagTypeString},
			{Name: "title", Description: "Site title (default: from corpus config)", Type: FlagTypeString},
		},
	},
	"docs": {
		Name:        "docs",
		Description: "Browse bundled documentation",
	},
	"docs_search": {
		Name:        "docs search",
		Description: "Search bundled documentation",
		Flags: []FlagMeta{
			{Name: "limit", Short: "n", Description: "Maximum number of matches", Type: FlagTypeInt, Default: "20"},
			{Name: "section", Short: "s", Description: "Filter search to a docs section", Type: FlagTypeString},
		},
	},
	"version": {
		Name:        "version",
		Description: "Show gretildb version and build information",
	},
}

// ResolveCommandID resolves a CLI command path to a registry command ID.
// Example: "docs search" -> "docs_search".
func ResolveCommandID(path string) (string, bool) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", false
	}

	if _, ok := Registry[trimmed]; ok {
		return trimmed, true
	}

	underscored := strings.ReplaceAll(trimmed, " ", "_")
	if _, ok := Registry[underscored]; ok {
		return underscored, true
	}

	return "", false
}

// LookupMetaByPath resolves a CLI command path and returns the registry
// metadata.
func LookupMetaByPath(path string) (string, Meta, bool) {
	id, ok := ResolveCommandID(path)
	if !ok {
		return "", Meta{}, false
	}
	meta, ok := Registry[id]
	return id, meta, ok
}
