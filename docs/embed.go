// Package docs bundles the long-form Markdown documentation into the
// gretildb binary.
package docs

import "embed"

// FS contains the bundled docs, one directory per section.
//
//go:embed guide reference design
var FS embed.FS
