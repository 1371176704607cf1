package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/angirov/gretildb/internal/collection"
	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/site"
	"github.com/angirov/gretildb/internal/ui"
)

var (
	renderMapIn string
	renderFkmap string
	renderOut   string
	renderTitle string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the corpus as a static site",
	Long: `Renders the collections into a browsable static HTML site: an index
with a table of contents per collection and one page per item, with
payload fields, attachments, and links to related items.

Related-item links come from a relation map produced by 'gretildb fkmap';
without one the pages simply omit the related section.

Examples:
  gretildb render
  gretildb render --map corpus.map.json --fkmap fkmap.json
  gretildb render --out public --title "Sanskrit Corpus"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		corpus := getCorpusConfig()
		siteCfg := corpus.GetSiteConfig()

		var m *collection.Map
		if renderMapIn != "" {
			var err error
			m, err = collection.ReadFile(renderMapIn)
			if err != nil {
				return handleError(ErrMapInvalid, err, "Produce the map with 'gretildb scan --map-out'")
			}
		} else {
			if err := requireCorpusRoot(); err != nil {
				return handleError(ErrCorpusNotFound, err, "Pass --root or set "+corpusRootEnv)
			}
			list := diag.NewList()
			var err error
			m, err = collection.Discover(getCorpusRoot(), corpus.SchemasDir, list)
			if err != nil {
				return handleError(ErrFileReadError, err, "")
			}
			// Rendering is a view over whatever is there; scan problems
			// belong to the scan command.
			if !list.Empty() {
				log.Debugf("render: ignoring %d scan violation(s)", list.Len())
			}
		}

		var rows site.RowsMap
		if renderFkmap != "" {
			var err error
			rows, err = site.LoadRowsMap(renderFkmap)
			if err != nil {
				return handleError(ErrFileReadError, err, "Produce the relation map with 'gretildb fkmap --out'")
			}
		}

		title := renderTitle
		if title == "" {
			title = siteCfg.Title
		}
		outDir := renderOut
		if outDir == "" {
			outDir = filepath.Join(getCorpusRoot(), siteCfg.Output)
		}

		r, err := site.NewRenderer(title, log)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		if err := r.Render(m, rows, outDir); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		pageCount := 0
		for _, coll := range m.Collections {
			pageCount += len(coll.Items)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"out":         outDir,
				"title":       title,
				"collections": len(m.Collections),
				"pages":       pageCount,
			}, &Meta{Count: pageCount})
			return nil
		}

		fmt.Println(ui.Successf("Site rendered to %s %s.",
			ui.FilePath(outDir), ui.Count(pageCount, "page", "pages")))
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderMapIn, "map", "", "Collections map JSON to render (default: scan the corpus)")
	renderCmd.Flags().StringVar(&renderFkmap, "fkmap", "", "Relation map JSON for related-item links")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "Output directory (default: <root>/site)")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "Site title (default: from corpus config)")
	rootCmd.AddCommand(renderCmd)
}
