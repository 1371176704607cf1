package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/angirov/gretildb/internal/collection"
	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/ui"
)

var (
	scanMapOut   string
	scanHooksDir string
	scanRunHooks bool
	scanStrict   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan and validate the corpus",
	Long: `Discovers collections under the corpus root, validates every item
against its schema, and checks attachment naming rules.

Collections are top-level directories whose names start with an underscore.
Each YAML file inside is an item; sibling files named <item>_<tag>.<ext>
are its attachments. Schemas live in the schemas directory, one per
collection.

Examples:
  gretildb scan
  gretildb scan --map-out corpus.map.json
  gretildb scan --run-hooks --hooks ./hooks`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCorpusRoot(); err != nil {
			return handleError(ErrCorpusNotFound, err, "Pass --root or set "+corpusRootEnv)
		}
		root := getCorpusRoot()
		corpus := getCorpusConfig()

		if !isJSONOutput() {
			fmt.Printf("Scanning corpus: %s\n", ui.FilePath(root))
		}

		list := diag.NewList()
		m, err := collection.Discover(root, corpus.SchemasDir, list)
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}

		validator := collection.NewValidator(log)
		validator.RunHooks = scanRunHooks
		validator.HooksDir = scanHooksDir
		validator.StrictSchema = scanStrict
		validator.ValidateMap(cmd.Context(), m, corpus.Collections, list)

		if scanMapOut != "" {
			if err := m.WriteFile(scanMapOut); err != nil {
				return handleError(ErrFileWriteError, err, "")
			}
		}

		itemCount := 0
		for _, coll := range m.Collections {
			itemCount += len(coll.Items)
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"root":        m.Root,
				"collections": len(m.Collections),
				"items":       itemCount,
				"violations":  list.All(),
			}, &Meta{Count: list.Len()})
			exitIfViolations(list)
			return nil
		}

		printViolations(list)
		fmt.Println()
		if list.Empty() {
			fmt.Println(ui.Successf("No violations in %d items across %d collections.",
				itemCount, len(m.Collections)))
		} else {
			fmt.Println(violationSummary(list))
		}
		if scanMapOut != "" {
			fmt.Printf("Collections map written to %s\n", ui.FilePath(scanMapOut))
		}
		exitIfViolations(list)
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanMapOut, "map-out", "", "Write the collections map JSON to this path")
	scanCmd.Flags().StringVar(&scanHooksDir, "hooks", "", "Directory containing validation hook scripts")
	scanCmd.Flags().BoolVar(&scanRunHooks, "run-hooks", false, "Execute validation hooks for attachments")
	scanCmd.Flags().BoolVar(&scanStrict, "strict-schema", false, "Reject payload properties the schema does not declare")
	rootCmd.AddCommand(scanCmd)
}
