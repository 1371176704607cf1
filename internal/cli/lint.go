package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/fscheck"
	"github.com/angirov/gretildb/internal/ui"
)

var lintSpecPath string

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint the corpus directory layout",
	Long: `Checks the corpus tree against a declarative layout spec: required
directories, allowed file names and extensions, README requirements, and
directory nesting.

The spec is YAML, read from layout.yaml at the corpus root unless --spec
points elsewhere. Layout problems are violations; a broken spec file is a
setup error.

Examples:
  gretildb lint
  gretildb lint --spec docs/layout.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireCorpusRoot(); err != nil {
			return handleError(ErrCorpusNotFound, err, "Pass --root or set "+corpusRootEnv)
		}
		root := getCorpusRoot()

		if !isJSONOutput() {
			fmt.Printf("Linting layout: %s\n", ui.FilePath(root))
		}

		specPath := lintSpecPath
		if specPath == "" {
			specPath = filepath.Join(root, "layout.yaml")
		}
		spec, err := fscheck.LoadSpec(specPath)
		if err != nil {
			return handleError(ErrLayoutSpecInvalid, err, "")
		}

		list := diag.NewList()
		if err := spec.Check(root, list); err != nil {
			return handleError(ErrFileReadError, err, "")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"root":       root,
				"spec":       specPath,
				"violations": list.All(),
			}, &Meta{Count: list.Len()})
			exitIfViolations(list)
			return nil
		}

		printViolations(list)
		fmt.Println()
		if list.Empty() {
			fmt.Println(ui.Success("Layout is clean."))
		} else {
			fmt.Println(violationSummary(list))
		}
		exitIfViolations(list)
		return nil
	},
}

func init() {
	lintCmd.Flags().StringVar(&lintSpecPath, "spec", "", "Layout spec path (default: <root>/layout.yaml)")
	rootCmd.AddCommand(lintCmd)
}
