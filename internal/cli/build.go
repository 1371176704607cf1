package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/angirov/gretildb/internal/collection"
	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/store"
	"github.com/angirov/gretildb/internal/ui"
)

var (
	buildMapIn   string
	buildDBOut   string
	buildDumpSQL string
	buildLazy    bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the relational snapshot",
	Long: `Builds a SQLite snapshot of the corpus: one table per collection, one
join table per relation declared in the schemas, rows and edges populated
from the item payloads.

Reads a collections map produced by 'scan --map-out', or scans the corpus
in place when --map-in is omitted. Problems are reported as violations;
the snapshot is exported either way.

Examples:
  gretildb build
  gretildb build --map-in corpus.map.json --db-out corpus.db
  gretildb build --dump-sql corpus.sql --lazy-discovery=false`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		corpus := getCorpusConfig()
		list := diag.NewList()

		var m *collection.Map
		var source string
		if buildMapIn != "" {
			var err error
			m, err = collection.ReadFile(buildMapIn)
			if err != nil {
				return handleError(ErrMapInvalid, err, "Produce the map with 'gretildb scan --map-out'")
			}
			source = buildMapIn
		} else {
			if err := requireCorpusRoot(); err != nil {
				return handleError(ErrCorpusNotFound, err, "Pass --root or set "+corpusRootEnv)
			}
			var err error
			m, err = collection.Discover(getCorpusRoot(), corpus.SchemasDir, list)
			if err != nil {
				return handleError(ErrFileReadError, err, "")
			}
			source = getCorpusRoot()
		}

		if !isJSONOutput() {
			fmt.Printf("Building snapshot from %s\n", ui.FilePath(source))
		}

		lazy := corpus.IsLazyDiscoveryEnabled()
		if cmd.Flags().Changed("lazy-discovery") {
			lazy = buildLazy
		}

		st, buildList, err := store.Build(m, store.Options{LazyDiscovery: lazy, Logger: log})
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		defer st.Close()
		list.Merge(buildList)

		dbOut := buildDBOut
		if dbOut == "" {
			dbOut = filepath.Join(getCorpusRoot(), "gretildb.db")
		}
		if err := st.ExportTo(dbOut); err != nil {
			list.Addf(diag.CategoryExportFailed, dbOut, "%v", err)
		}
		if buildDumpSQL != "" {
			if err := st.DumpSQLToFile(buildDumpSQL); err != nil {
				list.Addf(diag.CategoryExportFailed, buildDumpSQL, "%v", err)
			}
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"source":     source,
				"database":   dbOut,
				"dump_sql":   buildDumpSQL,
				"tables":     st.Tables(),
				"violations": list.All(),
			}, &Meta{Count: list.Len()})
			exitIfViolations(list)
			return nil
		}

		printViolations(list)
		fmt.Println()
		if list.Empty() {
			fmt.Println(ui.Successf("Snapshot written to %s %s.",
				ui.FilePath(dbOut), ui.Count(len(st.Tables()), "table", "tables")))
		} else {
			fmt.Println(violationSummary(list))
			fmt.Printf("Snapshot written to %s %s.\n",
				ui.FilePath(dbOut), ui.Count(len(st.Tables()), "table", "tables"))
		}
		if buildDumpSQL != "" {
			fmt.Printf("SQL dump written to %s\n", ui.FilePath(buildDumpSQL))
		}
		exitIfViolations(list)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildMapIn, "map-in", "", "Collections map JSON to build from (default: scan the corpus)")
	buildCmd.Flags().StringVar(&buildDBOut, "db-out", "", "Snapshot database path (default: <root>/gretildb.db)")
	buildCmd.Flags().StringVar(&buildDumpSQL, "dump-sql", "", "Also write a deterministic SQL text dump to this path")
	buildCmd.Flags().BoolVar(&buildLazy, "lazy-discovery", true, "Create join tables for relations only seen in payloads")
	rootCmd.AddCommand(buildCmd)
}
