package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/angirov/gretildb/internal/atomicfile"
	"github.com/angirov/gretildb/internal/store"
	"github.com/angirov/gretildb/internal/ui"
)

var (
	fkmapDB  string
	fkmapOut string
)

var fkmapCmd = &cobra.Command{
	Use:   "fkmap",
	Short: "Map the relations stored in a snapshot",
	Long: `Introspects a snapshot database and reports, for every row of every
table referenced by a join table, the ids related to it through each join
table.

The output shape is {parent_table: {parent_id: {join_table: [ids]}}} and
is byte-stable across runs on the same snapshot. The render command uses
it to link related items.

Examples:
  gretildb fkmap --db gretildb.db
  gretildb fkmap --db gretildb.db --out fkmap.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.OpenSnapshot(fkmapDB)
		if err != nil {
			return handleError(ErrDatabaseError, err, "Produce the snapshot with 'gretildb build'")
		}
		defer db.Close()

		rows, err := store.RowsMap(db)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if fkmapOut == "" {
			if isJSONOutput() {
				outputSuccess(rows, &Meta{Count: len(rows)})
				return nil
			}
			data, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return handleError(ErrInternal, err, "")
			}
			data = append(data, '\n')
			_, err = os.Stdout.Write(data)
			return err
		}

		if err := atomicfile.WriteJSON(fkmapOut, rows); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		if isJSONOutput() {
			outputSuccess(map[string]interface{}{"out": fkmapOut}, &Meta{Count: len(rows)})
			return nil
		}
		fmt.Printf("Relation map written to %s\n", ui.FilePath(fkmapOut))
		return nil
	},
}

func init() {
	fkmapCmd.Flags().StringVar(&fkmapDB, "db", "", "Snapshot database to introspect")
	fkmapCmd.Flags().StringVar(&fkmapOut, "out", "", "Write the map to this path instead of stdout")
	_ = fkmapCmd.MarkFlagRequired("db")
	rootCmd.AddCommand(fkmapCmd)
}
