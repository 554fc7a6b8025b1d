package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"sunatscraper/lib/archive"
	"sunatscraper/lib/scrapers/sunat/extract"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(archivedCmd)
}

var archivedCmd = &cobra.Command{
	Use:   "archived <ruc> --db <path>",
	Short: "Prints a record previously archived with --db, without contacting the portal.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbPath == "" {
			return errors.New("--db is required")
		}
		db, err := archive.Open(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer db.Close()

		entry, err := db.Get(cmd.Context(), args[0])
		if errors.Is(err, archive.ErrNotArchived) {
			return errNotFound
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "fetched at %s\n", entry.FetchedAt.Format(time.ANSIC))
		return renderRecords(os.Stdout, []extract.Record{entry.Record}, asJSON)
	},
}
