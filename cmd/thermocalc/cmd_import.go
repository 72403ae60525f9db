package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thermocalc/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <dataset.yaml>",
	Short: "Import a YAML reference dataset into a SQLite database",
	Long: `Import the records of a YAML reference dataset into the SQLite
database given with --db, creating the database when it does not exist.

Usage:
  thermocalc import substances.yaml --db .thermocalc/thermocalc.db`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	if rootFlags.dbPath == "" {
		return fmt.Errorf("import requires --db")
	}
	recs, err := store.LoadDataset(args[0])
	if err != nil {
		return err
	}
	db, err := store.Open(rootFlags.dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := store.Import(db, recs)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d records into %s\n", n, rootFlags.dbPath)
	return nil
}
