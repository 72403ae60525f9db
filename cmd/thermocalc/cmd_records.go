package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thermocalc/internal/format"
)

var recordsCmd = &cobra.Command{
	Use:   "records [formula]",
	Short: "List reference records",
	Long: `List the reference records stored for a formula, or the distinct
formulas available when no argument is given.

Usage:
  thermocalc records
  thermocalc records FeO`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecords,
}

func runRecords(cmd *cobra.Command, args []string) error {
	src, err := openStore()
	if err != nil {
		return err
	}
	defer src.Close()

	if len(args) == 0 {
		formulas, err := src.Formulas()
		if err != nil {
			return err
		}
		for _, f := range formulas {
			fmt.Println(f)
		}
		return nil
	}

	recs, err := src.Candidates(args[0])
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return fmt.Errorf("no records for %q", args[0])
	}
	fmt.Println(format.Records(outputMode(), recs))
	return nil
}
