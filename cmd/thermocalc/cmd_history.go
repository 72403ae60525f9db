package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"thermocalc/internal/format"
)

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved calculations",
	Long: `List the most recent saved calculations, newest first. Requires
--db; only calculations saved with "calc --save" appear here.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "Maximum number of entries to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if rootFlags.dbPath == "" {
		return fmt.Errorf("history requires --db")
	}
	src, err := openStore()
	if err != nil {
		return err
	}
	defer src.Close()

	calcs, err := src.ListCalculations(historyFlags.limit)
	if err != nil {
		return err
	}
	if len(calcs) == 0 {
		fmt.Println("no saved calculations")
		return nil
	}

	t := format.NewTable(outputMode())
	t.Header("Created", "Formula", "T, K", "H, kJ/mol", "S, J/(mol*K)", "G, kJ/mol", "Warn")
	for _, c := range calcs {
		t.Row(c.Created, c.Formula,
			fmt.Sprintf("%.2f", c.T),
			fmt.Sprintf("%.3f", c.H),
			fmt.Sprintf("%.3f", c.S),
			fmt.Sprintf("%.3f", c.G),
			fmt.Sprintf("%d", c.Warnings))
	}
	fmt.Println(t.String())
	return nil
}
