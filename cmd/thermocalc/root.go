package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"thermocalc/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	dbPath    string
	dataset   string
	config    string
	logLevel  string
	logFormat string
	output    string
}

var rootCmd = &cobra.Command{
	Use:   "thermocalc",
	Short: "Thermodynamic properties of substances and reactions",
	Long: "Thermocalc computes enthalpy, entropy, Gibbs energy and heat capacity\n" +
		"of chemical substances and reactions over arbitrary temperature ranges,\n" +
		"using piecewise Shomate reference data with full phase-transition handling.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(rootFlags.logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, rootFlags.logFormat)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.dbPath, "db", "", "Path to a SQLite reference database")
	pf.StringVar(&rootFlags.dataset, "dataset", "", "Path to a YAML reference dataset (default: built-in)")
	pf.StringVar(&rootFlags.config, "config", "", "Path to a YAML engine config")
	pf.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&rootFlags.output, "output", "ascii", "Table output: ascii or markdown")

	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(reactionCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
