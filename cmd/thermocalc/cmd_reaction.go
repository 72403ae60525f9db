package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"thermocalc/internal/format"
	"thermocalc/internal/reaction"
)

var reactionFlags struct {
	temp string
	from string
}

var reactionCmd = &cobra.Command{
	Use:   "reaction <equation>",
	Short: "Compute ΔH, ΔS, ΔG and ln K of a chemical reaction",
	Long: `Compute the thermodynamic functions of a balanced reaction at a
target temperature. The equation accepts "=", "->" or "=>" between the
sides and integer or fractional stoichiometric coefficients.

Usage:
  thermocalc reaction "2 H2 + O2 = 2 H2O" --t 1500
  thermocalc reaction "FeO + C -> Fe + CO2" --t 1200`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReaction,
}

func init() {
	f := reactionCmd.Flags()
	f.StringVar(&reactionFlags.temp, "t", "", "Target temperature in K (required)")
	f.StringVar(&reactionFlags.from, "from", "298.15", "Range start in K")
	_ = reactionCmd.MarkFlagRequired("t")
}

func runReaction(cmd *cobra.Command, args []string) error {
	eq, err := reaction.ParseEquation(strings.Join(args, " "))
	if err != nil {
		return err
	}
	target, err := parseTemp(reactionFlags.temp)
	if err != nil {
		return err
	}
	start, err := parseTemp(reactionFlags.from)
	if err != nil {
		return err
	}

	cfg, err := engineConfig()
	if err != nil {
		return err
	}
	src, err := openStore()
	if err != nil {
		return err
	}
	defer src.Close()

	calc := reaction.NewCalculator(src, cfg)
	res, err := calc.Compute(context.Background(), eq, start, target)
	if err != nil {
		return err
	}

	fmt.Println(format.Reaction(outputMode(), res))
	return nil
}
