package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"thermocalc/internal/format"
	"thermocalc/internal/integrate"
	"thermocalc/internal/resolve"
	"thermocalc/internal/store"
	"thermocalc/internal/thermo"
)

var calcFlags struct {
	temp       string
	from       string
	trajectory bool
	explain    bool
	save       bool
}

var calcCmd = &cobra.Command{
	Use:   "calc <formula>",
	Short: "Compute H, S, G and Cp of one substance at a temperature",
	Long: `Compute the thermodynamic properties of a substance at a target
temperature, walking the reference records across phase transitions.

Usage:
  thermocalc calc FeO --t 1700
  thermocalc calc H2O --t 2000 --trajectory
  thermocalc calc Fe2O3 --t 900 --explain`,
	Args: cobra.ExactArgs(1),
	RunE: runCalc,
}

func init() {
	f := calcCmd.Flags()
	f.StringVar(&calcFlags.temp, "t", "", "Target temperature in K (required)")
	f.StringVar(&calcFlags.from, "from", "298.15", "Range start in K")
	f.BoolVar(&calcFlags.trajectory, "trajectory", false, "Print the full (T, H, S) trajectory")
	f.BoolVar(&calcFlags.explain, "explain", false, "Print the resolver's optimization audit")
	f.BoolVar(&calcFlags.save, "save", false, "Save the result to the calculation history (needs --db)")
	_ = calcCmd.MarkFlagRequired("t")
}

func runCalc(cmd *cobra.Command, args []string) error {
	formula := args[0]
	target, err := parseTemp(calcFlags.temp)
	if err != nil {
		return err
	}
	start, err := parseTemp(calcFlags.from)
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

	resolver := resolve.New(src, cfg)
	resolution, err := resolver.Resolve(formula, start, target)
	if err != nil {
		return err
	}
	result, err := integrate.CalculateResolved(resolver, resolution, target)
	if err != nil {
		return err
	}
	result.Warnings = dedupeWarnings(result.Warnings)

	fmt.Println(format.Result(outputMode(), result))
	if calcFlags.trajectory {
		fmt.Println(format.Trajectory(outputMode(), result))
	}
	if calcFlags.explain {
		for _, line := range resolution.Explain {
			fmt.Println("  " + line)
		}
	}

	if calcFlags.save {
		if rootFlags.dbPath == "" {
			return fmt.Errorf("--save requires --db")
		}
		return src.SaveCalculation(&store.Calculation{
			ID:       uuid.NewString(),
			Formula:  formula,
			T:        result.T,
			H:        result.H,
			S:        result.S,
			G:        result.G,
			Warnings: len(result.Warnings),
		})
	}
	return nil
}

// dedupeWarnings drops repeated warnings while preserving order.
func dedupeWarnings(ws []thermo.Warning) []thermo.Warning {
	seen := make(map[string]bool, len(ws))
	out := ws[:0]
	for _, w := range ws {
		key := string(w.Code) + "|" + w.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}
