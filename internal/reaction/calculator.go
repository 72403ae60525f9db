package reaction

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"thermocalc/internal/config"
	"thermocalc/internal/integrate"
	"thermocalc/internal/logging"
	"thermocalc/internal/resolve"
	"thermocalc/internal/thermo"
)

// GasConstant is R in J/(mol·K).
const GasConstant = 8.314462618

// Species is the per-substance outcome inside a reaction result.
type Species struct {
	Term
	Result *thermo.Result
}

// Result is the reaction-level aggregate at one temperature. DeltaH
// and DeltaG are in kJ/mol of reaction as written, DeltaS in
// J/(mol·K).
type Result struct {
	ID       string
	Equation *Equation
	T        float64

	DeltaH float64
	DeltaS float64
	DeltaG float64
	LnK    float64

	Reactants []Species
	Products  []Species
	Warnings  []thermo.Warning
}

// Calculator runs the per-substance pipeline for every species of a
// reaction. Species are independent (each owns its candidate pool and
// running totals), so they are resolved and accumulated concurrently.
type Calculator struct {
	Source resolve.Source
	Config config.Config
	Log    *slog.Logger
}

// NewCalculator returns a reaction calculator over the given record
// source.
func NewCalculator(src resolve.Source, cfg config.Config) *Calculator {
	return &Calculator{Source: src, Config: cfg, Log: logging.New("reaction")}
}

// Compute calculates the reaction thermodynamics at the target
// temperature. An unbalanced equation is rejected before any species
// work starts.
func (c *Calculator) Compute(ctx context.Context, eq *Equation, start, target float64) (*Result, error) {
	unbalanced, err := eq.CheckBalance()
	if err != nil {
		return nil, err
	}
	if len(unbalanced) > 0 {
		return nil, fmt.Errorf("equation %q is unbalanced: %v", eq.Raw, unbalanced)
	}

	out := &Result{
		ID:        uuid.NewString(),
		Equation:  eq,
		T:         target,
		Reactants: make([]Species, len(eq.Reactants)),
		Products:  make([]Species, len(eq.Products)),
	}

	g, ctx := errgroup.WithContext(ctx)
	run := func(term Term, dst *Species) func() error {
		return func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := resolve.New(c.Source, c.Config)
			res, err := integrate.Calculate(r, term.Formula, start, target)
			if err != nil {
				return fmt.Errorf("species %s: %w", term.Formula, err)
			}
			*dst = Species{Term: term, Result: res}
			return nil
		}
	}
	for i, term := range eq.Reactants {
		g.Go(run(term, &out.Reactants[i]))
	}
	for i, term := range eq.Products {
		g.Go(run(term, &out.Products[i]))
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, sp := range out.Products {
		out.DeltaH += sp.Coefficient * sp.Result.H
		out.DeltaS += sp.Coefficient * sp.Result.S
		out.Warnings = append(out.Warnings, sp.Result.Warnings...)
	}
	for _, sp := range out.Reactants {
		out.DeltaH -= sp.Coefficient * sp.Result.H
		out.DeltaS -= sp.Coefficient * sp.Result.S
		out.Warnings = append(out.Warnings, sp.Result.Warnings...)
	}
	out.DeltaG = out.DeltaH - target*out.DeltaS/1000
	out.LnK = -out.DeltaG * 1000 / (GasConstant * target)

	c.Log.Debug("reaction computed",
		slog.String("id", out.ID),
		slog.String("equation", eq.Raw),
		slog.Float64("T", target),
		slog.Float64("dH", out.DeltaH),
		slog.Float64("dG", out.DeltaG),
	)
	return out, nil
}

// K returns the equilibrium constant exp(LnK), clamped against
// overflow for strongly driven reactions.
func (r *Result) K() float64 {
	if r.LnK > 709 {
		return math.Inf(1)
	}
	return math.Exp(r.LnK)
}
