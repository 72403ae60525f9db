package integrate

import (
	"thermocalc/internal/resolve"
	"thermocalc/internal/segment"
	"thermocalc/internal/thermo"
)

// Calculate chains the full pipeline for one substance: candidate
// resolution, phase segmentation and multi-phase accumulation.
// Warnings from every stage are merged onto the result in pipeline
// order.
func Calculate(r *resolve.Resolver, formula string, start, target float64) (*thermo.Result, error) {
	res, err := r.Resolve(formula, start, target)
	if err != nil {
		return nil, err
	}
	return CalculateResolved(r, res, target)
}

// CalculatePool runs the pipeline over an already-materialized
// candidate pool, for callers embedding the engine without a record
// source.
func CalculatePool(r *resolve.Resolver, formula string, pool []*thermo.Record, start, target float64) (*thermo.Result, error) {
	res, err := r.ResolvePool(formula, pool, start, target)
	if err != nil {
		return nil, err
	}
	return CalculateResolved(r, res, target)
}

// CalculateResolved segments and accumulates a finished resolution.
func CalculateResolved(r *resolve.Resolver, res *resolve.Resolution, target float64) (*thermo.Result, error) {
	plan, err := segment.Build(res, r.Config)
	if err != nil {
		return nil, err
	}
	out, err := NewAccumulator(r.Config).Accumulate(plan, target)
	if err != nil {
		return nil, err
	}
	out.Warnings = append(append([]thermo.Warning(nil), res.Warnings...), out.Warnings...)
	return out, nil
}
