// Package segment partitions a resolved record sequence into
// contiguous same-phase segments separated by classified phase
// transitions. Record switches inside one phase (windows that do not
// touch) break segments too, but are exposed as breaks, never as
// physical transitions.
package segment

import (
	"fmt"
	"math"

	"thermocalc/internal/config"
	"thermocalc/internal/resolve"
	"thermocalc/internal/thermo"
)

// Break is a same-phase segment boundary caused by a record switch
// across a bridged gap. It carries no enthalpy jump.
type Break struct {
	T     float64
	Phase thermo.Phase
}

// Plan is the segment builder's output: the ordered segments, the
// physical transitions between them, and any non-physical record
// breaks, ready for the accumulator.
type Plan struct {
	Formula string
	Start   float64
	Target  float64

	Segments    []thermo.Segment
	Transitions []thermo.Transition
	Breaks      []Break
	Warnings    []thermo.Warning
}

// Tmax returns the upper end of the plan's coverage.
func (p *Plan) Tmax() float64 {
	if len(p.Segments) == 0 {
		return 0
	}
	return p.Segments[len(p.Segments)-1].Tend
}

// Build walks the resolution's ordered records and groups them into
// phase segments. A single-record, single-phase resolution degrades to
// exactly one segment and zero transitions.
func Build(res *resolve.Resolution, cfg config.Config) (*Plan, error) {
	if len(res.Records) == 0 {
		return nil, fmt.Errorf("segment %q: empty resolution", res.Formula)
	}
	for i := 1; i < len(res.Records); i++ {
		if res.Records[i].Tmax < res.Records[i-1].Tmax {
			// Sorted input with decreasing Tmax means the resolver
			// emitted a contradictory sequence.
			return nil, fmt.Errorf("segment %q: record windows out of order at [%.2f, %.2f]",
				res.Formula, res.Records[i].Tmin, res.Records[i].Tmax)
		}
	}

	plan := &Plan{Formula: res.Formula, Start: res.Start, Target: res.Target}

	startT := res.Start
	if res.Start <= thermo.T298 && thermo.T298 <= res.Target {
		startT = thermo.T298
	}

	cur := thermo.Segment{
		Phase:   res.Records[0].Phase,
		Tstart:  startT,
		Records: []thermo.Selected{res.Records[0]},
	}

	for i := 1; i < len(res.Records); i++ {
		prev := &res.Records[i-1]
		next := &res.Records[i]

		switch {
		case next.Phase != prev.Phase:
			boundary := transitionTemperature(prev, next, res, cfg)
			tr := buildTransition(prev.Phase, next.Phase, boundary, res, plan)
			cur.Tend = boundary
			plan.Segments = append(plan.Segments, cur)
			plan.Transitions = append(plan.Transitions, tr)
			cur = thermo.Segment{Phase: next.Phase, Tstart: boundary, Records: []thermo.Selected{*next}}

		case next.Tmin-prev.Tmax > cfg.GapTolerance:
			// Same phase, windows do not touch: a record switch, not
			// a physical transition.
			boundary := (prev.Tmax + next.Tmin) / 2
			cur.Tend = prev.Tmax
			plan.Segments = append(plan.Segments, cur)
			plan.Breaks = append(plan.Breaks, Break{T: boundary, Phase: next.Phase})
			cur = thermo.Segment{Phase: next.Phase, Tstart: next.Tmin, Records: []thermo.Selected{*next}}

		default:
			cur.Records = append(cur.Records, *next)
		}
	}
	cur.Tend = cur.Records[len(cur.Records)-1].Tmax
	plan.Segments = append(plan.Segments, cur)

	return plan, nil
}

// transitionTemperature prefers the voted transition temperature when
// the record boundary sits within the transition tolerance of it;
// otherwise the records' meeting point is used.
func transitionTemperature(prev, next *thermo.Selected, res *resolve.Resolution, cfg config.Config) float64 {
	boundary := prev.Tmax
	if next.Tmin > boundary {
		boundary = (prev.Tmax + next.Tmin) / 2
	}
	for _, voted := range []float64{res.Tmelt, res.Tboil} {
		if voted > 0 && math.Abs(voted-boundary) <= cfg.TransitionTolerance {
			return voted
		}
	}
	return boundary
}

// buildTransition classifies the phase pair and looks up its
// enthalpy/entropy jump from whichever record carries it. A missing
// entropy is derived as dS = dH/T; a missing enthalpy yields a zero
// jump flagged as undeclared.
func buildTransition(from, to thermo.Phase, T float64, res *resolve.Resolution, plan *Plan) thermo.Transition {
	kind := thermo.ClassifyTransition(from, to)
	tr := thermo.Transition{T: T, From: from, To: to, Kind: kind}

	switch kind {
	case thermo.Melting:
		tr.DeltaH, tr.DeltaS, tr.DeclaredH = lookupDelta(res,
			func(r *thermo.Record) (float64, float64) { return r.HFusion, r.SFusion })
	case thermo.Boiling:
		tr.DeltaH, tr.DeltaS, tr.DeclaredH = lookupDelta(res,
			func(r *thermo.Record) (float64, float64) { return r.HVapor, r.SVapor })
	case thermo.Sublimation:
		// Sublimation enthalpy is the sum of fusion and vaporization
		// when both are declared; either alone is a partial answer
		// and stays flagged.
		hf, sf, okF := lookupDelta(res, func(r *thermo.Record) (float64, float64) { return r.HFusion, r.SFusion })
		hv, sv, okV := lookupDelta(res, func(r *thermo.Record) (float64, float64) { return r.HVapor, r.SVapor })
		tr.DeltaH = hf + hv
		tr.DeltaS = sf + sv
		tr.DeclaredH = okF && okV
	default:
		plan.Warnings = append(plan.Warnings, thermo.Warningf(thermo.WarnUnknownTransition,
			"unclassified transition %s to %s at %.2f K", from, to, T))
	}

	if !tr.DeclaredH {
		plan.Warnings = append(plan.Warnings, thermo.Warningf(thermo.WarnUndeclaredDelta,
			"%s transition at %.2f K has no declared enthalpy change; zero jump applied", tr.Kind, T))
	}
	if tr.DeclaredH && tr.DeltaS == 0 && tr.DeltaH != 0 && T > 0 {
		tr.DeltaS = tr.DeltaH * 1000 / T
	}
	return tr
}

// lookupDelta scans the resolution's records (virtual sources
// included) for a declared transition delta, preferring the most
// reliable carrier.
func lookupDelta(res *resolve.Resolution, f func(*thermo.Record) (float64, float64)) (dH, dS float64, declared bool) {
	var carrier *thermo.Record
	scan := func(rec *thermo.Record) {
		h, _ := f(rec)
		if h == 0 {
			return
		}
		if carrier == nil || rec.Reliability < carrier.Reliability {
			carrier = rec
		}
	}
	for i := range res.Records {
		sel := &res.Records[i]
		if sel.IsVirtual() {
			for _, src := range sel.Sources {
				scan(src)
			}
			continue
		}
		scan(&sel.Record)
	}
	if carrier == nil {
		return 0, 0, false
	}
	dH, dS = f(carrier)
	return dH, dS, true
}
