package integrate

import (
	"fmt"
	"log/slog"

	"thermocalc/internal/config"
	"thermocalc/internal/logging"
	"thermocalc/internal/segment"
	"thermocalc/internal/thermo"
)

// Accumulator integrates heat capacity through an ordered segment
// plan. It is stateless between calls; one Accumulator may serve
// concurrent calculations.
type Accumulator struct {
	Config config.Config
	Quad   Quadrature
	Log    *slog.Logger
}

// NewAccumulator returns an accumulator with the configured
// fixed-resolution Simpson quadrature.
func NewAccumulator(cfg config.Config) *Accumulator {
	return &Accumulator{
		Config: cfg,
		Quad:   Simpson(cfg.QuadraturePoints),
		Log:    logging.New("accumulator"),
	}
}

// Accumulate walks the plan's segments up to target and produces the
// final properties plus the full trajectory. The target must lie
// within the resolved coverage; the accumulator never extrapolates.
func (a *Accumulator) Accumulate(plan *segment.Plan, target float64) (*thermo.Result, error) {
	if len(plan.Segments) == 0 {
		return nil, fmt.Errorf("accumulate %q: empty plan", plan.Formula)
	}
	if target > plan.Tmax()+a.Config.GapTolerance {
		return nil, &thermo.CoverageError{Formula: plan.Formula, Target: target, Tmax: plan.Tmax()}
	}
	quad := a.Quad
	if quad == nil {
		quad = Simpson(a.Config.QuadraturePoints)
	}

	res := &thermo.Result{Formula: plan.Formula, T: target}
	res.Warnings = append(res.Warnings, plan.Warnings...)
	res.Transitions = append(res.Transitions, plan.Transitions...)

	first := &plan.Segments[0].Records[0]
	startT := plan.Segments[0].Tstart

	// The first base record anchors the running totals at 298.15 K;
	// when the range starts elsewhere the anchor is projected to the
	// starting boundary along that record's Shomate form.
	H := first.H298 + signed(quad, func(T float64) float64 { return first.Cp(T) }, thermo.T298, startT)/1000
	S := first.S298 + signed(quad, func(T float64) float64 { return first.Cp(T) / T }, thermo.T298, startT)

	trace(res, startT, H, S)
	var lastActive *thermo.Record

	for si := range plan.Segments {
		seg := plan.Segments[si]
		if seg.Tstart > target {
			break
		}

		cur := seg.Tstart
		if si > 0 && a.transitionAfter(plan, si-1) == nil &&
			seg.Records[0].IsBase() && !seg.Records[0].IsVirtual() {
			// A record switch across a bridged gap landed on a record
			// with its own anchor: reset to it, projected to the
			// segment start.
			head := &seg.Records[0].Record
			H = head.H298 + signed(quad, func(T float64) float64 { return head.Cp(T) }, thermo.T298, cur)/1000
			S = head.S298 + signed(quad, func(T float64) float64 { return head.Cp(T) / T }, thermo.T298, cur)
			res.Warnings = append(res.Warnings, thermo.Warningf(thermo.WarnReanchor,
				"record [%.2f, %.2f] re-anchored the running totals at %.2f K", head.Tmin, head.Tmax, cur))
			trace(res, cur, H, S)
		}
		seg.HStart, seg.SStart = H, S

		done := false
		for ri := range seg.Records {
			rec := &seg.Records[ri].Record

			if ri > 0 && seg.Records[ri].IsBase() && !seg.Records[ri].IsVirtual() {
				// Mid-segment record with its own anchor: hard reset
				// to its base values projected to the boundary.
				H = rec.H298 + signed(quad, func(T float64) float64 { return rec.Cp(T) }, thermo.T298, cur)/1000
				S = rec.S298 + signed(quad, func(T float64) float64 { return rec.Cp(T) / T }, thermo.T298, cur)
				res.Warnings = append(res.Warnings, thermo.Warningf(thermo.WarnReanchor,
					"record [%.2f, %.2f] re-anchored the running totals at %.2f K", rec.Tmin, rec.Tmax, cur))
				trace(res, cur, H, S)
			}

			hi := rec.Tmax
			if ri == len(seg.Records)-1 || hi > seg.Tend {
				// A voted transition temperature can pull the segment
				// boundary a few kelvin off the records' meeting
				// point; integration stops at the boundary, not at
				// the record's own window edge.
				hi = seg.Tend
			}
			if target < hi {
				hi = target
			}
			if hi <= cur {
				continue
			}
			H += quad(func(T float64) float64 { return rec.Cp(T) }, cur, hi) / 1000
			S += quad(func(T float64) float64 { return rec.Cp(T) / T }, cur, hi)
			cur = hi
			lastActive = rec
			trace(res, cur, H, S)
			if cur >= target {
				done = true
				break
			}
		}

		res.Segments = append(res.Segments, seg)
		if done {
			break
		}

		if tr := a.transitionAfter(plan, si); tr != nil && tr.T <= target {
			H += tr.DeltaH
			S += tr.DeltaS
			trace(res, tr.T, H, S)
		}
	}

	if lastActive == nil {
		return nil, fmt.Errorf("accumulate %q: no record active at %.2f K", plan.Formula, target)
	}

	res.H = H
	res.S = S
	res.G = H - target*S/1000
	res.Cp = lastActive.Cp(target)

	a.Log.Debug("accumulation complete",
		slog.String("formula", plan.Formula),
		slog.Float64("T", target),
		slog.Float64("H", res.H),
		slog.Float64("S", res.S),
		slog.Float64("G", res.G),
	)
	return res, nil
}

// transitionAfter finds the physical transition between segment si and
// si+1, if the boundary is a phase change rather than a record break.
func (a *Accumulator) transitionAfter(plan *segment.Plan, si int) *thermo.Transition {
	if si+1 >= len(plan.Segments) {
		return nil
	}
	from := plan.Segments[si].Phase
	to := plan.Segments[si+1].Phase
	if from == to {
		return nil
	}
	idx := 0
	for i := 0; i <= si; i++ {
		if i+1 < len(plan.Segments) && plan.Segments[i].Phase != plan.Segments[i+1].Phase {
			if i == si {
				return &plan.Transitions[idx]
			}
			idx++
		}
	}
	return nil
}

func trace(res *thermo.Result, T, H, S float64) {
	res.Trajectory = append(res.Trajectory, thermo.TracePoint{T: T, H: H, S: S})
}
