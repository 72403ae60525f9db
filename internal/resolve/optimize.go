package resolve

import (
	"log/slog"
	"math"

	"thermocalc/internal/thermo"
)

// optimize post-processes a constraint-satisfying selection: dominated
// duplicate windows are dropped and runs of coefficient-identical
// continuation records are collapsed into virtual records. Every step
// is accepted only if it does not lower the selection score and does
// not break coverage or the base-anchor constraint. The pass is
// deterministic and idempotent: an already-optimal selection is
// returned unchanged.
func (r *Resolver) optimize(res *Resolution) {
	before := r.score(res.Records, res)
	res.explainf("selection score before optimization: %.4f (%d records)", before, len(res.Records))

	dropped := r.eliminateDuplicates(res)
	merged := r.virtualMerge(res)

	after := r.score(res.Records, res)
	if !dropped && !merged {
		res.explainf("selection already optimal: no dominated duplicates, no mergeable runs")
	} else {
		res.explainf("selection score after optimization: %.4f (%d records)", after, len(res.Records))
	}
	r.Log.Debug("optimization pass",
		slog.Float64("score_before", before),
		slog.Float64("score_after", after),
		slog.Bool("duplicates_dropped", dropped),
		slog.Bool("runs_merged", merged),
	)
}

// score rates a selection: fewer records, better reliability tiers,
// transition temperatures covered by record windows.
func (r *Resolver) score(sel []thermo.Selected, res *Resolution) float64 {
	if len(sel) == 0 {
		return 0
	}
	w := r.Config.Weights

	relSum := 0.0
	for i := range sel {
		relSum += reliabilityScore(sel[i].Reliability)
	}
	avgRel := relSum / float64(len(sel))

	return w.Count*(1/float64(len(sel))) +
		w.Reliability*(avgRel/3) +
		w.Transitions*r.transitionCoverage(sel, res)
}

// reliabilityScore inverts the ordinal tier: tier 1 scores 3, tier 2
// scores 2, tier 3 and worse score 1.
func reliabilityScore(tier int) float64 {
	s := 4 - tier
	if s > 3 {
		s = 3
	}
	if s < 1 {
		s = 1
	}
	return float64(s)
}

// transitionCoverage is the fraction of known transition temperatures
// that lie inside some selected record's window, widened by the
// transition tolerance. With no known transitions the selection is
// vacuously covered.
func (r *Resolver) transitionCoverage(sel []thermo.Selected, res *Resolution) float64 {
	var points []float64
	if res.Tmelt > 0 {
		points = append(points, res.Tmelt)
	}
	if res.Tboil > 0 {
		points = append(points, res.Tboil)
	}
	if len(points) == 0 {
		return 1
	}
	covered := 0
	for _, t := range points {
		for i := range sel {
			if t > sel[i].Tmin-r.Config.TransitionTolerance && t < sel[i].Tmax+r.Config.TransitionTolerance {
				covered++
				break
			}
		}
	}
	return float64(covered) / float64(len(points))
}

// eliminateDuplicates drops records whose window is contained in a
// same-phase neighbour's window, keeping the wider or more reliable
// one. Only overlaps beyond the gap tolerance count as duplicates.
func (r *Resolver) eliminateDuplicates(res *Resolution) bool {
	gapTol := r.Config.GapTolerance
	changed := false

	for i := 0; i < len(res.Records); i++ {
		for j := i + 1; j < len(res.Records); j++ {
			a, b := &res.Records[i], &res.Records[j]
			if a.Phase != b.Phase {
				continue
			}
			overlap := math.Min(a.Tmax, b.Tmax) - math.Max(a.Tmin, b.Tmin)
			if overlap <= gapTol {
				continue
			}
			drop := dominated(a, b, gapTol)
			if drop < 0 {
				res.explainf("no duplicate elimination: %s windows [%.2f, %.2f] and [%.2f, %.2f] overlap but neither dominates",
					a.Phase, a.Tmin, a.Tmax, b.Tmin, b.Tmax)
				continue
			}
			dropIdx := i
			if drop == 1 {
				dropIdx = j
			}
			trial := without(res.Records, dropIdx)
			if err := r.checkBaseAnchors(res.Formula, trial); err != nil {
				res.explainf("duplicate [%.2f, %.2f] kept: removal would leave a phase segment without a base anchor",
					res.Records[dropIdx].Tmin, res.Records[dropIdx].Tmax)
				continue
			}
			if !r.coverageIntact(trial, res) {
				res.explainf("duplicate [%.2f, %.2f] kept: removal would reopen a coverage gap",
					res.Records[dropIdx].Tmin, res.Records[dropIdx].Tmax)
				continue
			}
			if r.score(trial, res) < r.score(res.Records, res) {
				res.explainf("duplicate [%.2f, %.2f] kept: removal lowers selection score",
					res.Records[dropIdx].Tmin, res.Records[dropIdx].Tmax)
				continue
			}
			res.explainf("dropped dominated %s window [%.2f, %.2f] (kept [%.2f, %.2f])",
				res.Records[dropIdx].Phase, res.Records[dropIdx].Tmin, res.Records[dropIdx].Tmax,
				res.Records[keepOf(i, j, dropIdx)].Tmin, res.Records[keepOf(i, j, dropIdx)].Tmax)
			res.Records = trial
			changed = true
			i--
			break
		}
	}
	return changed
}

func keepOf(i, j, dropIdx int) int {
	if dropIdx == i {
		return j
	}
	return i
}

// dominated reports which of a, b to drop: 0 for a, 1 for b, -1 for
// neither. A window dominates when it contains the other (within
// tolerance) and is not less reliable.
func dominated(a, b *thermo.Selected, tol float64) int {
	aContainsB := a.Tmin <= b.Tmin+tol && a.Tmax >= b.Tmax-tol
	bContainsA := b.Tmin <= a.Tmin+tol && b.Tmax >= a.Tmax-tol
	switch {
	case aContainsB && bContainsA:
		// Same window: keep the more reliable one.
		if b.Reliability < a.Reliability {
			return 0
		}
		return 1
	case aContainsB && a.Reliability <= b.Reliability:
		return 1
	case bContainsA && b.Reliability <= a.Reliability:
		return 0
	default:
		return -1
	}
}

func without(sel []thermo.Selected, idx int) []thermo.Selected {
	out := make([]thermo.Selected, 0, len(sel)-1)
	out = append(out, sel[:idx]...)
	return append(out, sel[idx+1:]...)
}

// coverageIntact verifies that a trial selection still covers
// [start, target] with no gap beyond the gap tolerance.
func (r *Resolver) coverageIntact(sel []thermo.Selected, res *Resolution) bool {
	cur := anchor(res.Start, res.Target)
	covered := cur
	for i := range sel {
		if sel[i].Tmin > covered+r.Config.CriticalGap {
			return false
		}
		if sel[i].Tmax > covered {
			covered = sel[i].Tmax
		}
	}
	return covered >= res.Target-1e-9
}

// virtualMerge collapses runs of adjacent same-phase continuation
// records with pairwise-equal coefficients into single virtual records
// spanning the combined window.
func (r *Resolver) virtualMerge(res *Resolution) bool {
	changed := false

	for i := 0; i < len(res.Records); i++ {
		run := []int{i}
		for j := i + 1; j < len(res.Records); j++ {
			prev := &res.Records[j-1]
			next := &res.Records[j]
			if next.Phase != prev.Phase || next.IsBase() || next.IsVirtual() ||
				res.Records[i].IsBase() || res.Records[i].IsVirtual() {
				break
			}
			if math.Abs(next.Tmin-prev.Tmax) > r.Config.GapTolerance {
				res.explainf("no merge at [%.2f, %.2f]: windows do not touch", prev.Tmax, next.Tmin)
				break
			}
			if !thermo.CoeffsEqual(&prev.Record, &next.Record, r.Config.CoeffTolerance) {
				res.explainf("no merge of [%.2f, %.2f] and [%.2f, %.2f]: coefficients differ",
					prev.Tmin, prev.Tmax, next.Tmin, next.Tmax)
				break
			}
			run = append(run, j)
		}
		if len(run) < 2 {
			continue
		}

		sources := make([]*thermo.Record, len(run))
		for k, idx := range run {
			rec := res.Records[idx].Record
			sources[k] = &rec
		}
		merged := thermo.Merge(sources)

		trial := make([]thermo.Selected, 0, len(res.Records)-len(run)+1)
		trial = append(trial, res.Records[:i]...)
		trial = append(trial, merged)
		trial = append(trial, res.Records[run[len(run)-1]+1:]...)

		if r.score(trial, res) < r.score(res.Records, res) {
			res.explainf("merge of %d records at [%.2f, %.2f] rejected: lowers selection score",
				len(run), merged.Tmin, merged.Tmax)
			continue
		}
		res.explainf("merged %d continuation records into virtual window [%.2f, %.2f]",
			len(run), merged.Tmin, merged.Tmax)
		res.Records = trial
		changed = true
	}
	return changed
}
