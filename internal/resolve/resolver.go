// Package resolve selects, validates and optimizes the set of
// reference records used to cover a requested temperature range for
// one substance. Resolution is the first stage of the calculation
// pipeline; its output feeds the phase segment builder.
package resolve

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"thermocalc/internal/config"
	"thermocalc/internal/logging"
	"thermocalc/internal/thermo"
)

// Source supplies candidate records for a formula. The resolver only
// consults it for the initial pool and for the fallback chain (ionic
// variants, component oxides); a nil Source restricts resolution to an
// explicitly supplied pool.
type Source interface {
	Candidates(formula string) ([]*thermo.Record, error)
}

// Resolution is an ordered, validated covering record set plus the
// transition metadata agreed across candidates. Explain records every
// optimization decision, applied or rejected, for auditability.
type Resolution struct {
	Formula string
	Start   float64
	Target  float64

	Records []thermo.Selected
	Tmelt   float64
	Tboil   float64

	Warnings []thermo.Warning
	Explain  []string
}

// Tmax returns the upper end of the resolved coverage.
func (res *Resolution) Tmax() float64 {
	if len(res.Records) == 0 {
		return 0
	}
	return res.Records[len(res.Records)-1].Tmax
}

// Resolver resolves candidate pools into covering record sets. A
// Resolver is stateless between calls and safe for concurrent use as
// long as each call owns its own pool.
type Resolver struct {
	Source Source
	Config config.Config
	Log    *slog.Logger
}

// New returns a resolver over the given source with the given tuning.
func New(src Source, cfg config.Config) *Resolver {
	return &Resolver{Source: src, Config: cfg, Log: logging.New("resolver")}
}

// Resolve fetches the candidate pool for formula from the source and
// resolves it over [start, target].
func (r *Resolver) Resolve(formula string, start, target float64) (*Resolution, error) {
	if r.Source == nil {
		return nil, fmt.Errorf("resolve %q: no record source configured", formula)
	}
	pool, err := r.Source.Candidates(formula)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for %q: %w", formula, err)
	}
	return r.ResolvePool(formula, pool, start, target)
}

// ResolvePool resolves an already-materialized candidate pool over
// [start, target]. The pool may be unsorted, duplicated or incomplete;
// the resolver never mutates the records themselves.
func (r *Resolver) ResolvePool(formula string, pool []*thermo.Record, start, target float64) (*Resolution, error) {
	if start >= target {
		return nil, fmt.Errorf("resolve %q: start %.2f not below target %.2f", formula, start, target)
	}
	for _, rec := range pool {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
	}
	if len(pool) == 0 {
		// An empty direct pool may still resolve through the fallback
		// chain when a source is available.
		if r.Source == nil {
			return nil, &thermo.ResolutionError{Formula: formula, Kind: thermo.NotFound,
				Reason: "empty candidate pool"}
		}
	}

	res := &Resolution{Formula: formula, Start: start, Target: target}
	res.Tmelt, res.Tboil = r.voteTransitions(formula, pool, res)

	selection, err := r.selectCovering(formula, pool, start, target, res)
	if err != nil {
		selection, err = r.fallbackChain(formula, pool, start, target, res, err)
		if err != nil {
			return nil, err
		}
	}

	for i := range selection {
		res.Records = append(res.Records, thermo.Physical(selection[i]))
	}
	if err := r.checkBaseAnchors(formula, res.Records); err != nil {
		return nil, err
	}

	r.optimize(res)

	if err := r.checkBaseAnchors(formula, res.Records); err != nil {
		// Optimization must never introduce a constraint violation;
		// this is an internal invariant, not a data problem.
		return nil, fmt.Errorf("resolve %q: optimization broke base anchors: %w", formula, err)
	}
	r.Log.Debug("resolution complete",
		slog.String("formula", formula),
		slog.Int("records", len(res.Records)),
		slog.Float64("tmelt", res.Tmelt),
		slog.Float64("tboil", res.Tboil),
	)
	return res, nil
}

// anchor returns the temperature the first selected record must cover:
// 298.15 K when the range includes it, the range start otherwise.
func anchor(start, target float64) float64 {
	if start <= thermo.T298 && thermo.T298 <= target {
		return thermo.T298
	}
	return start
}

// expectedPhase derives the phase physically expected at T from the
// voted transition temperatures. Unknown means no preference.
func expectedPhase(T, tmelt, tboil float64) thermo.Phase {
	if tboil > 0 && T >= tboil {
		return thermo.PhaseGas
	}
	if tmelt > 0 {
		if T >= tmelt {
			return thermo.PhaseLiquid
		}
		return thermo.PhaseSolid
	}
	if tboil > 0 {
		// Melting point unknown: below the boiling point the substance
		// may be solid or liquid.
		return thermo.PhaseUnknown
	}
	return thermo.PhaseUnknown
}

// selectCovering performs the three-tier coverage walk over the pool.
// It returns the ordered physical selection or a failure describing
// the widest gap encountered.
func (r *Resolver) selectCovering(formula string, pool []*thermo.Record, start, target float64, res *Resolution) ([]*thermo.Record, error) {
	return r.walk(formula, pool, start, target, res, false)
}

// walk is the shared coverage walk. relaxed drops the phase-match
// preference of tiers a and b (used by the last-resort reliability
// fallback) while keeping coverage and monotonicity hard constraints.
func (r *Resolver) walk(formula string, pool []*thermo.Record, start, target float64, res *Resolution, relaxed bool) ([]*thermo.Record, error) {
	gapTol := r.Config.GapTolerance
	cur := anchor(start, target)

	var selection []*thermo.Record
	taken := make(map[*thermo.Record]bool)
	lastRank := 0
	largestGap := 0.0

	for cur < target-1e-9 {
		expected := expectedPhase(cur+1e-9, res.Tmelt, res.Tboil)
		if relaxed {
			expected = thermo.PhaseUnknown
		}

		avail := eligible(pool, taken, lastRank, cur)
		if len(selection) == 0 {
			// Hard constraint: the first record must cover the anchor.
			avail = filter(avail, func(rec *thermo.Record) bool {
				return rec.Covers(cur, gapTol)
			})
		}

		picked := pickTierA(avail, cur, expected, gapTol)
		if len(picked) == 0 {
			if rec := pickTierB(avail, cur, expected, gapTol, res.Tmelt, res.Tboil); rec != nil {
				picked = []*thermo.Record{rec}
			}
		}
		if len(picked) == 0 {
			if rec := pickTierC(avail, cur, expected, gapTol); rec != nil {
				picked = []*thermo.Record{rec}
			}
		}
		if len(picked) == 0 {
			// No record touches the boundary: bridge the gap to the
			// nearest following record, bounded by the critical
			// threshold.
			next := nearestAbove(avail, cur)
			if next == nil {
				return nil, &thermo.CoverageError{Formula: formula, Target: target, Tmax: cur}
			}
			gap := next.Tmin - cur
			if gap > largestGap {
				largestGap = gap
			}
			if gap > r.Config.CriticalGap {
				return nil, &thermo.ResolutionError{
					Formula: formula, Kind: thermo.InsufficientCoverage,
					LargestGap: largestGap,
					Reason:     fmt.Sprintf("gap [%.2f, %.2f] K", cur, next.Tmin),
				}
			}
			if gap > gapTol {
				res.warn(thermo.Warningf(thermo.WarnEscalatedGap,
					"coverage gap of %.2f K bridged at %.2f K (tolerance %.2f K)", gap, cur, gapTol))
			}
			picked = []*thermo.Record{next}
		}

		for _, rec := range picked {
			if err := r.admit(formula, pool, rec, cur, lastRank, res); err != nil {
				return nil, err
			}
			taken[rec] = true
			selection = append(selection, rec)
			if rank := rec.Phase.Rank(); rank > 0 {
				lastRank = rank
			}
		}
		advanced := maxTmax(picked)
		if advanced <= cur+1e-9 {
			// Defensive: every pick must extend coverage.
			return nil, &thermo.ResolutionError{
				Formula: formula, Kind: thermo.InsufficientCoverage,
				LargestGap: largestGap,
				Reason:     fmt.Sprintf("no record extends coverage past %.2f K", cur),
			}
		}
		cur = advanced
	}

	sortByWindow(selection)
	r.warnSamePhaseOverlaps(selection, res)
	return selection, nil
}

// admit enforces the per-record hard constraints at selection time:
// phase monotonicity (solid -> liquid -> gas, with sublimation only
// when no liquid window exists in between).
func (r *Resolver) admit(formula string, pool []*thermo.Record, rec *thermo.Record, cur float64, lastRank int, res *Resolution) error {
	rank := rec.Phase.Rank()
	if rank == 0 || lastRank == 0 {
		return nil
	}
	if rank < lastRank {
		return &thermo.ResolutionError{
			Formula: formula, Kind: thermo.InsufficientCoverage,
			Reason: fmt.Sprintf("phase order violation: %s record at %.2f K after %s coverage",
				rec.Phase, rec.Tmin, rankPhase(lastRank)),
		}
	}
	if lastRank == thermo.PhaseSolid.Rank() && rank == thermo.PhaseGas.Rank() {
		// Sublimation: legal only when no liquid window sits between
		// the current boundary and the gas record.
		for _, p := range pool {
			if p.Phase == thermo.PhaseLiquid && p.Tmax > cur && p.Tmin < rec.Tmin+r.Config.GapTolerance {
				return &thermo.ResolutionError{
					Formula: formula, Kind: thermo.InsufficientCoverage,
					Reason: fmt.Sprintf("solid to gas jump at %.2f K skips liquid window [%.2f, %.2f]",
						cur, p.Tmin, p.Tmax),
				}
			}
		}
	}
	return nil
}

func rankPhase(rank int) thermo.Phase {
	switch rank {
	case 1:
		return thermo.PhaseSolid
	case 2:
		return thermo.PhaseLiquid
	case 3:
		return thermo.PhaseGas
	}
	return thermo.PhaseUnknown
}

// pickTierA returns every record whose window starts at the boundary
// (within tolerance) in the expected phase. Multiple matches are all
// admitted; the optimizer prunes dominated duplicates afterwards.
func pickTierA(avail []*thermo.Record, cur float64, expected thermo.Phase, gapTol float64) []*thermo.Record {
	var out []*thermo.Record
	for _, rec := range avail {
		if math.Abs(rec.Tmin-cur) <= gapTol && (expected == thermo.PhaseUnknown || rec.Phase == expected) {
			out = append(out, rec)
		}
	}
	sortByWindow(out)
	return out
}

// pickTierB falls back to a record starting at the boundary whose
// window lies mostly (>50%) inside the expected phase's temperature
// region.
func pickTierB(avail []*thermo.Record, cur float64, expected thermo.Phase, gapTol, tmelt, tboil float64) *thermo.Record {
	if expected == thermo.PhaseUnknown {
		return nil
	}
	lo, hi := phaseRegion(expected, tmelt, tboil)
	var best *thermo.Record
	for _, rec := range avail {
		if math.Abs(rec.Tmin-cur) > gapTol {
			continue
		}
		overlap := math.Min(rec.Tmax, hi) - math.Max(rec.Tmin, lo)
		if overlap <= rec.Width()/2 {
			continue
		}
		if best == nil || better(rec, best) {
			best = rec
		}
	}
	return best
}

// pickTierC is the last in-pool resort: any record whose window simply
// contains the boundary. Expected-phase records win ties.
func pickTierC(avail []*thermo.Record, cur float64, expected thermo.Phase, gapTol float64) *thermo.Record {
	var best *thermo.Record
	for _, rec := range avail {
		if !rec.Covers(cur, gapTol) || rec.Tmax <= cur+1e-9 {
			continue
		}
		if best == nil || tierCBetter(rec, best, expected) {
			best = rec
		}
	}
	return best
}

func tierCBetter(a, b *thermo.Record, expected thermo.Phase) bool {
	if expected != thermo.PhaseUnknown && (a.Phase == expected) != (b.Phase == expected) {
		return a.Phase == expected
	}
	return better(a, b)
}

// better prefers higher reliability (lower tier), then the wider
// window.
func better(a, b *thermo.Record) bool {
	if a.Reliability != b.Reliability {
		return a.Reliability < b.Reliability
	}
	return a.Tmax > b.Tmax
}

// phaseRegion returns the temperature region a phase is expected to
// occupy, given the voted transition temperatures. Open ends are
// clamped to (0, +inf).
func phaseRegion(p thermo.Phase, tmelt, tboil float64) (lo, hi float64) {
	const inf = math.MaxFloat64
	switch p {
	case thermo.PhaseSolid:
		if tmelt > 0 {
			return 0, tmelt
		}
		return 0, inf
	case thermo.PhaseLiquid:
		lo = 0
		hi = inf
		if tmelt > 0 {
			lo = tmelt
		}
		if tboil > 0 {
			hi = tboil
		}
		return lo, hi
	case thermo.PhaseGas:
		if tboil > 0 {
			return tboil, inf
		}
		return 0, inf
	default:
		return 0, inf
	}
}

func eligible(pool []*thermo.Record, taken map[*thermo.Record]bool, lastRank int, cur float64) []*thermo.Record {
	var out []*thermo.Record
	for _, rec := range pool {
		if taken[rec] || rec.Tmax <= cur+1e-9 {
			continue
		}
		if rank := rec.Phase.Rank(); rank > 0 && rank < lastRank {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func filter(recs []*thermo.Record, keep func(*thermo.Record) bool) []*thermo.Record {
	var out []*thermo.Record
	for _, rec := range recs {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out
}

func nearestAbove(recs []*thermo.Record, cur float64) *thermo.Record {
	var best *thermo.Record
	for _, rec := range recs {
		if rec.Tmin <= cur {
			continue
		}
		if best == nil || rec.Tmin < best.Tmin ||
			(rec.Tmin == best.Tmin && better(rec, best)) {
			best = rec
		}
	}
	return best
}

func maxTmax(recs []*thermo.Record) float64 {
	m := 0.0
	for _, rec := range recs {
		if rec.Tmax > m {
			m = rec.Tmax
		}
	}
	return m
}

func sortByWindow(recs []*thermo.Record) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Tmin != recs[j].Tmin {
			return recs[i].Tmin < recs[j].Tmin
		}
		return recs[i].Tmax < recs[j].Tmax
	})
}

func (r *Resolver) warnSamePhaseOverlaps(selection []*thermo.Record, res *Resolution) {
	for i := 1; i < len(selection); i++ {
		a, b := selection[i-1], selection[i]
		if a.Phase != b.Phase {
			continue
		}
		if overlap := a.Tmax - b.Tmin; overlap > r.Config.GapTolerance {
			res.warn(thermo.Warningf(thermo.WarnOverlap,
				"%s records [%.2f, %.2f] and [%.2f, %.2f] overlap by %.2f K",
				a.Phase, a.Tmin, a.Tmax, b.Tmin, b.Tmax, overlap))
		}
	}
}

// checkBaseAnchors enforces hard constraint: for non-elemental
// substances the first record of every phase segment must carry its
// own H298/S298 anchor. Without it there is no physically defined
// starting value to integrate from.
func (r *Resolver) checkBaseAnchors(formula string, selection []thermo.Selected) error {
	if thermo.IsElement(formula) {
		return nil
	}
	for i := range selection {
		if i > 0 && selection[i].Phase == selection[i-1].Phase {
			continue
		}
		if !selection[i].IsBase() {
			return &thermo.ResolutionError{
				Formula: formula, Kind: thermo.InsufficientCoverage,
				Reason: fmt.Sprintf("first %s record [%.2f, %.2f] carries no H298/S298 anchor",
					selection[i].Phase, selection[i].Tmin, selection[i].Tmax),
			}
		}
	}
	return nil
}

// voteTransitions resolves the melting and boiling temperatures by
// majority vote across the candidate pool, attaching a consistency
// warning when candidates disagree.
func (r *Resolver) voteTransitions(formula string, pool []*thermo.Record, res *Resolution) (tmelt, tboil float64) {
	tmelt = majority(pool, func(rec *thermo.Record) float64 { return rec.Tmelt })
	tboil = majority(pool, func(rec *thermo.Record) float64 { return rec.Tboil })

	// Two distinct values are tolerated as normal source scatter; the
	// warning fires from three upward.
	if n := distinctCount(pool, func(rec *thermo.Record) float64 { return rec.Tmelt }); n > 2 {
		res.warn(thermo.Warningf(thermo.WarnInconsistentTransition,
			"%d distinct melting points across candidates of %s; using %.2f K", n, formula, tmelt))
	}
	if n := distinctCount(pool, func(rec *thermo.Record) float64 { return rec.Tboil }); n > 2 {
		res.warn(thermo.Warningf(thermo.WarnInconsistentTransition,
			"%d distinct boiling points across candidates of %s; using %.2f K", n, formula, tboil))
	}
	return tmelt, tboil
}

// majority returns the most frequent nonzero value of f across the
// pool, ties broken toward the value carried by the most reliable
// record. Values are bucketed to 0.01 K.
func majority(pool []*thermo.Record, f func(*thermo.Record) float64) float64 {
	type tally struct {
		count       int
		reliability int
		value       float64
	}
	buckets := make(map[int64]*tally)
	for _, rec := range pool {
		v := f(rec)
		if v <= 0 {
			continue
		}
		key := int64(math.Round(v * 100))
		t, ok := buckets[key]
		if !ok {
			t = &tally{value: v, reliability: rec.Reliability}
			buckets[key] = t
		}
		t.count++
		if rec.Reliability < t.reliability {
			t.reliability = rec.Reliability
		}
	}
	var best *tally
	for _, t := range buckets {
		if best == nil ||
			t.count > best.count ||
			(t.count == best.count && t.reliability < best.reliability) ||
			(t.count == best.count && t.reliability == best.reliability && t.value < best.value) {
			best = t
		}
	}
	if best == nil {
		return 0
	}
	return best.value
}

func distinctCount(pool []*thermo.Record, f func(*thermo.Record) float64) int {
	seen := make(map[int64]bool)
	for _, rec := range pool {
		if v := f(rec); v > 0 {
			seen[int64(math.Round(v*100))] = true
		}
	}
	return len(seen)
}

func (res *Resolution) warn(w thermo.Warning) {
	res.Warnings = append(res.Warnings, w)
}

func (res *Resolution) explainf(format string, args ...any) {
	res.Explain = append(res.Explain, fmt.Sprintf(format, args...))
}
