package resolve

import (
	"fmt"
	"log/slog"
	"sort"

	"thermocalc/internal/thermo"
)

// fallbackChain is attempted, in order, when direct selection fails:
// ionic-form variants of the formula, composite oxide approximation,
// and finally the top-N most reliable records regardless of phase
// match. Each tier returns as soon as it yields a constraint-
// satisfying selection; otherwise the original failure is returned
// annotated with the tiers tried.
func (r *Resolver) fallbackChain(formula string, pool []*thermo.Record, start, target float64, res *Resolution, origErr error) ([]*thermo.Record, error) {
	var tried []string

	if r.Source != nil {
		tried = append(tried, "ionic-variants")
		if sel, ok := r.tryIonic(formula, pool, start, target, res); ok {
			return sel, nil
		}

		tried = append(tried, "composite-oxides")
		if sel, ok := r.tryComposite(formula, start, target, res); ok {
			return sel, nil
		}
	}

	tried = append(tried, "top-reliability")
	if sel, ok := r.tryTopReliability(formula, pool, start, target, res); ok {
		return sel, nil
	}

	r.Log.Debug("all fallback tiers exhausted",
		slog.String("formula", formula),
		slog.Any("tried", tried),
	)
	if len(pool) == 0 {
		return nil, &thermo.ResolutionError{Formula: formula, Kind: thermo.NotFound,
			Tried: tried, Reason: "no candidate records"}
	}
	if re, isRes := origErr.(*thermo.ResolutionError); isRes {
		re.Tried = tried
		return nil, re
	}
	return nil, origErr
}

// attempt runs a full selection over an expanded pool against a
// scratch resolution, adopting its warnings and transition vote into
// res only on success.
func (r *Resolver) attempt(formula string, pool []*thermo.Record, start, target float64, res *Resolution) ([]*thermo.Record, bool) {
	tmp := &Resolution{Formula: formula, Start: start, Target: target}
	tmp.Tmelt, tmp.Tboil = majority(pool, func(rec *thermo.Record) float64 { return rec.Tmelt }),
		majority(pool, func(rec *thermo.Record) float64 { return rec.Tboil })

	sel, err := r.selectCovering(formula, pool, start, target, tmp)
	if err != nil {
		return nil, false
	}
	res.Tmelt, res.Tboil = tmp.Tmelt, tmp.Tboil
	res.Warnings = append(res.Warnings, tmp.Warnings...)
	return sel, true
}

// tryIonic widens the pool with records stored under charge-suffixed
// variants of the formula.
func (r *Resolver) tryIonic(formula string, pool []*thermo.Record, start, target float64, res *Resolution) ([]*thermo.Record, bool) {
	expanded := append([]*thermo.Record(nil), pool...)
	found := false
	for _, variant := range thermo.IonicVariants(formula) {
		recs, err := r.Source.Candidates(variant)
		if err != nil || len(recs) == 0 {
			continue
		}
		for _, rec := range recs {
			if rec.Validate() == nil {
				expanded = append(expanded, rec)
				found = true
			}
		}
	}
	if !found {
		return nil, false
	}
	sel, ok := r.attempt(formula, expanded, start, target, res)
	if !ok {
		return nil, false
	}
	res.warn(thermo.Warningf(thermo.WarnIonicFallback,
		"no direct coverage for %s; ionic-form variants admitted", formula))
	res.explainf("fallback: ionic variants of %s expanded the pool to %d records", formula, len(expanded))
	return sel, true
}

// tryComposite approximates a multi-cation oxide compound as a
// mole-weighted combination of its component oxides. Only the solid
// phase is synthesized; the combination inherits no transition
// metadata. This is a documented estimation heuristic, always flagged.
func (r *Resolver) tryComposite(formula string, start, target float64, res *Resolution) ([]*thermo.Record, bool) {
	comps := thermo.OxideDecomposition(formula)
	if comps == nil {
		return nil, false
	}
	pool, err := r.synthesizeComposite(formula, comps, start, target)
	if err != nil || len(pool) == 0 {
		return nil, false
	}
	sel, ok := r.attempt(formula, pool, start, target, res)
	if !ok {
		return nil, false
	}
	names := make([]string, len(comps))
	for i, c := range comps {
		names[i] = fmt.Sprintf("%.3g %s", c.Moles, c.Formula)
	}
	res.warn(thermo.Warningf(thermo.WarnCompositeFallback,
		"%s approximated as component oxides: %v", formula, names))
	res.explainf("fallback: synthesized %d composite records for %s from %v", len(pool), formula, names)
	return sel, true
}

// synthesizeComposite builds combination records over every
// temperature interval where all components have a covering
// solid-phase record. Coefficients and base values are mole-weighted
// sums; only the interval anchored at 298.15 K carries base values.
func (r *Resolver) synthesizeComposite(formula string, comps []thermo.Component, start, target float64) ([]*thermo.Record, error) {
	perComp := make([][]*thermo.Record, len(comps))
	var cuts []float64
	for i, c := range comps {
		recs, err := r.Source.Candidates(c.Formula)
		if err != nil {
			return nil, err
		}
		var solids []*thermo.Record
		for _, rec := range recs {
			if rec.Phase == thermo.PhaseSolid && rec.Validate() == nil {
				solids = append(solids, rec)
				cuts = append(cuts, rec.Tmin, rec.Tmax)
			}
		}
		if len(solids) == 0 {
			return nil, fmt.Errorf("no solid records for component %s", c.Formula)
		}
		perComp[i] = solids
	}

	sort.Float64s(cuts)
	cuts = dedupeSorted(cuts)

	var out []*thermo.Record
	first := true
	for k := 0; k+1 < len(cuts); k++ {
		lo, hi := cuts[k], cuts[k+1]
		if hi-lo < 1e-9 || hi <= anchor(start, target) {
			continue
		}
		mid := (lo + hi) / 2

		rec := &thermo.Record{
			Formula:     formula,
			Phase:       thermo.PhaseSolid,
			Tmin:        lo,
			Tmax:        hi,
			Source:      "composite",
			Reliability: 3,
		}
		ok := true
		for i, c := range comps {
			cover := coveringSolid(perComp[i], mid)
			if cover == nil {
				ok = false
				break
			}
			for j := range rec.Coeffs {
				rec.Coeffs[j] += c.Moles * cover.Coeffs[j]
			}
			if first {
				rec.H298 += c.Moles * cover.H298
				rec.S298 += c.Moles * cover.S298
			}
			if cover.Reliability > rec.Reliability {
				rec.Reliability = cover.Reliability
			}
			rec.MolarMass += c.Moles * cover.MolarMass
		}
		if !ok {
			continue
		}
		first = false
		out = append(out, rec)
	}
	return out, nil
}

func coveringSolid(recs []*thermo.Record, T float64) *thermo.Record {
	var best *thermo.Record
	for _, rec := range recs {
		if T < rec.Tmin || T > rec.Tmax {
			continue
		}
		if best == nil || better(rec, best) {
			best = rec
		}
	}
	return best
}

func dedupeSorted(vals []float64) []float64 {
	out := vals[:0]
	for _, v := range vals {
		if len(out) == 0 || v-out[len(out)-1] > 1e-9 {
			out = append(out, v)
		}
	}
	return out
}

// tryTopReliability takes the top-N most reliable candidates and
// re-walks them with the phase-match preference relaxed. Coverage and
// phase monotonicity remain hard constraints.
func (r *Resolver) tryTopReliability(formula string, pool []*thermo.Record, start, target float64, res *Resolution) ([]*thermo.Record, bool) {
	if len(pool) == 0 {
		return nil, false
	}
	top := append([]*thermo.Record(nil), pool...)
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Reliability != top[j].Reliability {
			return top[i].Reliability < top[j].Reliability
		}
		return top[i].Tmin < top[j].Tmin
	})
	if len(top) > r.Config.FallbackTopN {
		top = top[:r.Config.FallbackTopN]
	}

	tmp := &Resolution{Formula: formula, Start: start, Target: target, Tmelt: res.Tmelt, Tboil: res.Tboil}
	sel, err := r.walk(formula, top, start, target, tmp, true)
	if err != nil {
		return nil, false
	}
	res.Warnings = append(res.Warnings, tmp.Warnings...)
	res.warn(thermo.Warningf(thermo.WarnReliabilityFallback,
		"phase-matched selection failed for %s; top-%d records by reliability used", formula, len(top)))
	res.explainf("fallback: relaxed walk over the %d most reliable records", len(top))
	return sel, true
}
