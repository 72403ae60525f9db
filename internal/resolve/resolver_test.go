package resolve

import (
	"errors"
	"testing"

	"thermocalc/internal/config"
	"thermocalc/internal/thermo"
)

// feoPool is the canonical multi-record fixture: four solid windows
// (one base, three continuations) meeting a liquid base record at the
// melting point.
func feoPool() []*thermo.Record {
	return []*thermo.Record{
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 600,
			H298: -272.04, S298: 60.752, Coeffs: [6]float64{50},
			Tmelt: 1650, HFusion: 48.597, Reliability: 1},
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 600, Tmax: 1000,
			Coeffs: [6]float64{55}, Tmelt: 1650, Reliability: 1},
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 1000, Tmax: 1300,
			Coeffs: [6]float64{60}, Reliability: 1},
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 1300, Tmax: 1650,
			Coeffs: [6]float64{65}, Reliability: 1},
		{Formula: "FeO", Phase: thermo.PhaseLiquid, Tmin: 1650, Tmax: 1900,
			H298: -222.0, S298: 90.0, Coeffs: [6]float64{70},
			Tmelt: 1650, Reliability: 1},
	}
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	return New(nil, config.Default())
}

func TestResolvePool_FeO(t *testing.T) {
	r := newTestResolver(t)
	res, err := r.ResolvePool("FeO", feoPool(), 298.15, 1700)
	if err != nil {
		t.Fatalf("ResolvePool: %v", err)
	}
	if len(res.Records) != 5 {
		t.Fatalf("len(Records) = %d, want 5", len(res.Records))
	}
	if res.Tmelt != 1650 {
		t.Errorf("Tmelt = %g, want 1650", res.Tmelt)
	}
	for i := 1; i < len(res.Records); i++ {
		if res.Records[i].Tmin < res.Records[i-1].Tmin {
			t.Errorf("records out of order at index %d", i)
		}
	}
	if res.Records[4].Phase != thermo.PhaseLiquid {
		t.Errorf("last record phase = %v, want liquid", res.Records[4].Phase)
	}
	if res.Tmax() != 1900 {
		t.Errorf("Tmax = %g, want 1900", res.Tmax())
	}
}

func TestResolvePool_AlreadyOptimal(t *testing.T) {
	r := newTestResolver(t)
	res, err := r.ResolvePool("FeO", feoPool(), 298.15, 1700)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, line := range res.Explain {
		if line == "selection already optimal: no dominated duplicates, no mergeable runs" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected already-optimal audit line, got %v", res.Explain)
	}
}

func TestResolvePool_Deterministic(t *testing.T) {
	r := newTestResolver(t)
	a, err := r.ResolvePool("FeO", feoPool(), 298.15, 1700)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.ResolvePool("FeO", feoPool(), 298.15, 1700)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Records) != len(b.Records) {
		t.Fatalf("record counts differ: %d vs %d", len(a.Records), len(b.Records))
	}
	for i := range a.Records {
		if a.Records[i].Tmin != b.Records[i].Tmin || a.Records[i].Tmax != b.Records[i].Tmax {
			t.Errorf("record %d differs between runs", i)
		}
	}
}

func TestResolvePool_StartNotBelowTarget(t *testing.T) {
	r := newTestResolver(t)
	if _, err := r.ResolvePool("FeO", feoPool(), 1700, 1700); err == nil {
		t.Error("expected error for start == target")
	}
	if _, err := r.ResolvePool("FeO", feoPool(), 1700, 500); err == nil {
		t.Error("expected error for start > target")
	}
}

func TestResolvePool_InvalidRecord(t *testing.T) {
	r := newTestResolver(t)
	pool := []*thermo.Record{
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 600, Tmax: 298.15},
	}
	_, err := r.ResolvePool("FeO", pool, 298.15, 500)
	var verr *thermo.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("error = %v, want *thermo.ValidationError", err)
	}
}

func TestResolvePool_EmptyPoolNoSource(t *testing.T) {
	r := newTestResolver(t)
	_, err := r.ResolvePool("XyZ", nil, 298.15, 500)
	var rerr *thermo.ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *thermo.ResolutionError", err)
	}
	if rerr.Kind != thermo.NotFound {
		t.Errorf("Kind = %v, want NotFound", rerr.Kind)
	}
}

func TestResolvePool_SilentGap(t *testing.T) {
	r := newTestResolver(t)
	pool := []*thermo.Record{
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 500,
			H298: -272.04, S298: 60.752, Coeffs: [6]float64{50}, Reliability: 1},
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 500.8, Tmax: 1000,
			Coeffs: [6]float64{55}, Reliability: 1},
	}
	res, err := r.ResolvePool("FeO", pool, 298.15, 900)
	if err != nil {
		t.Fatalf("ResolvePool: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("gap within tolerance should be silent, got warnings %v", res.Warnings)
	}
}

func TestResolvePool_EscalatedGap(t *testing.T) {
	r := newTestResolver(t)
	pool := []*thermo.Record{
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 500,
			H298: -272.04, S298: 60.752, Coeffs: [6]float64{50}, Reliability: 1},
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 505, Tmax: 1000,
			Coeffs: [6]float64{55}, Reliability: 1},
	}
	res, err := r.ResolvePool("FeO", pool, 298.15, 900)
	if err != nil {
		t.Fatalf("ResolvePool: %v", err)
	}
	if !hasWarning(res.Warnings, thermo.WarnEscalatedGap) {
		t.Errorf("expected escalated-gap warning, got %v", res.Warnings)
	}
}

func TestResolvePool_CriticalGap(t *testing.T) {
	r := newTestResolver(t)
	pool := []*thermo.Record{
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 500,
			H298: -272.04, S298: 60.752, Coeffs: [6]float64{50}, Reliability: 1},
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 515, Tmax: 1000,
			Coeffs: [6]float64{55}, Reliability: 1},
	}
	_, err := r.ResolvePool("FeO", pool, 298.15, 900)
	var rerr *thermo.ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *thermo.ResolutionError", err)
	}
	if rerr.Kind != thermo.InsufficientCoverage {
		t.Errorf("Kind = %v, want InsufficientCoverage", rerr.Kind)
	}
	if rerr.LargestGap != 15 {
		t.Errorf("LargestGap = %g, want 15", rerr.LargestGap)
	}
	if len(rerr.Tried) == 0 || rerr.Tried[len(rerr.Tried)-1] != "top-reliability" {
		t.Errorf("Tried = %v, want top-reliability attempted", rerr.Tried)
	}
}

func TestResolvePool_BaseAnchorRequired(t *testing.T) {
	r := newTestResolver(t)
	pool := []*thermo.Record{
		// Continuation only: a compound cannot start from nothing.
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 900,
			Coeffs: [6]float64{50}, Reliability: 1},
	}
	_, err := r.ResolvePool("FeO", pool, 298.15, 800)
	var rerr *thermo.ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *thermo.ResolutionError", err)
	}
}

func TestResolvePool_ElementExemptFromAnchor(t *testing.T) {
	r := newTestResolver(t)
	pool := []*thermo.Record{
		// Elemental standard state: zero H298/S298 is the convention,
		// not a missing anchor.
		{Formula: "Fe", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 900,
			Coeffs: [6]float64{25}, Reliability: 1},
	}
	if _, err := r.ResolvePool("Fe", pool, 298.15, 800); err != nil {
		t.Errorf("element with continuation-only pool should resolve, got %v", err)
	}
}

func TestResolvePool_MajorityVote(t *testing.T) {
	r := newTestResolver(t)
	pool := []*thermo.Record{
		{Formula: "NaCl", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 1000,
			H298: -411.12, S298: 72.1, Coeffs: [6]float64{47}, Tmelt: 1000, Reliability: 1},
		{Formula: "NaCl", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 1000,
			H298: -411.0, S298: 72.0, Coeffs: [6]float64{48}, Tmelt: 1000, Reliability: 2},
		{Formula: "NaCl", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 1000,
			H298: -411.3, S298: 72.3, Coeffs: [6]float64{47.5}, Tmelt: 1005, Reliability: 1},
		{Formula: "NaCl", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 1000,
			H298: -411.2, S298: 72.2, Coeffs: [6]float64{47.2}, Tmelt: 1010, Reliability: 2},
	}
	res, err := r.ResolvePool("NaCl", pool, 298.15, 900)
	if err != nil {
		t.Fatalf("ResolvePool: %v", err)
	}
	if res.Tmelt != 1000 {
		t.Errorf("Tmelt = %g, want majority 1000", res.Tmelt)
	}
	if !hasWarning(res.Warnings, thermo.WarnInconsistentTransition) {
		t.Errorf("expected inconsistent-transition warning, got %v", res.Warnings)
	}
	// Identical windows collapse to the single most reliable record.
	if len(res.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1 after duplicate elimination", len(res.Records))
	}
	if res.Records[0].Reliability != 1 {
		t.Errorf("survivor reliability = %d, want 1", res.Records[0].Reliability)
	}
}

func TestResolvePool_TwoMeltingValuesTolerated(t *testing.T) {
	r := newTestResolver(t)
	pool := []*thermo.Record{
		{Formula: "NaCl", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 1000,
			H298: -411.12, S298: 72.1, Coeffs: [6]float64{47}, Tmelt: 1000, Reliability: 1},
		{Formula: "NaCl", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 1000,
			H298: -411.3, S298: 72.3, Coeffs: [6]float64{47.5}, Tmelt: 1005, Reliability: 2},
	}
	res, err := r.ResolvePool("NaCl", pool, 298.15, 900)
	if err != nil {
		t.Fatalf("ResolvePool: %v", err)
	}
	if hasWarning(res.Warnings, thermo.WarnInconsistentTransition) {
		t.Errorf("two distinct melting points are normal scatter, got %v", res.Warnings)
	}
}

func TestResolvePool_SublimationBlockedByLiquid(t *testing.T) {
	r := newTestResolver(t)
	pool := []*thermo.Record{
		{Formula: "FeO", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 500,
			H298: -272.04, S298: 60.752, Coeffs: [6]float64{50}, Reliability: 1},
		{Formula: "FeO", Phase: thermo.PhaseGas, Tmin: 500, Tmax: 1000,
			H298: 251.0, S298: 241.9, Coeffs: [6]float64{35}, Reliability: 1},
		{Formula: "FeO", Phase: thermo.PhaseLiquid, Tmin: 480, Tmax: 700,
			H298: -240.0, S298: 80.0, Coeffs: [6]float64{68}, Reliability: 1},
	}
	_, err := r.ResolvePool("FeO", pool, 298.15, 900)
	var rerr *thermo.ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *thermo.ResolutionError", err)
	}
}

func TestResolvePool_H2O(t *testing.T) {
	r := newTestResolver(t)
	pool := []*thermo.Record{
		{Formula: "H2O", Phase: thermo.PhaseLiquid, Tmin: 273.15, Tmax: 373.15,
			H298: -285.83, S298: 69.95, Coeffs: [6]float64{75.3},
			Tboil: 373.15, HVapor: 40.66, Reliability: 1},
		{Formula: "H2O", Phase: thermo.PhaseGas, Tmin: 373.15, Tmax: 600,
			H298: -241.83, S298: 188.84, Coeffs: [6]float64{34},
			Tboil: 373.15, Reliability: 1},
		{Formula: "H2O", Phase: thermo.PhaseGas, Tmin: 600, Tmax: 1600,
			Coeffs: [6]float64{37}, Reliability: 1},
		{Formula: "H2O", Phase: thermo.PhaseGas, Tmin: 1600, Tmax: 6000,
			Coeffs: [6]float64{37}, Reliability: 2},
	}
	res, err := r.ResolvePool("H2O", pool, 298.15, 2000)
	if err != nil {
		t.Fatalf("ResolvePool: %v", err)
	}
	// Liquid picked by containment at 298.15 K, gas records joined, the
	// two coefficient-identical continuations merged virtually.
	if len(res.Records) != 3 {
		t.Fatalf("len(Records) = %d, want 3 after merge", len(res.Records))
	}
	if res.Records[0].Phase != thermo.PhaseLiquid {
		t.Errorf("first record phase = %v, want liquid", res.Records[0].Phase)
	}
	last := res.Records[2]
	if !last.IsVirtual() {
		t.Fatal("last record should be a virtual merge")
	}
	if last.Tmin != 600 || last.Tmax != 6000 {
		t.Errorf("virtual window = [%g, %g], want [600, 6000]", last.Tmin, last.Tmax)
	}
	if len(last.Sources) != 2 {
		t.Errorf("virtual sources = %d, want 2", len(last.Sources))
	}
	if res.Tboil != 373.15 {
		t.Errorf("Tboil = %g, want 373.15", res.Tboil)
	}
}

func TestExpectedPhase(t *testing.T) {
	cases := []struct {
		T, tmelt, tboil float64
		want            thermo.Phase
	}{
		{300, 1650, 0, thermo.PhaseSolid},
		{1700, 1650, 0, thermo.PhaseLiquid},
		{400, 273.15, 373.15, thermo.PhaseGas},
		{300, 0, 373.15, thermo.PhaseUnknown},
		{300, 0, 0, thermo.PhaseUnknown},
	}
	for _, c := range cases {
		if got := expectedPhase(c.T, c.tmelt, c.tboil); got != c.want {
			t.Errorf("expectedPhase(%g, %g, %g) = %v, want %v", c.T, c.tmelt, c.tboil, got, c.want)
		}
	}
}

func TestAnchor(t *testing.T) {
	if got := anchor(298.15, 1700); got != thermo.T298 {
		t.Errorf("anchor = %g, want %g", got, thermo.T298)
	}
	if got := anchor(100, 200); got != 100 {
		t.Errorf("anchor below 298.15 range = %g, want 100", got)
	}
	if got := anchor(500, 900); got != 500 {
		t.Errorf("anchor above 298.15 range = %g, want 500", got)
	}
}

func hasWarning(ws []thermo.Warning, code thermo.WarningCode) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}
