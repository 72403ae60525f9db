package resolve

import (
	"errors"
	"math"
	"testing"

	"thermocalc/internal/config"
	"thermocalc/internal/thermo"
)

// mapSource serves candidate pools straight from a map, standing in
// for the store during fallback tests.
type mapSource map[string][]*thermo.Record

func (m mapSource) Candidates(formula string) ([]*thermo.Record, error) {
	return m[formula], nil
}

func TestResolve_IonicFallback(t *testing.T) {
	src := mapSource{
		"OH-": {
			{Formula: "OH-", Phase: thermo.PhaseAqueous, Tmin: 298.15, Tmax: 800,
				H298: -230.0, S298: -10.75, Coeffs: [6]float64{-148.5}, Reliability: 2},
		},
	}
	r := New(src, config.Default())
	res, err := r.Resolve("OH", 298.15, 600)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(res.Records))
	}
	if res.Records[0].Formula != "OH-" {
		t.Errorf("record formula = %q, want the ionic variant OH-", res.Records[0].Formula)
	}
	if !hasWarning(res.Warnings, thermo.WarnIonicFallback) {
		t.Errorf("expected ionic-fallback warning, got %v", res.Warnings)
	}
}

func TestResolve_CompositeFallback(t *testing.T) {
	src := mapSource{
		"CaO": {
			{Formula: "CaO", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 1200,
				H298: -635.09, S298: 38.1, Coeffs: [6]float64{50}, Reliability: 1},
		},
		"SiO2": {
			{Formula: "SiO2", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 1000,
				H298: -910.7, S298: 41.46, Coeffs: [6]float64{45}, Reliability: 1},
		},
	}
	r := New(src, config.Default())
	res, err := r.Resolve("CaSiO3", 298.15, 900)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !hasWarning(res.Warnings, thermo.WarnCompositeFallback) {
		t.Errorf("expected composite-fallback warning, got %v", res.Warnings)
	}
	if len(res.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(res.Records))
	}
	rec := res.Records[0]
	if rec.Source != "composite" {
		t.Errorf("record source = %q, want composite", rec.Source)
	}
	// Mole-weighted sums: 1 CaO + 1 SiO2.
	if math.Abs(rec.Coeffs[0]-95) > 1e-9 {
		t.Errorf("combined f1 = %g, want 95", rec.Coeffs[0])
	}
	if math.Abs(rec.H298-(-635.09-910.7)) > 1e-9 {
		t.Errorf("combined H298 = %g, want %g", rec.H298, -635.09-910.7)
	}
	if rec.Reliability != 3 {
		t.Errorf("composite reliability = %d, want 3", rec.Reliability)
	}
}

func TestResolve_CompositeLimitedByComponentCoverage(t *testing.T) {
	src := mapSource{
		"CaO": {
			{Formula: "CaO", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 1200,
				H298: -635.09, S298: 38.1, Coeffs: [6]float64{50}, Reliability: 1},
		},
		"SiO2": {
			{Formula: "SiO2", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 1000,
				H298: -910.7, S298: 41.46, Coeffs: [6]float64{45}, Reliability: 1},
		},
	}
	r := New(src, config.Default())
	// Above 1000 K only CaO has a solid record; the combination cannot
	// be synthesized there and resolution must fail.
	if _, err := r.Resolve("CaSiO3", 298.15, 1150); err == nil {
		t.Error("expected failure beyond joint component coverage")
	}
}

func TestResolve_TopReliabilityFallback(t *testing.T) {
	cfg := config.Default()
	cfg.FallbackTopN = 2
	src := mapSource{}
	r := New(src, cfg)

	pool := []*thermo.Record{
		{Formula: "FeS", Phase: thermo.PhaseSolid, Tmin: 298.15, Tmax: 500,
			H298: -100.0, S298: 60.3, Coeffs: [6]float64{50}, Reliability: 1},
		{Formula: "FeS", Phase: thermo.PhaseGas, Tmin: 500, Tmax: 1000,
			H298: 370.0, S298: 260.0, Coeffs: [6]float64{37}, Reliability: 2},
		{Formula: "FeS", Phase: thermo.PhaseLiquid, Tmin: 480, Tmax: 700,
			H298: -70.0, S298: 90.0, Coeffs: [6]float64{62}, Reliability: 5},
	}
	res, err := r.ResolvePool("FeS", pool, 298.15, 900)
	if err != nil {
		t.Fatalf("ResolvePool: %v", err)
	}
	if !hasWarning(res.Warnings, thermo.WarnReliabilityFallback) {
		t.Errorf("expected reliability-fallback warning, got %v", res.Warnings)
	}
	if len(res.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2 (liquid outlier pruned)", len(res.Records))
	}
	for i := range res.Records {
		if res.Records[i].Phase == thermo.PhaseLiquid {
			t.Error("low-reliability liquid record should be outside the top-N pool")
		}
	}
}

func TestResolve_FallbackExhausted(t *testing.T) {
	src := mapSource{}
	r := New(src, config.Default())
	_, err := r.Resolve("XyZzy3", 298.15, 900)
	if err == nil {
		t.Fatal("expected resolution failure for unknown substance")
	}
	var rerr *thermo.ResolutionError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want *thermo.ResolutionError", err)
	}
	if rerr.Kind != thermo.NotFound {
		t.Errorf("Kind = %v, want NotFound", rerr.Kind)
	}
	if len(rerr.Tried) == 0 {
		t.Error("expected Tried to list the attempted fallback tiers")
	}
}
