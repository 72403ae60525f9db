package thermo

import (
	"fmt"
	"math"
)

// T298 is the standard reference temperature in kelvin. Base records
// anchor their H298/S298 values here.
const T298 = 298.15

// BaseEpsilon separates base records (own H298/S298 anchor) from
// continuation records (inherit the running totals of whatever precedes
// them).
const BaseEpsilon = 1e-6

// Record is one validity window of one substance: six Shomate
// coefficients valid over [Tmin, Tmax], reference values at 298.15 K,
// and shared transition metadata. Records are read-only facts supplied
// by the record source; the engine never mutates them.
//
// Units: temperatures in K, H298/HFusion/HVapor in kJ/mol,
// S298/SFusion/SVapor in J/(mol·K), Cp in J/(mol·K).
type Record struct {
	ID      int64
	Formula string
	Phase   Phase
	Tmin    float64
	Tmax    float64
	H298    float64
	S298    float64
	Coeffs  [6]float64 // Shomate f1..f6

	// Transition metadata. Zero means unknown; the resolver
	// majority-votes these across all candidates of one substance.
	Tmelt   float64
	Tboil   float64
	HFusion float64
	SFusion float64
	HVapor  float64
	SVapor  float64

	Reliability int // ordinal source quality, 1 is best
	MolarMass   float64
	Source      string
}

// IsBase reports whether the record carries its own reference anchor at
// 298.15 K. Continuation records (both values within epsilon of zero)
// must inherit H/S from whatever precedes them.
func (r *Record) IsBase() bool {
	return math.Abs(r.H298) > BaseEpsilon || math.Abs(r.S298) > BaseEpsilon
}

// Cp evaluates the Shomate heat capacity polynomial at T, in J/(mol·K):
//
//	Cp(T) = f1 + f2·T/1000 + f3·1e5/T² + f4·T²/1e6 + f5·1e3/T³ + f6·T³·1e-9
func (r *Record) Cp(T float64) float64 {
	f := r.Coeffs
	return f[0] +
		f[1]*T/1000 +
		f[2]*1e5/(T*T) +
		f[3]*T*T/1e6 +
		f[4]*1e3/(T*T*T) +
		f[5]*T*T*T*1e-9
}

// Covers reports whether T lies inside the record's validity window,
// widened by tol on both ends.
func (r *Record) Covers(T, tol float64) bool {
	return T >= r.Tmin-tol && T <= r.Tmax+tol
}

// Width returns the span of the validity window in kelvin.
func (r *Record) Width() float64 { return r.Tmax - r.Tmin }

// Validate checks the structural invariants of a single record.
// Violations are fatal (ValidationError) and never recovered.
func (r *Record) Validate() error {
	if r.Formula == "" {
		return &ValidationError{Record: r, Reason: "empty formula"}
	}
	if r.Tmin <= 0 || r.Tmax <= 0 {
		return &ValidationError{Record: r, Reason: "non-positive absolute temperature"}
	}
	if r.Tmin >= r.Tmax {
		return &ValidationError{Record: r, Reason: fmt.Sprintf("Tmin %.2f >= Tmax %.2f", r.Tmin, r.Tmax)}
	}
	return nil
}

// CoeffsEqual reports whether two records' Shomate coefficients agree
// within tol in every position.
func CoeffsEqual(a, b *Record, tol float64) bool {
	for i := range a.Coeffs {
		if math.Abs(a.Coeffs[i]-b.Coeffs[i]) > tol {
			return false
		}
	}
	return true
}

// Selected is one resolver pick: either a single physical record or a
// virtual merge of several adjacent continuation records. The Sources
// slice is the variant tag — nil for physical, the merged originals for
// virtual — so downstream stages can match exhaustively without type
// assertions.
type Selected struct {
	Record
	Sources []*Record
}

// IsVirtual reports whether the selection is a merged virtual record.
func (s *Selected) IsVirtual() bool { return len(s.Sources) > 0 }

// Physical wraps a single record as a selection.
func Physical(r *Record) Selected {
	return Selected{Record: *r}
}

// Merge collapses a run of adjacent same-phase continuation records
// with identical coefficients into one virtual record spanning their
// combined window. The caller is responsible for checking eligibility;
// Merge only widens the window and records provenance.
func Merge(run []*Record) Selected {
	first := *run[0]
	for _, r := range run[1:] {
		if r.Tmax > first.Tmax {
			first.Tmax = r.Tmax
		}
		if r.Tmin < first.Tmin {
			first.Tmin = r.Tmin
		}
		if r.Reliability > first.Reliability {
			first.Reliability = r.Reliability
		}
	}
	first.ID = 0
	return Selected{Record: first, Sources: run}
}
