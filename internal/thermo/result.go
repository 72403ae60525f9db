package thermo

// Segment is a maximal contiguous temperature sub-range within one
// aggregate phase, holding the ordered selections that cover it.
// HStart/SStart are the running totals at Tstart, filled in by the
// accumulator as it walks the segments.
type Segment struct {
	Phase   Phase
	Tstart  float64
	Tend    float64
	Records []Selected
	HStart  float64
	SStart  float64
}

// TracePoint is one sample of the accumulated trajectory: the running
// H (kJ/mol) and S (J/(mol·K)) at temperature T. Transition points
// appear twice, before and after the jump.
type TracePoint struct {
	T float64
	H float64
	S float64
}

// Result is the final output of one multi-phase calculation. Created
// once per call and immutable thereafter; the caller owns it.
type Result struct {
	Formula string
	T       float64

	H  float64 // kJ/mol
	S  float64 // J/(mol·K)
	G  float64 // kJ/mol
	Cp float64 // J/(mol·K)

	Segments    []Segment
	Transitions []Transition
	Trajectory  []TracePoint
	Warnings    []Warning
}
