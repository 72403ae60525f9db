package thermo

// TransitionKind classifies a phase transition by its phase pair.
type TransitionKind int

const (
	TransitionUnknown TransitionKind = iota
	Melting                          // solid -> liquid
	Boiling                          // liquid -> gas
	Sublimation                      // solid -> gas
)

func (k TransitionKind) String() string {
	switch k {
	case Melting:
		return "melting"
	case Boiling:
		return "boiling"
	case Sublimation:
		return "sublimation"
	default:
		return "unknown"
	}
}

// ClassifyTransition maps a phase pair to its transition kind.
// Anything outside the solid->liquid->gas progression is unknown.
func ClassifyTransition(from, to Phase) TransitionKind {
	switch {
	case from == PhaseSolid && to == PhaseLiquid:
		return Melting
	case from == PhaseLiquid && to == PhaseGas:
		return Boiling
	case from == PhaseSolid && to == PhaseGas:
		return Sublimation
	default:
		return TransitionUnknown
	}
}

// Transition is a physically real, discontinuous jump in enthalpy and
// entropy at a phase boundary. DeltaH is in kJ/mol, DeltaS in
// J/(mol·K). DeclaredH distinguishes a verified value (including a
// verified zero) from an unknown one defaulted to zero: the accumulator
// applies the jump either way but flags the undeclared case.
type Transition struct {
	T         float64
	From      Phase
	To        Phase
	Kind      TransitionKind
	DeltaH    float64
	DeltaS    float64
	DeclaredH bool
}
