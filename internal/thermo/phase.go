package thermo

import "strings"

// Phase is the aggregate state of a reference record. Raw data uses
// free-form strings ("s", "l", "g", "aq"); everything past ingestion
// works with this closed enum.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseSolid
	PhaseLiquid
	PhaseGas
	PhaseAqueous
)

// ParsePhase maps a raw phase label to the closed enum. Unmapped labels
// come back as PhaseUnknown and ok=false so the caller can flag them
// instead of propagating raw strings.
func ParsePhase(raw string) (Phase, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s", "sol", "solid", "c", "cr":
		return PhaseSolid, true
	case "l", "liq", "liquid":
		return PhaseLiquid, true
	case "g", "gas", "vap":
		return PhaseGas, true
	case "aq", "aqueous", "ao", "ai":
		return PhaseAqueous, true
	default:
		return PhaseUnknown, false
	}
}

func (p Phase) String() string {
	switch p {
	case PhaseSolid:
		return "solid"
	case PhaseLiquid:
		return "liquid"
	case PhaseGas:
		return "gas"
	case PhaseAqueous:
		return "aqueous"
	default:
		return "unknown"
	}
}

// Label returns the short database-side label ("s", "l", "g", "aq").
func (p Phase) Label() string {
	switch p {
	case PhaseSolid:
		return "s"
	case PhaseLiquid:
		return "l"
	case PhaseGas:
		return "g"
	case PhaseAqueous:
		return "aq"
	default:
		return "?"
	}
}

// Rank orders the physically condensed-to-gaseous progression:
// solid(1) < liquid(2) < gas(3). Aqueous and unknown phases return 0
// and do not participate in transition ordering.
func (p Phase) Rank() int {
	switch p {
	case PhaseSolid:
		return 1
	case PhaseLiquid:
		return 2
	case PhaseGas:
		return 3
	default:
		return 0
	}
}
