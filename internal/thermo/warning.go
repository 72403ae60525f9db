package thermo

import "fmt"

// WarningCode identifies the non-fatal consistency issues the engine
// can surface alongside a successful result.
type WarningCode string

const (
	// WarnInconsistentTransition: candidate records disagree on a
	// melting/boiling temperature; the majority value was used.
	WarnInconsistentTransition WarningCode = "inconsistent-transition"
	// WarnOverlap: two selected records overlap by more than the gap
	// tolerance.
	WarnOverlap WarningCode = "overlapping-records"
	// WarnEscalatedGap: a coverage gap above the gap tolerance but
	// within the critical threshold was bridged.
	WarnEscalatedGap WarningCode = "escalated-gap"
	// WarnReanchor: a mid-segment record carried its own base values
	// and the running totals were hard-reset to them.
	WarnReanchor WarningCode = "record-reanchor"
	// WarnUndeclaredDelta: a phase transition had no declared enthalpy
	// change; a zero jump was applied.
	WarnUndeclaredDelta WarningCode = "undeclared-transition-delta"
	// WarnUnknownTransition: a phase boundary did not classify as
	// melting, boiling or sublimation.
	WarnUnknownTransition WarningCode = "unknown-transition"
	// WarnIonicFallback: direct lookup failed and ionic-form variants
	// of the formula were admitted.
	WarnIonicFallback WarningCode = "ionic-fallback"
	// WarnCompositeFallback: the substance was approximated as a
	// combination of its component oxides.
	WarnCompositeFallback WarningCode = "composite-fallback"
	// WarnReliabilityFallback: phase-matched selection failed and the
	// most reliable records were taken regardless of phase.
	WarnReliabilityFallback WarningCode = "reliability-fallback"
	// WarnUnmappedPhase: a raw phase label did not map to the closed
	// phase enum.
	WarnUnmappedPhase WarningCode = "unmapped-phase"
)

// Warning is a non-fatal consistency finding. Warnings accumulate on
// the result and are never escalated to failures by the engine.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string { return fmt.Sprintf("[%s] %s", w.Code, w.Message) }

// Warningf builds a warning with a formatted message.
func Warningf(code WarningCode, format string, args ...any) Warning {
	return Warning{Code: code, Message: fmt.Sprintf(format, args...)}
}
