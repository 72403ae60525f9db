package thermo

import "fmt"

// ValidationError marks a malformed record (inverted window,
// non-positive absolute temperature). Always fatal, never recovered.
type ValidationError struct {
	Record *Record
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Record != nil {
		return fmt.Sprintf("invalid record %q [%.2f, %.2f]: %s",
			e.Record.Formula, e.Record.Tmin, e.Record.Tmax, e.Reason)
	}
	return "invalid record: " + e.Reason
}

// ResolutionKind classifies why a resolution failed.
type ResolutionKind int

const (
	// NotFound: the candidate pool was empty and no fallback tier
	// produced candidates.
	NotFound ResolutionKind = iota
	// InsufficientCoverage: candidates exist but leave a gap wider
	// than the critical threshold after all fallback attempts.
	InsufficientCoverage
)

func (k ResolutionKind) String() string {
	if k == NotFound {
		return "not found"
	}
	return "insufficient coverage"
}

// ResolutionError is a fatal record-resolution failure. It carries
// enough detail (largest gap, fallback tiers tried) for the caller to
// explain the failure to an end user.
type ResolutionError struct {
	Formula    string
	Kind       ResolutionKind
	LargestGap float64  // widest uncovered sub-interval, K (coverage failures)
	Tried      []string // fallback tiers attempted, in order
	Reason     string
}

func (e *ResolutionError) Error() string {
	msg := fmt.Sprintf("resolve %q: %s", e.Formula, e.Kind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Kind == InsufficientCoverage && e.LargestGap > 0 {
		msg += fmt.Sprintf(" (largest gap %.1f K)", e.LargestGap)
	}
	if len(e.Tried) > 0 {
		msg += fmt.Sprintf(" (fallbacks tried: %v)", e.Tried)
	}
	return msg
}

// CoverageError marks a target temperature beyond the resolved range.
// The engine never extrapolates past the last record.
type CoverageError struct {
	Formula string
	Target  float64
	Tmax    float64
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("target %.2f K exceeds resolved coverage of %q (max %.2f K)",
		e.Target, e.Formula, e.Tmax)
}
