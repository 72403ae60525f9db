package format

import (
	"fmt"
	"strings"

	"thermocalc/internal/reaction"
	"thermocalc/internal/thermo"
)

// Result renders the headline properties of one substance calculation.
func Result(m Mode, res *thermo.Result) string {
	tb := NewTable(m)
	tb.Header("Property", "Value", "Unit")
	tb.Row("T", fmt.Sprintf("%.2f", res.T), "K")
	tb.Row("H", fmt.Sprintf("%.3f", res.H), "kJ/mol")
	tb.Row("S", fmt.Sprintf("%.3f", res.S), "J/(mol·K)")
	tb.Row("G", fmt.Sprintf("%.3f", res.G), "kJ/mol")
	tb.Row("Cp", fmt.Sprintf("%.3f", res.Cp), "J/(mol·K)")
	tb.RightAlign(2)

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %.2f K\n", res.Formula, res.T)
	b.WriteString(tb.String())
	if s := Segments(m, res); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	if w := Warnings(res.Warnings); w != "" {
		b.WriteString("\n")
		b.WriteString(w)
	}
	return b.String()
}

// Segments renders the phase segments and transitions a calculation
// traversed.
func Segments(m Mode, res *thermo.Result) string {
	if len(res.Segments) == 0 {
		return ""
	}
	tb := NewTable(m)
	tb.Header("Phase", "From K", "To K", "Records", "H start", "S start")
	for _, seg := range res.Segments {
		tb.Row(seg.Phase.String(),
			fmt.Sprintf("%.2f", seg.Tstart),
			fmt.Sprintf("%.2f", seg.Tend),
			describeRecords(seg.Records),
			fmt.Sprintf("%.3f", seg.HStart),
			fmt.Sprintf("%.3f", seg.SStart))
	}
	out := tb.String()
	if len(res.Transitions) == 0 {
		return out
	}
	tt := NewTable(m)
	tt.Header("Transition", "T K", "ΔH kJ/mol", "ΔS J/(mol·K)")
	for _, tr := range res.Transitions {
		dh := fmt.Sprintf("%.3f", tr.DeltaH)
		if !tr.DeclaredH {
			dh += " (undeclared)"
		}
		tt.Row(tr.Kind.String(), fmt.Sprintf("%.2f", tr.T), dh, fmt.Sprintf("%.3f", tr.DeltaS))
	}
	return out + "\n" + tt.String()
}

func describeRecords(records []thermo.Selected) string {
	parts := make([]string, len(records))
	for i := range records {
		tag := ""
		if records[i].IsVirtual() {
			tag = fmt.Sprintf(" (virtual, %d sources)", len(records[i].Sources))
		}
		parts[i] = fmt.Sprintf("[%.0f..%.0f]%s", records[i].Tmin, records[i].Tmax, tag)
	}
	return strings.Join(parts, " ")
}

// Trajectory renders the sampled (T, H, S) trajectory for downstream
// plotting or inspection.
func Trajectory(m Mode, res *thermo.Result) string {
	tb := NewTable(m)
	tb.Header("T K", "H kJ/mol", "S J/(mol·K)")
	for _, p := range res.Trajectory {
		tb.Row(fmt.Sprintf("%.2f", p.T), fmt.Sprintf("%.3f", p.H), fmt.Sprintf("%.3f", p.S))
	}
	tb.RightAlign(1, 2, 3)
	return tb.String()
}

// Records renders a candidate record listing for one formula.
func Records(m Mode, recs []*thermo.Record) string {
	tb := NewTable(m)
	tb.Header("Phase", "T min", "T max", "H298", "S298", "Tier", "Base", "Source")
	for _, rec := range recs {
		base := ""
		if rec.IsBase() {
			base = "yes"
		}
		tb.Row(rec.Phase.String(),
			fmt.Sprintf("%.2f", rec.Tmin),
			fmt.Sprintf("%.2f", rec.Tmax),
			fmt.Sprintf("%.3f", rec.H298),
			fmt.Sprintf("%.3f", rec.S298),
			rec.Reliability, base, rec.Source)
	}
	return tb.String()
}

// Reaction renders a reaction-level summary with its per-species
// contributions.
func Reaction(m Mode, res *reaction.Result) string {
	tb := NewTable(m)
	tb.Header("Species", "Role", "ν", "H kJ/mol", "S J/(mol·K)")
	for _, sp := range res.Reactants {
		tb.Row(sp.Formula, "reactant", sp.Coefficient,
			fmt.Sprintf("%.3f", sp.Result.H), fmt.Sprintf("%.3f", sp.Result.S))
	}
	for _, sp := range res.Products {
		tb.Row(sp.Formula, "product", sp.Coefficient,
			fmt.Sprintf("%.3f", sp.Result.H), fmt.Sprintf("%.3f", sp.Result.S))
	}
	tb.Footer("Δ reaction", "", "",
		fmt.Sprintf("%.3f", res.DeltaH), fmt.Sprintf("%.3f", res.DeltaS))

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %.2f K\n", res.Equation.Raw, res.T)
	b.WriteString(tb.String())
	fmt.Fprintf(&b, "\nΔG = %.3f kJ/mol   ln K = %.3f\n", res.DeltaG, res.LnK)
	if w := Warnings(res.Warnings); w != "" {
		b.WriteString(w)
	}
	return b.String()
}

// Warnings renders accumulated consistency warnings, one per line.
func Warnings(ws []thermo.Warning) string {
	if len(ws) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range ws {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	return b.String()
}
