package thermo

import (
	"fmt"
	"math"
	"strings"
)

// ParseFormula breaks a chemical formula into element counts.
// Parenthesised groups with multipliers are supported ("Ca(OH)2").
// A trailing ionic charge ("+", "-2", "+3") is stripped before parsing.
func ParseFormula(formula string) (map[string]int, error) {
	s := StripCharge(formula)
	if s == "" {
		return nil, fmt.Errorf("parse formula %q: empty", formula)
	}
	counts := make(map[string]int)
	n, err := parseGroup(s, 0, counts, 1)
	if err != nil {
		return nil, fmt.Errorf("parse formula %q: %w", formula, err)
	}
	if n != len(s) {
		return nil, fmt.Errorf("parse formula %q: unexpected %q at position %d", formula, s[n], n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("parse formula %q: no elements", formula)
	}
	return counts, nil
}

// parseGroup consumes elements from s[i:] until a closing paren or the
// end of input, multiplying every count by mult.
func parseGroup(s string, i int, counts map[string]int, mult int) (int, error) {
	for i < len(s) {
		c := s[i]
		switch {
		case c == '(':
			inner := make(map[string]int)
			j, err := parseGroup(s, i+1, inner, 1)
			if err != nil {
				return j, err
			}
			if j >= len(s) || s[j] != ')' {
				return j, fmt.Errorf("unbalanced parenthesis")
			}
			j++
			groupMult, j := parseCount(s, j)
			for el, n := range inner {
				counts[el] += n * groupMult * mult
			}
			i = j
		case c == ')':
			return i, nil
		case c >= 'A' && c <= 'Z':
			j := i + 1
			if j < len(s) && s[j] >= 'a' && s[j] <= 'z' {
				j++
			}
			el := s[i:j]
			n, j := parseCount(s, j)
			counts[el] += n * mult
			i = j
		default:
			return i, fmt.Errorf("unexpected character %q", c)
		}
	}
	return i, nil
}

func parseCount(s string, i int) (int, int) {
	n := 0
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == start {
		return 1, i
	}
	return n, i
}

// StripCharge removes a trailing ionic charge suffix ("+", "-", "+2",
// "2-") and an aqueous marker from a formula.
func StripCharge(formula string) string {
	s := strings.TrimSpace(formula)
	for _, suf := range []string{"(a)", "(aq)", "(ia)"} {
		s = strings.TrimSuffix(s, suf)
	}
	for len(s) > 0 {
		last := s[len(s)-1]
		if last == '+' || last == '-' || (last >= '0' && last <= '9' &&
			len(s) > 1 && (s[len(s)-2] == '+' || s[len(s)-2] == '-')) {
			s = s[:len(s)-1]
			continue
		}
		break
	}
	return s
}

// IsElement reports whether the formula is a single chemical element
// (possibly polyatomic, e.g. "O2", "Cl2"). Elemental substances are
// exempt from the base-record anchor constraint: their standard-state
// H298/S298 reference is zero by convention.
func IsElement(formula string) bool {
	counts, err := ParseFormula(formula)
	if err != nil {
		return false
	}
	return len(counts) == 1
}

// IonicVariants returns the charge-suffixed lookup variants of a
// formula, in the order the fallback chain should try them. The set is
// a bounded heuristic over the suffix conventions of the reference
// data, not a speciation model.
func IonicVariants(formula string) []string {
	base := StripCharge(formula)
	if base == "" {
		return nil
	}
	variants := []string{
		base + "+", base + "-",
		base + "+2", base + "-2",
		base + "+3", base + "-3",
		base + "(a)",
	}
	if base != formula {
		// The caller asked for an already-suffixed form; retry the
		// neutral formula first.
		variants = append([]string{base}, variants...)
	}
	return variants
}

// Component is one term of an oxide decomposition: Moles formula units
// of Formula per formula unit of the decomposed compound.
type Component struct {
	Formula string
	Moles   float64
}

// componentOxides maps an element to its conventional oxide and that
// oxide's stoichiometry (metal atoms, oxygen atoms per formula unit).
var componentOxides = map[string]struct {
	formula string
	metal   int
	oxygen  int
}{
	"Li": {"Li2O", 2, 1},
	"Na": {"Na2O", 2, 1},
	"K":  {"K2O", 2, 1},
	"Mg": {"MgO", 1, 1},
	"Ca": {"CaO", 1, 1},
	"Sr": {"SrO", 1, 1},
	"Ba": {"BaO", 1, 1},
	"Mn": {"MnO", 1, 1},
	"Ni": {"NiO", 1, 1},
	"Cu": {"CuO", 1, 1},
	"Zn": {"ZnO", 1, 1},
	"Pb": {"PbO", 1, 1},
	"Fe": {"Fe2O3", 2, 3},
	"Al": {"Al2O3", 2, 3},
	"Cr": {"Cr2O3", 2, 3},
	"B":  {"B2O3", 2, 3},
	"Si": {"SiO2", 1, 2},
	"Ti": {"TiO2", 1, 2},
	"Zr": {"ZrO2", 1, 2},
	"C":  {"CO2", 1, 2},
	"S":  {"SO3", 1, 3},
	"W":  {"WO3", 1, 3},
	"Mo": {"MoO3", 1, 3},
	"P":  {"P2O5", 2, 5},
	"V":  {"V2O5", 2, 5},
}

// OxideDecomposition expresses a multi-element oxide compound as a
// stoichiometric combination of conventional component oxides
// (CaSiO3 -> CaO + SiO2). It returns nil when the formula is not an
// oxide of at least two cations or the oxygen balance does not close.
// This is the documented heuristic behind the composite fallback tier.
func OxideDecomposition(formula string) []Component {
	counts, err := ParseFormula(formula)
	if err != nil {
		return nil
	}
	oxygen, ok := counts["O"]
	if !ok || len(counts) < 3 {
		return nil
	}

	var comps []Component
	oxygenUsed := 0.0
	for el, n := range counts {
		if el == "O" {
			continue
		}
		ox, ok := componentOxides[el]
		if !ok {
			return nil
		}
		moles := float64(n) / float64(ox.metal)
		oxygenUsed += moles * float64(ox.oxygen)
		comps = append(comps, Component{Formula: ox.formula, Moles: moles})
	}
	if math.Abs(oxygenUsed-float64(oxygen)) > 1e-9 {
		return nil
	}
	sortComponents(comps)
	return comps
}

func sortComponents(comps []Component) {
	for i := 1; i < len(comps); i++ {
		for j := i; j > 0 && comps[j].Formula < comps[j-1].Formula; j-- {
			comps[j], comps[j-1] = comps[j-1], comps[j]
		}
	}
}
