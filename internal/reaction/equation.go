// Package reaction aggregates single-substance calculations into
// reaction-level thermodynamics: parse a structured equation, run the
// per-substance pipeline for every species, and combine the totals
// stoichiometrically. Natural-language extraction of reactions is not
// this package's job; input is an already-structured equation string.
package reaction

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"thermocalc/internal/thermo"
)

// Term is one species of a reaction side with its stoichiometric
// coefficient.
type Term struct {
	Coefficient float64
	Formula     string
}

// Equation is a parsed reaction: reactants on the left of the arrow,
// products on the right.
type Equation struct {
	Raw       string
	Reactants []Term
	Products  []Term
}

func (e *Equation) String() string { return e.Raw }

// ParseEquation parses "Fe2O3 + 3 H2 = 2 Fe + 3 H2O". The arrow may be
// "=", "->" or "=>"; coefficients may be attached ("3H2") or separated
// ("3 H2") and default to 1.
func ParseEquation(raw string) (*Equation, error) {
	sides := splitArrow(raw)
	if sides == nil {
		return nil, fmt.Errorf("parse equation %q: no reaction arrow", raw)
	}
	left, err := parseSide(sides[0])
	if err != nil {
		return nil, fmt.Errorf("parse equation %q: %w", raw, err)
	}
	right, err := parseSide(sides[1])
	if err != nil {
		return nil, fmt.Errorf("parse equation %q: %w", raw, err)
	}
	return &Equation{Raw: strings.TrimSpace(raw), Reactants: left, Products: right}, nil
}

func splitArrow(raw string) []string {
	for _, arrow := range []string{"=>", "->", "="} {
		if i := strings.Index(raw, arrow); i >= 0 {
			return []string{raw[:i], raw[i+len(arrow):]}
		}
	}
	return nil
}

func parseSide(side string) ([]Term, error) {
	var terms []Term
	for _, part := range strings.Split(side, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty term")
		}
		coeff, formula := splitCoefficient(part)
		if formula == "" {
			return nil, fmt.Errorf("term %q has no formula", part)
		}
		if _, err := thermo.ParseFormula(formula); err != nil {
			return nil, err
		}
		terms = append(terms, Term{Coefficient: coeff, Formula: formula})
	}
	return terms, nil
}

// splitCoefficient peels a leading numeric coefficient off a term.
// The formula itself always starts with an uppercase letter or an
// opening parenthesis, so the split point is unambiguous.
func splitCoefficient(part string) (float64, string) {
	i := 0
	for i < len(part) && (part[i] >= '0' && part[i] <= '9' || part[i] == '.') {
		i++
	}
	if i == 0 {
		return 1, part
	}
	coeff, err := strconv.ParseFloat(part[:i], 64)
	if err != nil || coeff <= 0 {
		return 1, part
	}
	return coeff, strings.TrimSpace(part[i:])
}

// CheckBalance verifies per-element conservation across the equation.
// The returned map lists each unbalanced element with its
// product-minus-reactant surplus; an empty map means balanced.
func (e *Equation) CheckBalance() (map[string]float64, error) {
	totals := make(map[string]float64)
	add := func(terms []Term, sign float64) error {
		for _, t := range terms {
			counts, err := thermo.ParseFormula(t.Formula)
			if err != nil {
				return err
			}
			for el, n := range counts {
				totals[el] += sign * t.Coefficient * float64(n)
			}
		}
		return nil
	}
	if err := add(e.Reactants, -1); err != nil {
		return nil, err
	}
	if err := add(e.Products, 1); err != nil {
		return nil, err
	}
	for el, v := range totals {
		if math.Abs(v) < 1e-9 {
			delete(totals, el)
		} else {
			totals[el] = v
		}
	}
	return totals, nil
}
