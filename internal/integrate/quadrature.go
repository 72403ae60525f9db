// Package integrate walks the phase segments of a calculation plan in
// temperature order, integrating heat capacity into running enthalpy
// and entropy totals and applying the discrete jumps at phase
// transitions.
package integrate

// Quadrature numerically integrates f over [a, b]. The accumulator
// treats it as a black box so higher-accuracy schemes can be swapped
// in without changing the accumulation contract.
type Quadrature func(f func(float64) float64, a, b float64) float64

// Simpson returns a composite Simpson quadrature sampling n points.
// n is rounded up to an even interval count.
func Simpson(n int) Quadrature {
	if n < 2 {
		n = 2
	}
	if n%2 != 0 {
		n++
	}
	return func(f func(float64) float64, a, b float64) float64 {
		if a == b {
			return 0
		}
		h := (b - a) / float64(n)
		sum := f(a) + f(b)
		for i := 1; i < n; i++ {
			x := a + float64(i)*h
			if i%2 == 0 {
				sum += 2 * f(x)
			} else {
				sum += 4 * f(x)
			}
		}
		return sum * h / 3
	}
}

// Trapezoid returns a composite trapezoid quadrature sampling n
// points. Kept as the low-order reference scheme for accuracy
// comparisons.
func Trapezoid(n int) Quadrature {
	if n < 1 {
		n = 1
	}
	return func(f func(float64) float64, a, b float64) float64 {
		if a == b {
			return 0
		}
		h := (b - a) / float64(n)
		sum := (f(a) + f(b)) / 2
		for i := 1; i < n; i++ {
			sum += f(a + float64(i)*h)
		}
		return sum * h
	}
}

// signed integrates f from a to b, handling b < a with the usual sign
// flip (used when projecting a re-anchor below 298.15 K).
func signed(q Quadrature, f func(float64) float64, a, b float64) float64 {
	if b < a {
		return -q(f, b, a)
	}
	return q(f, a, b)
}
