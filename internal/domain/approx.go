package domain

import "math"

// Epsilon is the tolerance used by all amount and price comparisons in the
// core. Amounts and prices are float64 and accumulate rounding error over
// repeated partial fills, so exact equality is never tested directly.
const Epsilon = 1e-9

// ApproxEqual reports whether a and b differ by less than Epsilon.
func ApproxEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Greater reports whether a exceeds b by at least Epsilon.
func Greater(a, b float64) bool {
	return a-b >= Epsilon
}

// Lesser reports whether b exceeds a by at least Epsilon.
func Lesser(a, b float64) bool {
	return b-a >= Epsilon
}

// GreaterEq reports whether a is greater than or approximately equal to b.
func GreaterEq(a, b float64) bool {
	return a > b || ApproxEqual(a, b)
}

// LesserEq reports whether a is lesser than or approximately equal to b.
func LesserEq(a, b float64) bool {
	return a < b || ApproxEqual(a, b)
}

// Finite reports whether v is neither NaN nor infinite. Observation inputs
// to the pricing controller ignore non-finite values rather than erroring.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
