package resizer

import "math"

// fuzzyTol is the absolute tolerance the glossary's "fuzzy-equal /
// fuzzy-greater" comparisons use for floating-point circuit quantities
// (capacitances in the 1e-15..1e-12 F range, delays/slews in seconds).
const fuzzyTol = 1e-15

func fuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) <= fuzzyTol
}

func fuzzyGE(a, b float64) bool {
	return a >= b-fuzzyTol
}

// ratio is the sizer's load-match score (spec.md §4.5): min/max of target
// and actual load, so 1.0 is a perfect match and it degrades symmetrically
// whichever side is larger.
func ratio(target, load float64) float64 {
	if target <= 0 || load <= 0 {
		return 0
	}
	if target < load {
		return target / load
	}
	return load / target
}

func ceilDiv(a, b float64) int {
	if b <= 0 {
		return 0
	}
	return int(math.Ceil(a / b))
}
