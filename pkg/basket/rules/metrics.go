package rules

import "math"

// Confidence estimates P(consequent | antecedent)
//
// confidence(A→C) = supp(A∪C) / supp(A)
func Confidence(supAC, supA float64) float64 {
	if supA <= 0 {
		return 0
	}
	return supAC / supA
}

// Lift compares the observed confidence to the independence baseline.
//
// lift(A→C) = confidence(A→C) / supp(C)
//
// 1 means no correlation, above 1 positive, below 1 negative.
func Lift(confidence, supC float64) float64 {
	if supC <= 0 {
		return 0
	}
	return confidence / supC
}

// Leverage is the co-occurrence beyond independence: supp(A∪C) − supp(A)·supp(C).
func Leverage(supAC, supA, supC float64) float64 {
	return supAC - supA*supC
}

// Conviction is (1 − supp(C)) / (1 − confidence). A rule that always holds
// has infinite conviction.
func Conviction(confidence, supC float64) float64 {
	if confidence >= 1 {
		return math.Inf(1)
	}
	return (1 - supC) / (1 - confidence)
}

// InLiftBand applies the lift filter. Without negatives only lifts at or
// above 1+distance pass; with negatives lifts at or below 1-distance pass too.
func InLiftBand(lift, distance float64, includeNegative bool) bool {
	if lift >= 1+distance {
		return true
	}
	return includeNegative && lift <= 1-distance
}
