package astrometry

import "math"

// Position is a sky position with its on-sky 1-sigma uncertainties, all in degrees.
type Position struct {
	RA            float64
	Dec           float64
	UncertaintyEW float64
	UncertaintyNS float64
}

// DeRuiter returns the dimensionless, error-normalized separation of a and b:
//
//	sqrt((dRA*cos(mean dec))^2/(ew_a^2+ew_b^2) + dDec^2/(ns_a^2+ns_b^2))
//
// dRA is wrapped into (-180, 180]. Zero combined uncertainty on an axis with a
// non-zero offset gives +Inf; coincident positions give 0.
func DeRuiter(a, b Position) float64 {
	meanDec := (a.Dec + b.Dec) / 2
	dRA := WrapRA(a.RA-b.RA) * math.Cos(radians(meanDec))
	dDec := a.Dec - b.Dec

	return math.Sqrt(
		normalizedSquare(dRA, a.UncertaintyEW*a.UncertaintyEW+b.UncertaintyEW*b.UncertaintyEW) +
			normalizedSquare(dDec, a.UncertaintyNS*a.UncertaintyNS+b.UncertaintyNS*b.UncertaintyNS))
}

func normalizedSquare(delta, variance float64) float64 {
	if delta == 0 {
		return 0
	}
	if variance == 0 {
		return math.Inf(1)
	}
	return delta * delta / variance
}

// MatchRadius is the largest angular offset, per axis, at which two positions
// with the given largest uncertainties can still be within threshold.
func MatchRadius(threshold, maxUncertaintyA, maxUncertaintyB float64) float64 {
	return threshold * math.Hypot(maxUncertaintyA, maxUncertaintyB)
}
