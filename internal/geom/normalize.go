package geom

import "math"

// Normalize folds scale back into [1, period) by moving whole periods into a.
//
// Scaling a by period^n is a quarter-turn rotation of the same curve, so
// the rendered spiral is unchanged while both values stay bounded. Scales
// outside (MinScale/period, MaxScale*period) are left for clamping.
func Normalize(scale, a, period float64) (newScale, newA float64) {
	if !(period > 1) {
		return scale, a
	}
	for scale >= period && scale < MaxScale*period {
		scale /= period
		a *= period
	}
	for scale < 1 && scale > MinScale/period {
		scale *= period
		a /= period
	}
	return scale, a
}

// NormalizeLog is Normalize for a radius parameter kept as ln(a).
func NormalizeLog(scale, logA, period float64) (newScale, newLogA float64) {
	if !(period > 1) {
		return scale, logA
	}
	step := math.Log(period)
	for scale >= period && scale < MaxScale*period {
		scale /= period
		logA += step
	}
	for scale < 1 && scale > MinScale/period {
		scale *= period
		logA -= step
	}
	return scale, logA
}

// VisibleThetaRange returns the angular range to sample so the curve
// covers every screen corner, extended by two full turns on each side.
func VisibleThetaRange(v Viewport, size Size, a, period float64) (start, end float64) {
	const (
		minDist = 0.1
		pad     = 4 * math.Pi
	)
	maxDist := MaxCornerDistance(v, size)
	return Theta(minDist, a, period) - pad, Theta(maxDist, a, period) + pad
}

// SampleStep returns the theta step for the given scale. Zooming in
// samples more densely.
func SampleStep(scale float64) float64 {
	return ThetaStep / math.Max(1, scale/10)
}
