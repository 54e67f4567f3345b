package sampler

import (
	"math"

	"github.com/cwbudde/algo-approx"
)

const semitonesPerOctave = 12.0

// pow2Approx computes 2^x via the fast exponential.
func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

// SemitonesToRate converts a semitone offset to a playback rate multiplier
// (2^(semitones/12)). +12 doubles the rate, -12 halves it.
func SemitonesToRate(semitones float32) float32 {
	return pow2Approx(semitones / semitonesPerOctave)
}

// interpolate returns the linear interpolation between two adjacent samples.
func interpolate(current, next, fraction float32) float32 {
	return current + (next-current)*fraction
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
