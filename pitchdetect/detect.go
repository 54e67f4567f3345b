// Package pitchdetect estimates the dominant pitch period of a signal using
// the normalized square difference function (McLeod pitch method family).
// The autocorrelation underneath is computed with algo-fft.
package pitchdetect

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// ErrNoPitch is returned when the signal has too little power or no peak
// clears the clarity threshold.
var ErrNoPitch = errors.New("pitchdetect: no pitch detected")

// Fraction of the highest NSDF peak a candidate must reach to be picked.
// Favoring the earliest qualifying peak avoids octave-down errors.
const peakPickThreshold = 0.93

// Pitch is a successful detection result.
type Pitch struct {
	Frequency float64 // Hz
	Clarity   float64 // NSDF peak value in (0, 1]
}

// Detector runs NSDF pitch detection over signals of one fixed length.
// The FFT plan and scratch buffers are allocated once and reused.
type Detector struct {
	size    int
	fftSize int
	plan    *algofft.Plan[complex128]
	scratch []complex128
	freq    []complex128
	nsdf    []float64
}

// NewDetector creates a detector for signals of exactly size samples.
func NewDetector(size int) (*Detector, error) {
	if size < 2 {
		return nil, fmt.Errorf("pitchdetect: signal size %d too small", size)
	}
	fftSize := nextPow2(2 * size)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("pitchdetect: fft plan: %w", err)
	}
	return &Detector{
		size:    size,
		fftSize: fftSize,
		plan:    plan,
		scratch: make([]complex128, fftSize),
		freq:    make([]complex128, fftSize),
		nsdf:    make([]float64, size),
	}, nil
}

// Detect estimates the pitch of signal. The signal must have the length the
// detector was created for. powerThreshold is the minimum lag-zero
// autocorrelation (signal energy); clarityThreshold the minimum NSDF peak
// value. Either unmet yields ErrNoPitch.
func (d *Detector) Detect(signal []float64, sampleRate float64, powerThreshold, clarityThreshold float64) (Pitch, error) {
	if len(signal) != d.size {
		return Pitch{}, fmt.Errorf("pitchdetect: signal length %d, detector built for %d", len(signal), d.size)
	}
	if sampleRate <= 0 {
		return Pitch{}, fmt.Errorf("pitchdetect: invalid sample rate %f", sampleRate)
	}

	r := d.autocorrelate(signal)
	if r[0] < powerThreshold {
		return Pitch{}, ErrNoPitch
	}

	d.computeNSDF(signal, r)

	lag, clarity := pickPeak(d.nsdf)
	if lag <= 0 || clarity < clarityThreshold {
		return Pitch{}, ErrNoPitch
	}

	return Pitch{
		Frequency: sampleRate / lag,
		Clarity:   clarity,
	}, nil
}

// Detect is a convenience wrapper that builds a one-shot detector.
func Detect(signal []float64, sampleRate float64, powerThreshold, clarityThreshold float64) (Pitch, error) {
	d, err := NewDetector(len(signal))
	if err != nil {
		return Pitch{}, err
	}
	return d.Detect(signal, sampleRate, powerThreshold, clarityThreshold)
}

// autocorrelate computes r(tau) for tau in [0, size) via the Wiener-Khinchin
// relation: inverse transform of the power spectrum of the zero-padded signal.
func (d *Detector) autocorrelate(signal []float64) []float64 {
	for i := range d.scratch {
		if i < len(signal) {
			d.scratch[i] = complex(signal[i], 0)
		} else {
			d.scratch[i] = 0
		}
	}

	// Errors cannot occur for a matching plan/buffer size.
	_ = d.plan.Forward(d.freq, d.scratch)
	for i, v := range d.freq {
		re := real(v)
		im := imag(v)
		d.freq[i] = complex(re*re+im*im, 0)
	}
	_ = d.plan.Inverse(d.scratch, d.freq)

	r := make([]float64, d.size)
	for i := range r {
		r[i] = real(d.scratch[i])
	}
	return r
}

// computeNSDF fills d.nsdf with n(tau) = 2 r(tau) / m(tau), where m is the
// summed squared magnitude of the two windows being compared.
func (d *Detector) computeNSDF(signal []float64, r []float64) {
	// m(0) = 2 r(0); each increment of tau removes one term from both ends.
	m := 2 * r[0]
	for tau := 0; tau < d.size; tau++ {
		if m > 0 {
			d.nsdf[tau] = 2 * r[tau] / m
		} else {
			d.nsdf[tau] = 0
		}
		head := signal[tau]
		tail := signal[d.size-1-tau]
		m -= head*head + tail*tail
	}
}

// pickPeak implements the MPM peak picking: collect the highest local
// maximum between each positive-going zero crossing, then take the first
// one that reaches peakPickThreshold of the global maximum. Returns the
// parabolically refined lag and the peak value.
func pickPeak(nsdf []float64) (lag float64, clarity float64) {
	type peak struct {
		lag   float64
		value float64
	}

	var peaks []peak
	i := 1
	// Skip the initial positive region around lag zero.
	for i < len(nsdf) && nsdf[i] > 0 {
		i++
	}

	for i < len(nsdf) {
		// Find the next positive-going crossing.
		for i < len(nsdf) && nsdf[i] <= 0 {
			i++
		}
		if i >= len(nsdf) {
			break
		}
		// Track the maximum until the curve goes negative again.
		bestIdx := i
		for i < len(nsdf) && nsdf[i] > 0 {
			if nsdf[i] > nsdf[bestIdx] {
				bestIdx = i
			}
			i++
		}
		refLag, refVal := refinePeak(nsdf, bestIdx)
		peaks = append(peaks, peak{lag: refLag, value: refVal})
	}

	if len(peaks) == 0 {
		return 0, 0
	}

	highest := 0.0
	for _, p := range peaks {
		if p.value > highest {
			highest = p.value
		}
	}
	for _, p := range peaks {
		if p.value >= peakPickThreshold*highest {
			return p.lag, p.value
		}
	}
	return 0, 0
}

// refinePeak fits a parabola through the peak and its neighbors to get a
// sub-sample lag estimate.
func refinePeak(nsdf []float64, idx int) (float64, float64) {
	if idx <= 0 || idx >= len(nsdf)-1 {
		return float64(idx), nsdf[idx]
	}
	left := nsdf[idx-1]
	mid := nsdf[idx]
	right := nsdf[idx+1]
	denom := 2 * (2*mid - left - right)
	if denom == 0 {
		return float64(idx), mid
	}
	delta := (right - left) / denom
	if math.Abs(delta) > 1 {
		return float64(idx), mid
	}
	value := mid + (right-left)*delta/4
	return float64(idx) + delta, value
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
