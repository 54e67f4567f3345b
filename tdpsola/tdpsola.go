// Package tdpsola implements time-domain pitch-synchronous overlap-add
// resynthesis. An Analysis decomposes a signal into Hann-windowed grains of
// twice the pitch period, aligned to pitch marks; a Synthesis overlap-adds
// those grains at a different output period to shift pitch, and can step
// through them at a different rate to stretch time independently.
package tdpsola

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/window"
)

// Analysis holds the pitch-synchronous decomposition of one channel.
// Building it is the expensive part; it can feed any number of syntheses.
type Analysis struct {
	wavelength   float64
	sourceFrames int
	segLen       int
	segments     [][]float64
}

// NewAnalysis decomposes source into grains at pitch marks spaced one
// wavelength apart. Grains reach one wavelength before the first mark and
// past the last sample; those regions read as zeros, which pads the edges
// and avoids onset/tail artifacts.
func NewAnalysis(source []float64, wavelength float64) (*Analysis, error) {
	if wavelength < 2 {
		return nil, fmt.Errorf("tdpsola: wavelength %.2f too short", wavelength)
	}
	if len(source) < int(wavelength) {
		return nil, fmt.Errorf("tdpsola: source of %d samples shorter than one wavelength %.2f", len(source), wavelength)
	}

	segLen := int(math.Round(2 * wavelength))
	if segLen < 4 {
		segLen = 4
	}
	coeffs, err := window.Hann(segLen, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("tdpsola: hann window: %w", err)
	}

	numSegments := int(math.Ceil(float64(len(source))/wavelength)) + 1
	segments := make([][]float64, numSegments)
	for k := range segments {
		mark := float64(k) * wavelength
		seg := make([]float64, segLen)
		for i := 0; i < segLen; i++ {
			pos := mark - wavelength + float64(i)
			seg[i] = sampleAt(source, pos) * coeffs[i]
		}
		segments[k] = seg
	}

	return &Analysis{
		wavelength:   wavelength,
		sourceFrames: len(source),
		segLen:       segLen,
		segments:     segments,
	}, nil
}

// Wavelength returns the analysis pitch period in samples.
func (a *Analysis) Wavelength() float64 {
	return a.wavelength
}

// SourceFrames returns the length of the analyzed signal.
func (a *Analysis) SourceFrames() int {
	return a.sourceFrames
}

// NumSegments returns the number of grains.
func (a *Analysis) NumSegments() int {
	return len(a.segments)
}

// Synthesis re-synthesizes a signal from an Analysis at a new output period
// and time-stretch rate. Creating one is cheap relative to the analysis.
type Synthesis struct {
	analysis         *Analysis
	outputWavelength float64
	stretch          float64
}

// NewSynthesis prepares a resynthesis with grains placed every
// outputWavelength samples. stretch scales how fast the source is consumed:
// 1 preserves the original duration, 2 plays the material twice as fast.
func NewSynthesis(a *Analysis, outputWavelength, stretch float64) (*Synthesis, error) {
	if a == nil {
		return nil, fmt.Errorf("tdpsola: nil analysis")
	}
	if outputWavelength < 1 {
		return nil, fmt.Errorf("tdpsola: output wavelength %.2f too short", outputWavelength)
	}
	if stretch <= 0 {
		return nil, fmt.Errorf("tdpsola: stretch %.3f must be positive", stretch)
	}
	return &Synthesis{
		analysis:         a,
		outputWavelength: outputWavelength,
		stretch:          stretch,
	}, nil
}

// Render produces the full synthesized stream. Its timeline matches the
// source timeline divided by the stretch factor; amplitude is normalized for
// the grain overlap implied by the period change.
func (s *Synthesis) Render() []float32 {
	a := s.analysis
	outLen := int(math.Round(float64(a.sourceFrames) / s.stretch))
	if outLen < 1 {
		outLen = 1
	}
	out := make([]float64, outLen)

	// Hann grains of period 2L overlap-added every L sum to unity; placing
	// them every outputWavelength instead scales the sum by L/outputWavelength.
	norm := s.outputWavelength / a.wavelength

	for j := 0; ; j++ {
		mark := float64(j) * s.outputWavelength
		if mark >= float64(outLen)+s.outputWavelength {
			break
		}
		k := int(math.Round(mark * s.stretch / a.wavelength))
		if k >= len(a.segments) {
			break
		}
		seg := a.segments[k]
		base := int(math.Round(mark - a.wavelength))
		for i, v := range seg {
			idx := base + i
			if idx < 0 || idx >= outLen {
				continue
			}
			out[idx] += v * norm
		}
	}

	result := make([]float32, outLen)
	for i, v := range out {
		result[i] = float32(v)
	}
	return result
}

// sampleAt reads the source at a fractional position with linear
// interpolation; positions outside the signal read as zero.
func sampleAt(source []float64, pos float64) float64 {
	if pos < 0 {
		return 0
	}
	idx := int(pos)
	if idx >= len(source) {
		return 0
	}
	frac := pos - float64(idx)
	cur := source[idx]
	if idx+1 >= len(source) {
		return cur * (1 - frac)
	}
	return cur + (source[idx+1]-cur)*frac
}
