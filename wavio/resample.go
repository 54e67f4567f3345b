package wavio

import (
	"fmt"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
)

// Resample converts interleaved samples from one rate to another, channel by
// channel. Returns the input unchanged when the rates already match.
func Resample(samples []float32, channels, fromRate, toRate int) ([]float32, error) {
	if channels < 1 {
		return nil, fmt.Errorf("wavio: invalid channel count %d", channels)
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("wavio: sample count %d not a multiple of %d channels", len(samples), channels)
	}
	if fromRate == toRate {
		return samples, nil
	}

	frames := len(samples) / channels
	in64 := make([]float64, frames)
	var out [][]float64
	outFrames := 0
	for ch := 0; ch < channels; ch++ {
		r, err := dspresample.NewForRates(
			float64(fromRate),
			float64(toRate),
			dspresample.WithQuality(dspresample.QualityBest),
		)
		if err != nil {
			return nil, err
		}
		for f := 0; f < frames; f++ {
			in64[f] = float64(samples[f*channels+ch])
		}
		ch64 := r.Process(in64)
		if ch == 0 {
			outFrames = len(ch64)
			out = make([][]float64, channels)
		} else if len(ch64) < outFrames {
			outFrames = len(ch64)
		}
		out[ch] = ch64
	}

	result := make([]float32, outFrames*channels)
	for ch := 0; ch < channels; ch++ {
		for f := 0; f < outFrames; f++ {
			result[f*channels+ch] = float32(out[ch][f])
		}
	}
	return result, nil
}
