package tdpsola

import (
	"math"
	"testing"
)

func sineF64(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func dftBinMagnitude(samples []float32, k int) float64 {
	n := len(samples)
	var re, im float64
	for i, s := range samples {
		phase := 2 * math.Pi * float64(k) * float64(i) / float64(n)
		re += float64(s) * math.Cos(phase)
		im -= float64(s) * math.Sin(phase)
	}
	return math.Hypot(re, im)
}

// measureFreq finds the dominant spectral peak between 20 Hz and 2 kHz,
// analyzing the middle half of the signal to skip edge grains.
func measureFreq(samples []float32, sampleRate float64) float64 {
	start := len(samples) / 4
	end := len(samples) - len(samples)/4
	segment := samples[start:end]
	n := len(segment)

	minBin := int(20.0 * float64(n) / sampleRate)
	maxBin := int(2000.0 * float64(n) / sampleRate)
	if minBin < 1 {
		minBin = 1
	}
	if maxBin > n/2 {
		maxBin = n / 2
	}

	bestBin := minBin
	bestMag := 0.0
	for k := minBin; k <= maxBin; k++ {
		if mag := dftBinMagnitude(segment, k); mag > bestMag {
			bestMag = mag
			bestBin = k
		}
	}
	return float64(bestBin) * sampleRate / float64(n)
}

func TestAnalysisRejectsDegenerateInput(t *testing.T) {
	if _, err := NewAnalysis(make([]float64, 1000), 1.0); err == nil {
		t.Fatalf("expected error for sub-sample wavelength")
	}
	if _, err := NewAnalysis(make([]float64, 10), 100.0); err == nil {
		t.Fatalf("expected error for source shorter than one wavelength")
	}
}

func TestIdentityResynthesisPreservesPitch(t *testing.T) {
	const sampleRate = 44100.0
	const freq = 220.0
	wavelength := sampleRate / freq
	source := sineF64(freq, sampleRate, 22050)

	a, err := NewAnalysis(source, wavelength)
	if err != nil {
		t.Fatalf("NewAnalysis: %v", err)
	}
	s, err := NewSynthesis(a, wavelength, 1.0)
	if err != nil {
		t.Fatalf("NewSynthesis: %v", err)
	}
	out := s.Render()

	if got := len(out); got != len(source) {
		t.Fatalf("identity resynthesis changed length: got %d want %d", got, len(source))
	}
	measured := measureFreq(out, sampleRate)
	if math.Abs(measured-freq) > 3.0 {
		t.Fatalf("identity pitch drifted: got %.2f Hz want %.2f Hz", measured, freq)
	}
}

func TestOctaveUpShiftDoublesFrequencyKeepsDuration(t *testing.T) {
	const sampleRate = 44100.0
	const freq = 196.0
	wavelength := sampleRate / freq
	source := sineF64(freq, sampleRate, 22050)

	a, err := NewAnalysis(source, wavelength)
	if err != nil {
		t.Fatalf("NewAnalysis: %v", err)
	}
	s, err := NewSynthesis(a, wavelength/2, 1.0)
	if err != nil {
		t.Fatalf("NewSynthesis: %v", err)
	}
	out := s.Render()

	if got := len(out); got != len(source) {
		t.Fatalf("pitch shift changed duration: got %d want %d", got, len(source))
	}
	measured := measureFreq(out, sampleRate)
	if math.Abs(measured-2*freq) > 8.0 {
		t.Fatalf("octave shift off: got %.2f Hz want %.2f Hz", measured, 2*freq)
	}
}

func TestStretchChangesDurationNotPitch(t *testing.T) {
	const sampleRate = 44100.0
	const freq = 220.0
	wavelength := sampleRate / freq
	source := sineF64(freq, sampleRate, 22050)

	a, err := NewAnalysis(source, wavelength)
	if err != nil {
		t.Fatalf("NewAnalysis: %v", err)
	}
	s, err := NewSynthesis(a, wavelength, 2.0)
	if err != nil {
		t.Fatalf("NewSynthesis: %v", err)
	}
	out := s.Render()

	want := len(source) / 2
	if math.Abs(float64(len(out)-want)) > 2 {
		t.Fatalf("stretch 2 should halve duration: got %d want %d", len(out), want)
	}
	measured := measureFreq(out, sampleRate)
	if math.Abs(measured-freq) > 10.0 {
		t.Fatalf("stretch changed pitch: got %.2f Hz want %.2f Hz", measured, freq)
	}
}

func TestIdentityResynthesisAmplitudeRoughlyUnity(t *testing.T) {
	const sampleRate = 44100.0
	const freq = 220.0
	wavelength := sampleRate / freq
	source := sineF64(freq, sampleRate, 22050)

	a, err := NewAnalysis(source, wavelength)
	if err != nil {
		t.Fatalf("NewAnalysis: %v", err)
	}
	s, err := NewSynthesis(a, wavelength, 1.0)
	if err != nil {
		t.Fatalf("NewSynthesis: %v", err)
	}
	out := s.Render()

	var inRMS, outRMS float64
	start, end := len(out)/4, len(out)-len(out)/4
	for i := start; i < end; i++ {
		inRMS += source[i] * source[i]
		outRMS += float64(out[i]) * float64(out[i])
	}
	inRMS = math.Sqrt(inRMS / float64(end-start))
	outRMS = math.Sqrt(outRMS / float64(end-start))

	if outRMS < inRMS*0.7 || outRMS > inRMS*1.4 {
		t.Fatalf("resynthesis level off: in=%.4f out=%.4f", inRMS, outRMS)
	}
}

func TestSynthesisReusableFromOneAnalysis(t *testing.T) {
	const sampleRate = 44100.0
	const freq = 220.0
	wavelength := sampleRate / freq
	source := sineF64(freq, sampleRate, 11025)

	a, err := NewAnalysis(source, wavelength)
	if err != nil {
		t.Fatalf("NewAnalysis: %v", err)
	}

	for _, ratio := range []float64{1.0, 0.5, 2.0} {
		s, err := NewSynthesis(a, wavelength*ratio, 1.0)
		if err != nil {
			t.Fatalf("NewSynthesis ratio %v: %v", ratio, err)
		}
		if out := s.Render(); len(out) == 0 {
			t.Fatalf("empty render for ratio %v", ratio)
		}
	}
}
