package sampler

import (
	"math"
	"testing"
)

func sineSample(t *testing.T, freq float64, sampleRate, frames, channels int) *Sample {
	t.Helper()
	data := make([]float32, frames*channels)
	for f := 0; f < frames; f++ {
		v := float32(math.Sin(2 * math.Pi * freq * float64(f) / float64(sampleRate)))
		for c := 0; c < channels; c++ {
			data[f*channels+c] = v
		}
	}
	s, err := NewSample(data, channels, sampleRate)
	if err != nil {
		t.Fatalf("NewSample: %v", err)
	}
	return s
}

func TestPsolaShifterLoadTonalSample(t *testing.T) {
	p := NewPsolaShifter()
	if p.Ready() {
		t.Fatal("empty shifter reports ready")
	}

	sample := sineSample(t, 110, 44100, 22050, 2)
	if err := p.Load(sample); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Ready() {
		t.Fatal("shifter ready before any trigger")
	}
	p.Trigger(1.0, 0)
	if !p.Ready() {
		t.Fatal("loaded and triggered shifter not ready")
	}

	wantWavelength := 44100.0 / 110.0
	if got := p.DetectedWavelength(); math.Abs(got-wantWavelength) > 2 {
		t.Errorf("detected wavelength %.2f, want about %.2f", got, wantWavelength)
	}
}

func TestPsolaShifterLoadSilenceFails(t *testing.T) {
	p := NewPsolaShifter()
	sample, err := NewSample(make([]float32, 8192), 1, 44100)
	if err != nil {
		t.Fatalf("NewSample: %v", err)
	}
	if err := p.Load(sample); err == nil {
		t.Fatal("Load of silence succeeded, want pitch detection failure")
	}
	if p.Ready() {
		t.Error("shifter ready after failed load")
	}

	// A failed load must not leave a usable stream behind.
	dst := make([]float32, 1)
	if p.FrameAt(0, dst) {
		t.Error("FrameAt returned a frame after failed load")
	}
}

func TestPsolaShifterTriggerAndPlayback(t *testing.T) {
	p := NewPsolaShifter()
	sample := sineSample(t, 110, 44100, 22050, 2)
	if err := p.Load(sample); err != nil {
		t.Fatalf("Load: %v", err)
	}

	p.Trigger(1.0, 0)
	dst := make([]float32, 2)
	if !p.FrameAt(0, dst) {
		t.Fatal("FrameAt(0) returned false after trigger")
	}

	// Unshifted playback keeps the sample's duration: the stream should
	// cover roughly the whole source and then stop.
	frames := sample.Frames()
	if !p.FrameAt(float32(frames)*0.9, dst) {
		t.Error("FrameAt inside the sample returned false")
	}
	if p.FrameAt(float32(frames)*1.2, dst) {
		t.Error("FrameAt well past the sample returned true")
	}

	// Channels carry the same mono content here.
	if !p.FrameAt(1000, dst) {
		t.Fatal("FrameAt(1000) returned false")
	}
	if dst[0] != dst[1] {
		t.Errorf("channels diverged: %v vs %v", dst[0], dst[1])
	}
}

func TestPsolaShifterTriggerFailureLogged(t *testing.T) {
	p := NewPsolaShifter()
	sample := sineSample(t, 110, 44100, 22050, 1)
	if err := p.Load(sample); err != nil {
		t.Fatalf("Load: %v", err)
	}
	var logged []string
	p.Logf = func(format string, args ...any) {
		logged = append(logged, format)
	}

	// An absurd upward shift pushes the output period below one sample,
	// which the synthesis rejects.
	p.Trigger(1.0, 200)
	if p.Ready() {
		t.Error("shifter ready after failed synthesis")
	}
	dst := make([]float32, 1)
	if p.FrameAt(0, dst) {
		t.Error("FrameAt returned a frame after failed synthesis")
	}
	if len(logged) == 0 {
		t.Error("failed synthesis produced no diagnostic")
	}

	// The analysis survives: a sane retrigger recovers.
	p.Trigger(1.0, 0)
	if !p.Ready() {
		t.Error("shifter did not recover on retrigger")
	}
}

func TestPsolaShifterOctaveUpKeepsDuration(t *testing.T) {
	p := NewPsolaShifter()
	sample := sineSample(t, 110, 44100, 22050, 1)
	if err := p.Load(sample); err != nil {
		t.Fatalf("Load: %v", err)
	}

	p.Trigger(1.0, 12)
	dst := make([]float32, 1)
	frames := sample.Frames()
	if !p.FrameAt(float32(frames)*0.9, dst) {
		t.Error("octave-up stream ends early, duration should not shrink")
	}
}

func TestPsolaShifterRetriggerReusesAnalysis(t *testing.T) {
	p := NewPsolaShifter()
	sample := sineSample(t, 110, 44100, 22050, 1)
	if err := p.Load(sample); err != nil {
		t.Fatalf("Load: %v", err)
	}
	wavelength := p.DetectedWavelength()

	p.Trigger(1.0, 0)
	p.Trigger(1.0, 7)
	p.Trigger(0.5, -5)

	if got := p.DetectedWavelength(); got != wavelength {
		t.Errorf("retrigger changed the analysis wavelength: %v -> %v", wavelength, got)
	}
	dst := make([]float32, 1)
	if !p.FrameAt(0, dst) {
		t.Error("FrameAt failed after retrigger")
	}
}

func TestPsolaShifterSampleRateCorrection(t *testing.T) {
	p := NewPsolaShifter()
	sample := sineSample(t, 110, 22050, 11025, 1)
	if err := p.Load(sample); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Half-rate source on a notional double-rate host: one output frame
	// advances half a source frame, so playback lasts twice the source
	// frame count.
	p.Trigger(0.5, 0)
	dst := make([]float32, 1)
	frames := sample.Frames()
	if !p.FrameAt(float32(frames)*1.8, dst) {
		t.Error("rate-corrected stream ended early")
	}
	if got := p.SourcePosition(100); got != 50 {
		t.Errorf("SourcePosition(100) = %v, want 50", got)
	}
}
