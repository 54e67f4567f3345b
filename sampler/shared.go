package sampler

import (
	"math"
	"sync/atomic"
)

// Waveform is an immutable mono reduction of a loaded sample, published
// for display purposes. A nil pointer means no sample is installed.
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// SharedState carries the per-slot data the GUI thread reads while the
// audio thread plays. All accesses are atomic: the audio thread publishes
// after each block without taking locks, and readers get a best-effort
// recent value.
type SharedState struct {
	waveform atomic.Pointer[Waveform]
	position atomic.Uint64 // float64 bits, source frames
	playing  atomic.Bool
}

// SetWaveform installs a new display waveform. Called from the audio
// thread at sample install time; the Waveform itself was built off-thread.
func (s *SharedState) SetWaveform(w *Waveform) {
	s.waveform.Store(w)
}

// Waveform returns the current display waveform, or nil.
func (s *SharedState) Waveform() *Waveform {
	return s.waveform.Load()
}

// PublishPosition records the playhead in source frames and whether the
// slot is audible.
func (s *SharedState) PublishPosition(pos float64, playing bool) {
	s.position.Store(math.Float64bits(pos))
	s.playing.Store(playing)
}

// Position returns the last published playhead and playing flag.
func (s *SharedState) Position() (float64, bool) {
	return math.Float64frombits(s.position.Load()), s.playing.Load()
}

// NewDisplayWaveform reduces a sample to a mono waveform for display by
// averaging channels.
func NewDisplayWaveform(sample *Sample) *Waveform {
	if sample == nil {
		return nil
	}
	frames := sample.Frames()
	mono := make([]float32, frames)
	inv := 1.0 / float32(sample.Channels)
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < sample.Channels; c++ {
			sum += sample.Data[f*sample.Channels+c]
		}
		mono[f] = sum * inv
	}
	return &Waveform{Samples: mono, SampleRate: sample.SampleRate}
}
