package sampler

import "fmt"

// Sample holds one decoded one-shot, interleaved float32 in [-1, 1].
// A Sample is immutable after creation; slots swap whole Samples on load
// and never mutate one that may be playing.
type Sample struct {
	Data       []float32
	Channels   int
	SampleRate int
}

// NewSample validates and wraps decoded audio data.
func NewSample(data []float32, channels, sampleRate int) (*Sample, error) {
	if channels < 1 {
		return nil, fmt.Errorf("sample: invalid channel count %d", channels)
	}
	if sampleRate < 1 {
		return nil, fmt.Errorf("sample: invalid sample rate %d", sampleRate)
	}
	if len(data) == 0 || len(data)%channels != 0 {
		return nil, fmt.Errorf("sample: data length %d not a multiple of %d channels", len(data), channels)
	}
	return &Sample{Data: data, Channels: channels, SampleRate: sampleRate}, nil
}

// Frames returns the number of frames in the sample.
func (s *Sample) Frames() int {
	return len(s.Data) / s.Channels
}

// Duration returns the sample length in seconds at its native rate.
func (s *Sample) Duration() float64 {
	return float64(s.Frames()) / float64(s.SampleRate)
}

// Mono returns the sample downmixed to a single float64 channel.
func (s *Sample) Mono() []float64 {
	frames := s.Frames()
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < s.Channels; c++ {
			sum += float64(s.Data[i*s.Channels+c])
		}
		out[i] = sum / float64(s.Channels)
	}
	return out
}

// Channel extracts one channel as float64 samples.
func (s *Sample) Channel(index int) []float64 {
	frames := s.Frames()
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		out[i] = float64(s.Data[i*s.Channels+index])
	}
	return out
}
