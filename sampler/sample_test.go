package sampler

import "testing"

func TestNewSampleValidation(t *testing.T) {
	tests := []struct {
		name       string
		data       []float32
		channels   int
		sampleRate int
		wantErr    bool
	}{
		{"valid mono", make([]float32, 100), 1, 44100, false},
		{"valid stereo", make([]float32, 100), 2, 48000, false},
		{"empty data", nil, 1, 44100, true},
		{"zero channels", make([]float32, 100), 0, 44100, true},
		{"zero rate", make([]float32, 100), 1, 0, true},
		{"ragged length", make([]float32, 101), 2, 44100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSample(tt.data, tt.channels, tt.sampleRate)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSample error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSampleAccessors(t *testing.T) {
	data := []float32{0, 10, 1, 11, 2, 12, 3, 13}
	s, err := NewSample(data, 2, 4)
	if err != nil {
		t.Fatalf("NewSample: %v", err)
	}

	if got := s.Frames(); got != 4 {
		t.Errorf("Frames() = %d, want 4", got)
	}
	if got := s.Duration(); got != 1 {
		t.Errorf("Duration() = %v, want 1s", got)
	}

	mono := s.Mono()
	for f, want := range []float64{5, 6, 7, 8} {
		if mono[f] != want {
			t.Errorf("Mono()[%d] = %v, want %v", f, mono[f], want)
		}
	}

	left := s.Channel(0)
	right := s.Channel(1)
	for f := 0; f < 4; f++ {
		if left[f] != float64(f) {
			t.Errorf("Channel(0)[%d] = %v, want %v", f, left[f], f)
		}
		if right[f] != float64(f+10) {
			t.Errorf("Channel(1)[%d] = %v, want %v", f, right[f], f+10)
		}
	}
}
