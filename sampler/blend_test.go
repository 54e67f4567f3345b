package sampler

import (
	"math"
	"testing"
)

func TestBlendGainNoneAlwaysUnity(t *testing.T) {
	for _, tm := range []float32{-1, 0, 0.5, 1, 100} {
		if g := BlendGain(BlendNone, tm, 0.5, 0.2); g != 1 {
			t.Errorf("BlendGain(None, %v) = %v, want 1", tm, g)
		}
	}
}

func TestBlendGainCrossfade(t *testing.T) {
	const center, width = 1.0, 0.5

	tests := []struct {
		name      string
		t         float32
		wantStart float32
		wantEnd   float32
	}{
		{"well before window", 0.0, 1, 0},
		{"window start", 0.75, 1, 0},
		{"quarter in", 0.875, 0.75, 0.25},
		{"center", 1.0, 0.5, 0.5},
		{"three quarters in", 1.125, 0.25, 0.75},
		{"window end", 1.25, 0, 1},
		{"well after window", 2.0, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := BlendGain(BlendStart, tt.t, center, width)
			end := BlendGain(BlendEnd, tt.t, center, width)
			if !approxEqual(start, tt.wantStart, 1e-6) {
				t.Errorf("start gain at t=%v: got %v, want %v", tt.t, start, tt.wantStart)
			}
			if !approxEqual(end, tt.wantEnd, 1e-6) {
				t.Errorf("end gain at t=%v: got %v, want %v", tt.t, end, tt.wantEnd)
			}
			if sum := start + end; !approxEqual(sum, 1, 1e-6) {
				t.Errorf("gains at t=%v sum to %v, want 1", tt.t, sum)
			}
		})
	}
}

func TestBlendGainZeroWidth(t *testing.T) {
	// A zero-width window divides by zero inside the ramp branch; the
	// gain must still come out finite and in range.
	for _, role := range []BlendRole{BlendStart, BlendEnd} {
		for _, tm := range []float32{0.999999, 1.0, 1.000001} {
			g := BlendGain(role, tm, 1.0, 0)
			if math.IsNaN(float64(g)) || g < 0 || g > 1 {
				t.Errorf("BlendGain(%v, %v, 1, 0) = %v, want finite in [0,1]", role, tm, g)
			}
		}
	}
}

func TestBlendGainNonFiniteInputs(t *testing.T) {
	inf := float32(math.Inf(1))
	nan := float32(math.NaN())

	tests := []struct {
		name             string
		t, center, width float32
	}{
		{"nan time", nan, 1, 0.5},
		{"inf center", 0.5, inf, 0.5},
		{"nan width", 0.5, 1, nan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, role := range []BlendRole{BlendStart, BlendEnd} {
				g := BlendGain(role, tt.t, tt.center, tt.width)
				if math.IsNaN(float64(g)) || g < 0 || g > 1 {
					t.Errorf("BlendGain(%v) = %v, want finite in [0,1]", role, g)
				}
			}
		})
	}
}

func approxEqual(a, b, tol float32) bool {
	return float32(math.Abs(float64(a-b))) <= tol
}
