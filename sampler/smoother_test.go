package sampler

import "testing"

func TestSmootherRampsLinearly(t *testing.T) {
	s := NewSmoother(100, 0.1) // 10 steps
	s.Jump(0)
	s.SetTarget(1)

	prev := float32(0)
	for i := 0; i < 10; i++ {
		v := s.Next()
		if v <= prev {
			t.Fatalf("step %d: value %v did not increase from %v", i, v, prev)
		}
		prev = v
	}
	if prev != 1 {
		t.Errorf("ramp ended at %v, want exactly 1", prev)
	}
	if v := s.Next(); v != 1 {
		t.Errorf("value after ramp = %v, want 1", v)
	}
}

func TestSmootherJump(t *testing.T) {
	s := NewSmoother(100, 0.1)
	s.SetTarget(1)
	s.Next()
	s.Jump(0.25)
	if v := s.Next(); v != 0.25 {
		t.Errorf("value after Jump = %v, want 0.25", v)
	}
}

func TestSmootherRepeatedTargetKeepsRamp(t *testing.T) {
	s := NewSmoother(100, 0.1)
	s.Jump(0)
	s.SetTarget(1)
	for i := 0; i < 5; i++ {
		s.Next()
		s.SetTarget(1) // must not restart the ramp
	}
	for i := 0; i < 5; i++ {
		s.Next()
	}
	if v := s.Previous(); v != 1 {
		t.Errorf("ramp with repeated targets ended at %v, want 1", v)
	}
}

func TestSmootherZeroRampTimeJumps(t *testing.T) {
	s := NewSmoother(100, 0)
	s.Jump(0)
	s.SetTarget(0.5)
	if v := s.Next(); v != 0.5 {
		t.Errorf("zero ramp time: got %v, want immediate 0.5", v)
	}
}

func TestSmootherMultiChannelContract(t *testing.T) {
	s := NewSmoother(100, 0.1)
	s.Jump(0)
	s.SetTarget(1)

	first := s.NextValue(true)
	second := s.NextValue(false)
	third := s.NextValue(false)
	if first != second || second != third {
		t.Errorf("channels of one frame saw %v, %v, %v; want identical", first, second, third)
	}
	next := s.NextValue(true)
	if next <= first {
		t.Errorf("next frame value %v did not advance past %v", next, first)
	}
}
