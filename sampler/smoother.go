package sampler

// Smoother ramps a parameter linearly toward its target over a fixed time,
// one step per frame. It mirrors the multi-channel envelope contract: the
// first channel of a frame calls Next, the remaining channels read
// Previous so every channel of one frame sees the same value.
type Smoother struct {
	sampleRate float32
	rampTime   float32 // seconds

	current   float32
	target    float32
	step      float32
	remaining int
}

// NewSmoother creates a smoother with the given ramp time in seconds.
func NewSmoother(sampleRate, rampTime float32) *Smoother {
	return &Smoother{sampleRate: sampleRate, rampTime: rampTime}
}

// SetSampleRate updates the rate used to size the ramp.
func (s *Smoother) SetSampleRate(sampleRate float32) {
	s.sampleRate = sampleRate
}

// SetTarget starts a ramp from the current value to target. Setting the
// same target again leaves an in-flight ramp untouched.
func (s *Smoother) SetTarget(target float32) {
	if target == s.target {
		return
	}
	s.target = target
	steps := int(s.rampTime * s.sampleRate)
	if steps <= 0 {
		s.current = target
		s.remaining = 0
		s.step = 0
		return
	}
	s.remaining = steps
	s.step = (target - s.current) / float32(steps)
}

// Jump sets the value immediately, cancelling any ramp.
func (s *Smoother) Jump(value float32) {
	s.current = value
	s.target = value
	s.remaining = 0
	s.step = 0
}

// Next advances the ramp by one frame and returns the new value.
func (s *Smoother) Next() float32 {
	if s.remaining > 0 {
		s.current += s.step
		s.remaining--
		if s.remaining == 0 {
			s.current = s.target
		}
	}
	return s.current
}

// Previous returns the value computed by the last Next call.
func (s *Smoother) Previous() float32 {
	return s.current
}

// NextValue returns the smoothed value for one channel of a frame; only the
// first channel advances the ramp.
func (s *Smoother) NextValue(firstChannel bool) float32 {
	if firstChannel {
		return s.Next()
	}
	return s.Previous()
}
