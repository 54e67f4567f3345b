package sampler

import "math"

// ClassicShifter pitch-shifts by reading the buffer at a scaled fractional
// position with linear interpolation. O(1) per frame, no analysis; pitch
// and playback duration are coupled.
type ClassicShifter struct {
	sample       *Sample
	playbackRate float32
	srCorrection float32
}

// NewClassicShifter creates an empty classic shifter.
func NewClassicShifter() *ClassicShifter {
	return &ClassicShifter{playbackRate: 1, srCorrection: 1}
}

func (c *ClassicShifter) Clear() {
	c.sample = nil
	c.playbackRate = 1
	c.srCorrection = 1
}

func (c *ClassicShifter) Load(sample *Sample) error {
	c.sample = sample
	return nil
}

func (c *ClassicShifter) Trigger(srCorrection, semitones float32) {
	c.srCorrection = srCorrection
	c.playbackRate = SemitonesToRate(semitones)
}

func (c *ClassicShifter) Ready() bool {
	return c.sample != nil
}

func (c *ClassicShifter) Channels() int {
	if c.sample == nil {
		return 0
	}
	return c.sample.Channels
}

func (c *ClassicShifter) FrameAt(position float32, dst []float32) bool {
	if c.sample == nil {
		return false
	}

	pitched := float64(c.playbackRate * c.srCorrection * position)
	frameIndex := int(math.Floor(pitched))
	fraction := float32(pitched - math.Floor(pitched))

	data := c.sample.Data
	channels := c.sample.Channels
	for ch := 0; ch < channels; ch++ {
		index := frameIndex*channels + ch
		next := index + channels
		switch {
		case index >= 0 && next < len(data):
			dst[ch] = interpolate(data[index], data[next], fraction)
		case index >= 0 && index < len(data):
			// Last frame: nothing to interpolate toward.
			dst[ch] = data[index]
		default:
			return false
		}
	}
	return true
}

func (c *ClassicShifter) Kind() ShifterKind {
	return KindClassic
}

func (c *ClassicShifter) SourcePosition(position float32) float32 {
	return c.srCorrection * position * c.playbackRate
}
