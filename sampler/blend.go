package sampler

// BlendRole places a slot on the shared blend timeline. Two slots form a
// blend group by taking the Start and End roles: the Start slot fades out
// across the transition window while the End slot fades in, so their gains
// always sum to one inside the window.
type BlendRole int

const (
	BlendNone BlendRole = iota
	BlendStart
	BlendEnd
)

func (r BlendRole) String() string {
	switch r {
	case BlendNone:
		return "none"
	case BlendStart:
		return "start"
	case BlendEnd:
		return "end"
	}
	return "unknown"
}

// BlendGain maps elapsed playback time to a crossfade gain in [0, 1].
// center is the middle of the transition window in seconds, width its total
// duration. A degenerate window (width 0, or any non-finite intermediate)
// falls back to gain 1: an un-faded slot is audible and obvious, a silent
// one hides the bug.
func BlendGain(role BlendRole, t, center, width float32) float32 {
	if role == BlendNone {
		return 1
	}

	half := width / 2
	lo := center - half
	hi := center + half

	var gain float32
	switch role {
	case BlendStart:
		switch {
		case t <= lo:
			gain = 1
		case t >= hi:
			gain = 0
		default:
			gain = (hi - t) / width
		}
	case BlendEnd:
		switch {
		case t <= lo:
			gain = 0
		case t >= hi:
			gain = 1
		default:
			gain = (t - lo) / width
		}
	}

	if !isFinite(gain) {
		gain = 1
	}
	return clamp01(gain)
}
