package sampler

// MaxSlots is the number of independent sample slots in a kit.
const MaxSlots = 8

// SlotParams are the per-slot playback parameters. The engine reads them
// every block; hosts mutate them between blocks.
type SlotParams struct {
	// SamplePath is the last loaded file, kept for preset persistence.
	SamplePath string

	Muted bool
	Gain  float32 // linear, smoothed on the way to the output

	// ADSR stage times in seconds; Sustain is a level and deliberately
	// unclamped.
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32

	// Tuning: when Tonal, the MIDI note offsets pitch relative to the
	// base note; RootNote shifts the sample's own pitch reference and
	// SemitoneOffset is a free tuning adjustment.
	Tonal          bool
	RootNote       float32
	SemitoneOffset float32

	// Mode selects the pitch-shift algorithm for the next trigger.
	Mode ShifterKind

	// BlendRole places the slot on the shared crossfade timeline.
	BlendRole BlendRole
}

// Params is the full parameter store for one sampler instance.
type Params struct {
	MasterGain float32

	// Blend window shared by all slots, in seconds of playback time.
	BlendCenterTime float32
	BlendWidth      float32

	Slots [MaxSlots]SlotParams
}

// NewDefaultParams creates parameters for a neutral, silent-friendly kit:
// unity gains, instant attack, full sustain, short release, no blending.
func NewDefaultParams() *Params {
	p := &Params{
		MasterGain:      1.0,
		BlendCenterTime: 0,
		BlendWidth:      0,
	}
	for i := range p.Slots {
		p.Slots[i] = SlotParams{
			Gain:    1.0,
			Attack:  0,
			Decay:   0,
			Sustain: 1.0,
			Release: 0.05,
			Mode:    KindClassic,
		}
	}
	return p
}
