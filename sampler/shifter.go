package sampler

// ShifterKind selects one of the two pitch-shifting algorithms. The set is
// closed on purpose: a slot switches between exactly these at runtime.
type ShifterKind int

const (
	// KindClassic resamples the buffer directly; pitch and duration change
	// together. Cheap, no analysis, fine for percussive material.
	KindClassic ShifterKind = iota
	// KindPsola re-synthesizes pitch-synchronous grains; pitch and duration
	// move independently at the cost of an upfront analysis pass. Better
	// for tonal material.
	KindPsola
)

func (k ShifterKind) String() string {
	switch k {
	case KindClassic:
		return "classic"
	case KindPsola:
		return "psola"
	}
	return "unknown"
}

// PitchShifter produces pitched frames from a loaded one-shot.
//
// Lifecycle: Load when a sample arrives (expensive, never on the audio
// thread), Trigger on note start, FrameAt per output frame until it returns
// false, Clear to drop the sample. Trigger may be called repeatedly to
// retrigger with new parameters.
type PitchShifter interface {
	// Clear drops the loaded sample and returns to the not-ready state.
	// Idempotent.
	Clear()

	// Load replaces the current sample. Implementations may run expensive
	// analysis here and must report failure instead of panicking; after an
	// error the shifter is not ready.
	Load(sample *Sample) error

	// Trigger arms the shifter for a new note. srCorrection is the source
	// rate divided by the host rate; semitones is the pitch offset.
	// Ignored (stays not ready) when no sample is loaded.
	Trigger(srCorrection, semitones float32)

	// Ready reports whether FrameAt can produce output.
	Ready() bool

	// FrameAt writes the frame at the given host-frame position into dst,
	// one value per source channel, and reports whether data remained.
	// A false return is the sole end-of-sample signal. dst must hold at
	// least Channels values; FrameAt never allocates.
	FrameAt(position float32, dst []float32) bool

	// Channels returns the channel count of the loaded sample, 0 when empty.
	Channels() int

	// Kind identifies the algorithm.
	Kind() ShifterKind

	// SourcePosition maps a host-frame position to the corresponding
	// position in source frames, for position reporting.
	SourcePosition(position float32) float32
}
