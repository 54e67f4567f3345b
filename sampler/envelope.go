package sampler

// EnvelopeStage identifies the current ADSR stage.
type EnvelopeStage int

const (
	StageIdle EnvelopeStage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s EnvelopeStage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	}
	return "unknown"
}

// MultiChannelADSR is an ADSR envelope shared across the channels of one
// voice. Only the first channel of a frame advances the envelope timing;
// the remaining channels read the value computed for that frame so every
// channel sees an identical envelope per frame.
type MultiChannelADSR struct {
	sampleRate    float32
	stage         EnvelopeStage
	stageProgress float32 // samples into the current stage
	currentValue  float32
}

// NewMultiChannelADSR creates an idle envelope for the given sample rate.
func NewMultiChannelADSR(sampleRate float32) *MultiChannelADSR {
	return &MultiChannelADSR{sampleRate: sampleRate}
}

// NoteOn starts the attack stage. Valid from any stage, including mid-release
// retriggers.
func (e *MultiChannelADSR) NoteOn() {
	e.stage = StageAttack
	e.stageProgress = 0
}

// NoteOff starts the release stage. No-op while idle.
func (e *MultiChannelADSR) NoteOff() {
	if e.stage != StageIdle {
		e.stage = StageRelease
		e.stageProgress = 0
	}
}

// SetSampleRate updates the rate used to convert stage times to sample
// counts. Changing it mid-stage shifts the remaining stage duration.
func (e *MultiChannelADSR) SetSampleRate(sampleRate float32) {
	e.sampleRate = sampleRate
}

// Reset forces the envelope back to idle.
func (e *MultiChannelADSR) Reset() {
	e.stage = StageIdle
	e.stageProgress = 0
	e.currentValue = 0
}

// IsIdling reports whether the envelope has finished (or never started).
func (e *MultiChannelADSR) IsIdling() bool {
	return e.stage == StageIdle
}

// IsPlaying reports whether the envelope is in any non-idle stage.
func (e *MultiChannelADSR) IsPlaying() bool {
	return e.stage != StageIdle
}

// Stage returns the current stage.
func (e *MultiChannelADSR) Stage() EnvelopeStage {
	return e.stage
}

// Value returns the last computed envelope value without advancing.
func (e *MultiChannelADSR) Value() float32 {
	return e.currentValue
}

// advance steps the envelope by one sample and returns the new value.
// Stage times are given in seconds; a zero or negative duration collapses
// that stage within the same call, so attack=decay=0 reaches sustain in a
// single advance. Sustain is held verbatim, even outside [0, 1].
func (e *MultiChannelADSR) advance(attack, decay, sustain, release float32) float32 {
	switch e.stage {
	case StageIdle:
		e.currentValue = 0

	case StageAttack:
		attackSamples := attack * e.sampleRate
		if e.stageProgress >= attackSamples {
			e.currentValue = 1
			if decay > 0 {
				e.stage = StageDecay
			} else {
				e.stage = StageSustain
			}
			e.stageProgress = 0
		} else {
			e.currentValue = e.stageProgress / attackSamples
			e.stageProgress++
		}

	case StageDecay:
		decaySamples := decay * e.sampleRate
		if e.stageProgress >= decaySamples {
			e.currentValue = sustain
			e.stage = StageSustain
			e.stageProgress = 0
		} else {
			progress := e.stageProgress / decaySamples
			e.currentValue = 1 - progress*(1-sustain)
			e.stageProgress++
		}

	case StageSustain:
		e.currentValue = sustain

	case StageRelease:
		releaseSamples := release * e.sampleRate
		if e.stageProgress >= releaseSamples {
			e.currentValue = 0
			e.stage = StageIdle
			e.stageProgress = 0
		} else {
			progress := e.stageProgress / releaseSamples
			e.currentValue = sustain * (1 - progress)
			e.stageProgress++
		}
	}

	return e.currentValue
}

// NextValue returns the envelope value for one channel of the current frame.
// Callers must invoke it with firstChannel=true exactly once per frame,
// before any firstChannel=false calls for the same frame; only that call
// advances the timing.
func (e *MultiChannelADSR) NextValue(attack, decay, sustain, release float32, firstChannel bool) float32 {
	if !firstChannel {
		return e.currentValue
	}
	return e.advance(attack, decay, sustain, release)
}
